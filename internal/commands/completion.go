package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/worklog"
)

// ItemIDCompleter returns a ShellCompleteFunc that suggests the ids of
// unfinished items as positional completions, with the title as a hint.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func ItemIDCompleter(app *worklog.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		items, err := app.Items.All(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, it := range items {
			if it.Status == item.StatusDone {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", it.ID, it.Title)
		}
	}
}
