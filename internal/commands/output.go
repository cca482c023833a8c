package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/pkg/iojson"
)

// writeJSON prints obj as indented JSON on the root command's writer.
func writeJSON(c *cli.Command, obj any) error {
	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, obj)
}

// writeLines prints each element as one JSON line.
func writeLines[T any](c *cli.Command, list []T) error {
	w := c.Root().Writer
	for _, v := range list {
		if err := iojson.WriteLine(w, v); err != nil {
			return err
		}
	}
	return nil
}

// writeItems adapts an item query to a command action that prints JSON lines.
func writeItems(c *cli.Command, query func(context.Context) ([]item.Item, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		items, err := query(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		return writeLines(c, items)
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

const defaultWidth = 80

// terminalWidth reports the column count of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
