package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/worklog"
	"github.com/hay-kot/worklog/pkg/iojson"
)

// ItemCmd implements the worklog item command group.
type ItemCmd struct {
	flags *Flags
	app   *worklog.App

	// create flags
	input             iojson.FileReader[item.Fields]
	createTitle       string
	createDescription string
	createKind        string
	createStatus      string
	createPriority    string
	createInterval    string
	createETA         string
	createNotifyAt    string
	createTags        []string
	createDeps        []string

	// update flags
	updateTitle       string
	updateDescription string
	updateKind        string
	updateStatus      string
	updatePriority    string
	updateInterval    string
	updateETA         string
	updateNotifyAt    string
	updateTags        []string
	updateDeps        []string

	// list flags
	listStatus   string
	listKind     string
	listPriority string
	listTags     []string
	listSearch   string
}

// NewItemCmd creates a new item command.
func NewItemCmd(flags *Flags, app *worklog.App) *ItemCmd {
	return &ItemCmd{flags: flags, app: app}
}

// Register adds the item command to the application.
func (cmd *ItemCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "item",
		Usage: "Manage tracked work items",
		Description: `Item commands for creating, updating, and querying tracked work.

Each item is a markdown file with YAML front matter under <data-dir>/tasks/.
Output is JSON; list commands write one JSON object per line.

Examples:
  worklog item create --title "Review PR #42" --kind ticket --eta 2026-03-01
  worklog item list --status in-progress
  worklog item done task-1a2b3c4d
  worklog item note task-1a2b3c4d "waiting on infra"`,
		Commands: []*cli.Command{
			cmd.createCmd(),
			cmd.showCmd(),
			cmd.updateCmd(),
			cmd.deleteCmd(),
			cmd.noteCmd(),
			cmd.statusCmd("done", "Mark an item done", item.StatusDone),
			cmd.statusCmd("start", "Mark an item in progress", item.StatusInProgress),
			cmd.statusCmd("block", "Mark an item blocked", item.StatusBlocked),
			cmd.checkCmd(),
			cmd.listCmd(),
			cmd.overdueCmd(),
			cmd.dueCheckCmd(),
			cmd.notifyCmd(),
			cmd.statsCmd(),
			cmd.searchCmd(),
			cmd.depsCmd(),
		},
	})

	return app
}

func (cmd *ItemCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Aliases:   []string{"add"},
		Usage:     "Create an item",
		UsageText: "worklog item create --title <title> [options] | worklog item create -f item.json",
		Description: `Creates an item and prints it as JSON.

Fields can be given as flags, or as a JSON document with -f/--file or on
stdin when --title is omitted. Omitted kind, status, priority, and check
interval fall back to the configured defaults.

Examples:
  worklog item create --title "Migrate ingestion" --kind project --priority high
  echo '{"title":"Reply to vendor","tags":["vendor"]}' | worklog item create`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "item title", Destination: &cmd.createTitle},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "longer description", Destination: &cmd.createDescription},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "ticket, cross-team, project, training-run, general", Destination: &cmd.createKind},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "todo, in-progress, waiting, blocked, done", Destination: &cmd.createStatus},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "high, medium, low", Destination: &cmd.createPriority},
			&cli.StringFlag{Name: "check-interval", Usage: "daily, weekly, biweekly, monthly", Destination: &cmd.createInterval},
			&cli.StringFlag{Name: "eta", Usage: "expected completion (YYYY-MM-DD [HH:MM])", Destination: &cmd.createETA},
			&cli.StringFlag{Name: "notify-at", Usage: "reminder time (YYYY-MM-DD [HH:MM])", Destination: &cmd.createNotifyAt},
			&cli.StringSliceFlag{Name: "tag", Usage: "tag (repeatable)", Destination: &cmd.createTags},
			&cli.StringSliceFlag{Name: "depends-on", Usage: "id of an item this depends on (repeatable)", Destination: &cmd.createDeps},
		},
		Action: cmd.runCreate,
	}
}

func (cmd *ItemCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:          "show",
		Usage:         "Show an item",
		UsageText:     "worklog item show <id>",
		ShellComplete: ItemIDCompleter(cmd.app),
		Action:        cmd.runShow,
	}
}

func (cmd *ItemCmd) updateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update fields of an item",
		UsageText: "worklog item update <id> [options]",
		Description: `Updates only the fields given as flags. Passing --tag or --depends-on
replaces the whole list.

Examples:
  worklog item update task-1a2b3c4d --priority high --eta 2026-03-10`,
		ShellComplete: ItemIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Destination: &cmd.updateTitle},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Destination: &cmd.updateDescription},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Destination: &cmd.updateKind},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Destination: &cmd.updateStatus},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Destination: &cmd.updatePriority},
			&cli.StringFlag{Name: "check-interval", Destination: &cmd.updateInterval},
			&cli.StringFlag{Name: "eta", Destination: &cmd.updateETA},
			&cli.StringFlag{Name: "notify-at", Destination: &cmd.updateNotifyAt},
			&cli.StringSliceFlag{Name: "tag", Destination: &cmd.updateTags},
			&cli.StringSliceFlag{Name: "depends-on", Destination: &cmd.updateDeps},
		},
		Action: cmd.runUpdate,
	}
}

func (cmd *ItemCmd) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:          "delete",
		Aliases:       []string{"rm"},
		Usage:         "Delete an item",
		UsageText:     "worklog item delete <id>",
		ShellComplete: ItemIDCompleter(cmd.app),
		Action:        cmd.runDelete,
	}
}

func (cmd *ItemCmd) noteCmd() *cli.Command {
	return &cli.Command{
		Name:          "note",
		Usage:         "Append a timestamped note",
		UsageText:     "worklog item note <id> <text>",
		ShellComplete: ItemIDCompleter(cmd.app),
		Action:        cmd.runNote,
	}
}

func (cmd *ItemCmd) statusCmd(name, usage string, status item.Status) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		UsageText: fmt.Sprintf("worklog item %s <id>", name),
		Description: fmt.Sprintf(`Sets the status to %s and updates this week's journal checkboxes
for the item so the next sync agrees.`, status),
		ShellComplete: ItemIDCompleter(cmd.app),
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.runSetStatus(ctx, c, status)
		},
	}
}

func (cmd *ItemCmd) checkCmd() *cli.Command {
	return &cli.Command{
		Name:          "check",
		Usage:         "Record a periodic review of an item",
		UsageText:     "worklog item check <id>",
		ShellComplete: ItemIDCompleter(cmd.app),
		Action:        cmd.runCheck,
	}
}

func (cmd *ItemCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List items",
		UsageText: "worklog item list [--status <s>] [--kind <k>] [--priority <p>] [--tag <t>] [--search <q>]",
		Description: `Lists items as JSON lines, oldest first. Filters are combined; --tag
matches items carrying any of the given tags.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Destination: &cmd.listStatus},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Destination: &cmd.listKind},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Destination: &cmd.listPriority},
			&cli.StringSliceFlag{Name: "tag", Destination: &cmd.listTags},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Destination: &cmd.listSearch},
		},
		Action: cmd.runList,
	}
}

func (cmd *ItemCmd) overdueCmd() *cli.Command {
	return &cli.Command{
		Name:      "overdue",
		Usage:     "List unfinished items past their ETA",
		UsageText: "worklog item overdue",
		Action: func(ctx context.Context, c *cli.Command) error {
			return writeItems(c, cmd.app.Items.Overdue)(ctx)
		},
	}
}

func (cmd *ItemCmd) dueCheckCmd() *cli.Command {
	return &cli.Command{
		Name:      "due-check",
		Usage:     "List items due for a periodic review",
		UsageText: "worklog item due-check",
		Action: func(ctx context.Context, c *cli.Command) error {
			return writeItems(c, cmd.app.Items.NeedingCheck)(ctx)
		},
	}
}

func (cmd *ItemCmd) notifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "notifications",
		Usage:     "List items whose reminder time has passed",
		UsageText: "worklog item notifications",
		Action: func(ctx context.Context, c *cli.Command) error {
			return writeItems(c, cmd.app.Items.NeedingNotification)(ctx)
		},
	}
}

func (cmd *ItemCmd) statsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show item counts",
		UsageText: "worklog item stats",
		Action:    cmd.runStats,
	}
}

func (cmd *ItemCmd) searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search item titles and descriptions",
		UsageText: "worklog item search <query>",
		Action:    cmd.runSearch,
	}
}

func (cmd *ItemCmd) depsCmd() *cli.Command {
	return &cli.Command{
		Name:          "deps",
		Usage:         "Resolve an item's dependencies",
		UsageText:     "worklog item deps <id>",
		Description:   "Prints the item with its resolved dependencies and the ids that no longer exist.",
		ShellComplete: ItemIDCompleter(cmd.app),
		Action:        cmd.runDeps,
	}
}

func (cmd *ItemCmd) runCreate(ctx context.Context, c *cli.Command) error {
	var fields item.Fields

	if cmd.createTitle == "" && cmd.input.Provided() {
		in, err := cmd.input.Read()
		if err != nil {
			return fmt.Errorf("read item: %w", err)
		}
		fields = in
	} else {
		now := time.Now()
		eta, err := optionalTime(cmd.createETA, now)
		if err != nil {
			return fmt.Errorf("--eta: %w", err)
		}
		notifyAt, err := optionalTime(cmd.createNotifyAt, now)
		if err != nil {
			return fmt.Errorf("--notify-at: %w", err)
		}

		fields = item.Fields{
			Title:         cmd.createTitle,
			Description:   cmd.createDescription,
			Kind:          item.Kind(cmd.createKind),
			Status:        item.Status(cmd.createStatus),
			Priority:      item.Priority(cmd.createPriority),
			CheckInterval: item.CheckInterval(cmd.createInterval),
			ETA:           eta,
			NotifyAt:      notifyAt,
			Tags:          cmd.createTags,
			Dependencies:  cmd.createDeps,
		}
	}

	it, err := cmd.app.Items.Create(ctx, fields)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return writeJSON(c, it)
}

func (cmd *ItemCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := itemIDArg(c.Args().Slice(), "worklog item show <id>")
	if err != nil {
		return err
	}

	it, err := cmd.app.Items.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("show %s: %w", id, err)
	}
	return writeJSON(c, it)
}

func (cmd *ItemCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	id, err := itemIDArg(c.Args().Slice(), "worklog item update <id> [options]")
	if err != nil {
		return err
	}

	patch, err := cmd.patch(c, time.Now())
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update; pass at least one field flag")
	}

	it, err := cmd.app.Items.Update(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}

	if patch.Status != nil {
		cmd.reflect(ctx, it)
	}
	return writeJSON(c, it)
}

func (cmd *ItemCmd) patch(c *cli.Command, now time.Time) (item.Patch, error) {
	var p item.Patch

	if c.IsSet("title") {
		p.Title = &cmd.updateTitle
	}
	if c.IsSet("description") {
		p.Description = &cmd.updateDescription
	}
	if c.IsSet("kind") {
		k := item.Kind(cmd.updateKind)
		p.Kind = &k
	}
	if c.IsSet("status") {
		s := item.Status(cmd.updateStatus)
		p.Status = &s
	}
	if c.IsSet("priority") {
		pr := item.Priority(cmd.updatePriority)
		p.Priority = &pr
	}
	if c.IsSet("check-interval") {
		ci := item.CheckInterval(cmd.updateInterval)
		p.CheckInterval = &ci
	}
	if c.IsSet("eta") {
		eta, err := parseWhen(cmd.updateETA, now)
		if err != nil {
			return p, fmt.Errorf("--eta: %w", err)
		}
		p.ETA = &eta
	}
	if c.IsSet("notify-at") {
		at, err := parseWhen(cmd.updateNotifyAt, now)
		if err != nil {
			return p, fmt.Errorf("--notify-at: %w", err)
		}
		p.NotifyAt = &at
	}
	if c.IsSet("tag") {
		p.Tags = append([]string{}, cmd.updateTags...)
	}
	if c.IsSet("depends-on") {
		p.Dependencies = append([]string{}, cmd.updateDeps...)
	}

	return p, nil
}

func (cmd *ItemCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := itemIDArg(c.Args().Slice(), "worklog item delete <id>")
	if err != nil {
		return err
	}

	ok, err := cmd.app.Items.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("delete %s: %w", id, item.ErrNotFound)
	}

	return writeJSON(c, map[string]any{"id": id, "deleted": true})
}

func (cmd *ItemCmd) runNote(ctx context.Context, c *cli.Command) error {
	usage := "worklog item note <id> <text>"
	id, err := itemIDArg(c.Args().Slice(), usage)
	if err != nil {
		return err
	}
	if c.NArg() < 2 {
		return fmt.Errorf("usage: %s", usage)
	}

	it, err := cmd.app.Items.AddNote(ctx, id, joinArgs(c.Args().Slice()[1:]))
	if err != nil {
		return fmt.Errorf("note %s: %w", id, err)
	}
	return writeJSON(c, it)
}

func (cmd *ItemCmd) runSetStatus(ctx context.Context, c *cli.Command, status item.Status) error {
	id, err := itemIDArg(c.Args().Slice(), fmt.Sprintf("worklog item %s <id>", c.Name))
	if err != nil {
		return err
	}

	it, err := cmd.app.Items.SetStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("set %s %s: %w", id, status, err)
	}

	cmd.reflect(ctx, it)
	return writeJSON(c, it)
}

// reflect pushes a status change into this week's journal. The status change
// itself already succeeded, so failures are only logged.
func (cmd *ItemCmd) reflect(ctx context.Context, it item.Item) {
	if err := cmd.app.Journal.ReflectStatus(ctx, it); err != nil {
		log.Warn().Err(err).Str("item_id", it.ID).Msg("failed to update journal checkboxes")
	}
}

func (cmd *ItemCmd) runCheck(ctx context.Context, c *cli.Command) error {
	id, err := itemIDArg(c.Args().Slice(), "worklog item check <id>")
	if err != nil {
		return err
	}

	it, err := cmd.app.Items.MarkChecked(ctx, id)
	if err != nil {
		return fmt.Errorf("check %s: %w", id, err)
	}
	return writeJSON(c, it)
}

func (cmd *ItemCmd) runList(ctx context.Context, c *cli.Command) error {
	filter := item.Filter{
		Status:   item.Status(cmd.listStatus),
		Kind:     item.Kind(cmd.listKind),
		Priority: item.Priority(cmd.listPriority),
		Tags:     cmd.listTags,
		Search:   cmd.listSearch,
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		return &item.ValidationError{Field: "status", Value: cmd.listStatus, Msg: "unknown status"}
	}
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return &item.ValidationError{Field: "kind", Value: cmd.listKind, Msg: "unknown kind"}
	}
	if filter.Priority != "" && !filter.Priority.IsValid() {
		return &item.ValidationError{Field: "priority", Value: cmd.listPriority, Msg: "unknown priority"}
	}

	items, err := cmd.app.Items.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	return writeLines(c, items)
}

func (cmd *ItemCmd) runStats(ctx context.Context, c *cli.Command) error {
	st, err := cmd.app.Items.Stats(ctx)
	if err != nil {
		return fmt.Errorf("item stats: %w", err)
	}
	return writeJSON(c, st)
}

func (cmd *ItemCmd) runSearch(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: worklog item search <query>")
	}

	items, err := cmd.app.Items.Search(ctx, joinArgs(c.Args().Slice()))
	if err != nil {
		return fmt.Errorf("search items: %w", err)
	}
	return writeLines(c, items)
}

func (cmd *ItemCmd) runDeps(ctx context.Context, c *cli.Command) error {
	id, err := itemIDArg(c.Args().Slice(), "worklog item deps <id>")
	if err != nil {
		return err
	}

	report, err := cmd.app.Items.Dependencies(ctx, id)
	if err != nil {
		return fmt.Errorf("deps %s: %w", id, err)
	}
	return writeJSON(c, report)
}
