package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklog/internal/core/journal"
	"github.com/hay-kot/worklog/internal/core/styles"
	"github.com/hay-kot/worklog/internal/store/mdfile"
	"github.com/hay-kot/worklog/internal/worklog"
)

// JournalCmd implements the worklog journal command group.
type JournalCmd struct {
	flags *Flags
	app   *worklog.App

	date    string
	week    string
	wholeWk bool
	asJSON  bool
	render  bool
	year    int
	quarter int
}

// NewJournalCmd creates a new journal command.
func NewJournalCmd(flags *Flags, app *worklog.App) *JournalCmd {
	return &JournalCmd{flags: flags, app: app}
}

// Register adds the journal command to the application.
func (cmd *JournalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "journal",
		Aliases: []string{"j"},
		Usage:   "Plan, sync, and summarize the weekly journal",
		Description: `Journal commands operate on one markdown document per ISO week.

Tick a checkbox in the Planned or In Progress section of a day to mark the
item done; untick it to reopen. "sync" applies checkboxes to item statuses,
"end-day" also rewrites the day's Completed, Blocked, and In Progress lines.

Examples:
  worklog journal start-day
  worklog journal sync --week
  worklog journal end-day --date 2026-02-11
  worklog journal quarter --year 2026 --quarter 1`,
		Commands: []*cli.Command{
			cmd.startDayCmd(),
			cmd.endDayCmd(),
			cmd.syncCmd(),
			cmd.showCmd(),
			cmd.summaryCmd(),
			cmd.quarterCmd(),
			cmd.backupCmd(),
			cmd.backupsCmd(),
			cmd.restoreCmd(),
			cmd.cleanupCmd(),
		},
	})

	return app
}

func (cmd *JournalCmd) dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "date",
		Aliases:     []string{"d"},
		Usage:       "day to operate on (YYYY-MM-DD, today, yesterday); defaults to today",
		Destination: &cmd.date,
	}
}

func (cmd *JournalCmd) weekFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "week",
		Aliases:     []string{"w"},
		Usage:       "ISO week key (e.g. 2026-W07); defaults to the week of --date",
		Destination: &cmd.week,
	}
}

func (cmd *JournalCmd) startDayCmd() *cli.Command {
	return &cli.Command{
		Name:      "start-day",
		Usage:     "Plan the day from in-progress, due, unchecked, and overdue items",
		UsageText: "worklog journal start-day [--date <day>]",
		Description: `Fills an empty Planned section with checkbox lines. A day that already
has planned lines is left untouched.`,
		Flags:  []cli.Flag{cmd.dateFlag()},
		Action: cmd.runStartDay,
	}
}

func (cmd *JournalCmd) endDayCmd() *cli.Command {
	return &cli.Command{
		Name:      "end-day",
		Usage:     "Sync the day and record completed, blocked, and in-progress items",
		UsageText: "worklog journal end-day [--date <day>]",
		Flags:     []cli.Flag{cmd.dateFlag()},
		Action:    cmd.runEndDay,
	}
}

func (cmd *JournalCmd) syncCmd() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Apply journal checkboxes to item statuses",
		UsageText: "worklog journal sync [--date <day>] [--week]",
		Description: `Syncs one day by default. With --week every day of the week is
considered and the latest day mentioning an item decides.`,
		Flags: []cli.Flag{
			cmd.dateFlag(),
			&cli.BoolFlag{
				Name:        "week",
				Aliases:     []string{"w"},
				Usage:       "sync the whole week containing --date",
				Destination: &cmd.wholeWk,
			},
		},
		Action: cmd.runSync,
	}
}

func (cmd *JournalCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print a week's journal",
		UsageText: "worklog journal show [--date <day> | --week <key>] [--json | --render]",
		Flags: []cli.Flag{
			cmd.dateFlag(),
			cmd.weekFlag(),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the parsed week as JSON instead of markdown",
				Destination: &cmd.asJSON,
			},
			&cli.BoolFlag{
				Name:        "render",
				Aliases:     []string{"r"},
				Usage:       "render the markdown for the terminal using the configured theme",
				Destination: &cmd.render,
			},
		},
		Action: cmd.runShow,
	}
}

func (cmd *JournalCmd) summaryCmd() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Write the weekly summary document",
		UsageText: "worklog journal summary [--date <day>]",
		Flags:     []cli.Flag{cmd.dateFlag()},
		Action:    cmd.runSummary,
	}
}

func (cmd *JournalCmd) quarterCmd() *cli.Command {
	return &cli.Command{
		Name:      "quarter",
		Usage:     "Aggregate the weekly summaries of a quarter",
		UsageText: "worklog journal quarter [--year <y>] [--quarter <q>]",
		Description: `Covers the ISO weeks whose Thursday falls in the quarter. Weeks without a
journal are skipped. Defaults to the current quarter.`,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Destination: &cmd.year},
			&cli.IntFlag{Name: "quarter", Aliases: []string{"q"}, Destination: &cmd.quarter},
		},
		Action: cmd.runQuarter,
	}
}

func (cmd *JournalCmd) backupCmd() *cli.Command {
	return &cli.Command{
		Name:      "backup",
		Usage:     "Back up a week's journal now",
		UsageText: "worklog journal backup [--date <day> | --week <key>]",
		Flags:     []cli.Flag{cmd.dateFlag(), cmd.weekFlag()},
		Action:    cmd.runBackup,
	}
}

func (cmd *JournalCmd) backupsCmd() *cli.Command {
	return &cli.Command{
		Name:      "backups",
		Usage:     "List a week's journal backups, newest first",
		UsageText: "worklog journal backups [--date <day> | --week <key>]",
		Flags:     []cli.Flag{cmd.dateFlag(), cmd.weekFlag()},
		Action:    cmd.runBackups,
	}
}

func (cmd *JournalCmd) restoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a week's journal from a backup",
		UsageText: "worklog journal restore --week <key> <backup-name>",
		Description: `Replaces the week's journal with the named backup. The current document
is backed up first, so a restore can itself be undone.`,
		Flags:  []cli.Flag{cmd.dateFlag(), cmd.weekFlag()},
		Action: cmd.runRestore,
	}
}

func (cmd *JournalCmd) cleanupCmd() *cli.Command {
	return &cli.Command{
		Name:      "cleanup",
		Usage:     "Remove backups older than the retention period",
		UsageText: "worklog journal cleanup",
		Action:    cmd.runCleanup,
	}
}

func (cmd *JournalCmd) day() (time.Time, error) {
	d, err := dateOrToday(cmd.date, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: %w", err)
	}
	return d, nil
}

// weekKey resolves --week, falling back to the week of --date.
func (cmd *JournalCmd) weekKey() (journal.WeekKey, error) {
	if cmd.week != "" {
		k, err := journal.ParseWeekKey(cmd.week)
		if err != nil {
			return journal.WeekKey{}, fmt.Errorf("--week: %w", err)
		}
		return k, nil
	}

	d, err := cmd.day()
	if err != nil {
		return journal.WeekKey{}, err
	}
	return journal.KeyFor(d), nil
}

func (cmd *JournalCmd) runStartDay(ctx context.Context, c *cli.Command) error {
	d, err := cmd.day()
	if err != nil {
		return err
	}

	res, err := cmd.app.Journal.StartDay(ctx, d)
	if err != nil {
		return fmt.Errorf("start day: %w", err)
	}
	return writeJSON(c, res)
}

func (cmd *JournalCmd) runEndDay(ctx context.Context, c *cli.Command) error {
	d, err := cmd.day()
	if err != nil {
		return err
	}

	res, err := cmd.app.Journal.EndDay(ctx, d)
	if err != nil {
		return fmt.Errorf("end day: %w", err)
	}
	return writeJSON(c, res)
}

func (cmd *JournalCmd) runSync(ctx context.Context, c *cli.Command) error {
	d, err := cmd.day()
	if err != nil {
		return err
	}

	sync := cmd.app.Journal.Sync
	if cmd.wholeWk {
		sync = cmd.app.Journal.SyncWeek
	}

	res, err := sync(ctx, d)
	if err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	return writeJSON(c, res)
}

func (cmd *JournalCmd) runShow(ctx context.Context, c *cli.Command) error {
	key, err := cmd.weekKey()
	if err != nil {
		return err
	}

	w, err := cmd.app.Journals.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}

	switch {
	case cmd.asJSON:
		return writeJSON(c, w)
	case cmd.render:
		out, err := styles.RenderMarkdown(journal.Render(w), terminalWidth(c.Root().Writer))
		if err != nil {
			return fmt.Errorf("render journal: %w", err)
		}
		_, err = fmt.Fprint(c.Root().Writer, out)
		return err
	default:
		_, err = c.Root().Writer.Write(journal.Render(w))
		return err
	}
}

func (cmd *JournalCmd) runSummary(ctx context.Context, c *cli.Command) error {
	d, err := cmd.day()
	if err != nil {
		return err
	}

	sum, err := cmd.app.Summaries.Week(ctx, d)
	if err != nil {
		return fmt.Errorf("weekly summary: %w", err)
	}

	return writeJSON(c, struct {
		journal.WeeklySummary
		Path string `json:"path"`
	}{sum, cmd.app.Journals.SummaryPath(sum.Key)})
}

func (cmd *JournalCmd) runQuarter(ctx context.Context, c *cli.Command) error {
	now := time.Now()
	year, quarter := cmd.year, cmd.quarter
	if !c.IsSet("year") {
		year = now.Year()
	}
	if !c.IsSet("quarter") {
		quarter = journal.QuarterOf(now)
	}

	q, err := cmd.app.Summaries.Quarter(ctx, year, quarter)
	if err != nil {
		return fmt.Errorf("quarterly summary: %w", err)
	}
	return writeJSON(c, q)
}

func (cmd *JournalCmd) runBackup(ctx context.Context, c *cli.Command) error {
	key, err := cmd.weekKey()
	if err != nil {
		return err
	}

	bk, ok, err := cmd.app.Backups.Create(cmd.app.Journals.Path(key), key, mdfile.TriggerManual)
	if err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}
	if !ok {
		return fmt.Errorf("backup %s: no journal for this week", key)
	}
	return writeJSON(c, bk)
}

func (cmd *JournalCmd) runBackups(ctx context.Context, c *cli.Command) error {
	key, err := cmd.weekKey()
	if err != nil {
		return err
	}

	list, err := cmd.app.Backups.List(key)
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	return writeLines(c, list)
}

func (cmd *JournalCmd) runRestore(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: worklog journal restore --week <key> <backup-name>")
	}
	name := c.Args().First()

	key, err := cmd.weekKey()
	if err != nil {
		return err
	}

	pre, err := cmd.app.Backups.Restore(key, name, cmd.app.Journals.Path(key))
	if err != nil {
		return fmt.Errorf("restore %s: %w", name, err)
	}

	out := map[string]any{"week": key.String(), "restored": name}
	if pre != nil {
		out["pre_restore_backup"] = pre.Name
	}
	return writeJSON(c, out)
}

func (cmd *JournalCmd) runCleanup(ctx context.Context, c *cli.Command) error {
	removed, err := cmd.app.Backups.Cleanup()
	if err != nil {
		return fmt.Errorf("cleanup backups: %w", err)
	}
	return writeJSON(c, map[string]int{"removed": removed})
}
