package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklog/internal/core/doctor"
	"github.com/hay-kot/worklog/internal/core/journal"
	"github.com/hay-kot/worklog/internal/core/styles"
	"github.com/hay-kot/worklog/internal/worklog"
)

type DoctorCmd struct {
	flags  *Flags
	app    *worklog.App
	format string
	week   string
}

func NewDoctorCmd(flags *Flags, app *worklog.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your worklog data",
		UsageText:   "worklog doctor [options]",
		Description: "Checks data directories, item files, and the current week's journal.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "week",
				Usage:       "ISO week key of the journal to inspect; defaults to the current week",
				Destination: &cmd.week,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() ([]doctor.Check, error) {
	key := journal.KeyFor(time.Now())
	if cmd.week != "" {
		k, err := journal.ParseWeekKey(cmd.week)
		if err != nil {
			return nil, fmt.Errorf("--week: %w", err)
		}
		key = k
	}

	cfg := cmd.app.Config
	return []doctor.Check{
		doctor.NewDirsCheck(
			doctor.Dir{Label: "data_dir", Path: cfg.DataDir},
			doctor.Dir{Label: "tasks_dir", Path: cfg.ItemsDir()},
			doctor.Dir{Label: "journal_dir", Path: cfg.JournalPath()},
			doctor.Dir{Label: "backup_dir", Path: cfg.BackupsDir()},
		),
		doctor.NewItemsCheck(cmd.app.Items),
		doctor.NewJournalCheck(cmd.app.Journals, cmd.app.Items, key),
	}, nil
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	checks, err := cmd.checks()
	if err != nil {
		return err
	}
	results := doctor.RunAll(ctx, checks)

	if cmd.format == "json" {
		if err := cmd.outputJSON(c, results); err != nil {
			return err
		}
	} else {
		cmd.outputText(c, results)
	}

	if _, _, failed := doctor.Summary(results); failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	return writeJSON(c, struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	})
}

func (cmd *DoctorCmd) outputText(c *cli.Command, results []doctor.Result) {
	w := c.Root().Writer
	divider := styles.MutedStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render("Worklog Doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.MutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.SuccessStyle.Render("✔")
			case doctor.StatusWarn:
				icon = styles.WarningStyle.Render("●")
			case doctor.StatusFail:
				icon = styles.ErrorStyle.Render("✘")
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	passed, warned, failed := doctor.Summary(results)
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
		styles.SuccessStyle.Render(fmt.Sprintf("%d passed", passed)),
		styles.WarningStyle.Render(fmt.Sprintf("%d warnings", warned)),
		styles.ErrorStyle.Render(fmt.Sprintf("%d failed", failed)),
	)
}
