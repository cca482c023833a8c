package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklog/internal/core/config"
	"github.com/hay-kot/worklog/internal/core/styles"
	"github.com/hay-kot/worklog/internal/worklog"
)

type ConfigValidateCmd struct {
	flags  *Flags
	app    *worklog.App
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags, app *worklog.App) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags, app: app}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "worklog config validate [options]",
				Description: "Validates the configuration file, checking enum defaults, backup limits, and directory paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationIssue          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	report := buildReport(cmd.app.Config, cmd.flags.ConfigPath)

	if cmd.format == "json" {
		if err := writeJSON(c, report); err != nil {
			return err
		}
	} else {
		cmd.outputText(c, report)
	}

	if !report.Valid {
		return fmt.Errorf("%d configuration error(s) found", len(report.Errors))
	}
	return nil
}

func buildReport(cfg *config.Config, configPath string) validationReport {
	report := validationReport{Valid: true, Warnings: cfg.Warnings()}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		return report
	}
	report.Valid = false

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			report.Errors = append(report.Errors, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
		}
		return report
	}

	report.Errors = append(report.Errors, validationIssue{Field: "config", Message: err.Error()})
	return report
}

func (cmd *ConfigValidateCmd) outputText(c *cli.Command, report validationReport) {
	w := c.Root().Writer

	for _, warn := range report.Warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.WarningStyle.Render("warning:"), warn.Category, warn.Message)
	}
	for _, e := range report.Errors {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.ErrorStyle.Render("error:"), e.Field, e.Message)
	}

	if report.Valid {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("Configuration is valid"))
	}
}
