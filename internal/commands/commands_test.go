package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/worklog/internal/core/config"
	"github.com/hay-kot/worklog/internal/core/item"
	"github.com/hay-kot/worklog/internal/core/journal"
	"github.com/hay-kot/worklog/internal/worklog"
)

type testEnv struct {
	app   *worklog.App
	flags *Flags
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	return &testEnv{
		app:   worklog.NewApp(&cfg, zerolog.Nop()),
		flags: &Flags{DataDir: cfg.DataDir},
	}
}

// run executes one invocation against a fresh command tree and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := &cli.Command{Name: "worklog", Writer: &out, ErrWriter: &errOut}
	root = NewItemCmd(e.flags, e.app).Register(root)
	root = NewJournalCmd(e.flags, e.app).Register(root)
	root = NewConfigValidateCmd(e.flags, e.app).Register(root)
	root = NewDoctorCmd(e.flags, e.app).Register(root)

	err := root.Run(context.Background(), append([]string{"worklog"}, args...))
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err)
	return out
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func decodeLines[T any](t *testing.T, s string) []T {
	t.Helper()
	var out []T
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line == "" {
			continue
		}
		out = append(out, decode[T](t, line))
	}
	return out
}

func TestItemCmd_CreateShowUpdate(t *testing.T) {
	env := newTestEnv(t)

	created := decode[item.Item](t, env.mustRun(t, "item", "create",
		"--title", "Migrate ingestion",
		"--kind", "project",
		"--priority", "high",
		"--eta", "2030-03-01",
		"--tag", "infra", "--tag", "q1",
	))
	assert.True(t, item.IsValidID(created.ID))
	assert.Equal(t, item.KindProject, created.Kind)
	assert.Equal(t, item.StatusTodo, created.Status)
	assert.Equal(t, []string{"infra", "q1"}, created.Tags)
	require.NotNil(t, created.ETA)

	shown := decode[item.Item](t, env.mustRun(t, "item", "show", created.ID))
	assert.Equal(t, created.Title, shown.Title)

	updated := decode[item.Item](t, env.mustRun(t, "item", "update", "--priority", "low", "--tag", "infra", created.ID))
	assert.Equal(t, item.PriorityLow, updated.Priority)
	assert.Equal(t, []string{"infra"}, updated.Tags)
	assert.Equal(t, item.KindProject, updated.Kind)
}

func TestItemCmd_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "item", "show", "task-0000dead")
	require.ErrorIs(t, err, item.ErrNotFound)

	_, err = env.run(t, "item", "show", "not-an-id")
	var verr *item.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = env.run(t, "item", "create", "--title", "x", "--kind", "spaceship")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)

	_, err = env.run(t, "item", "list", "--status", "finished")
	require.ErrorAs(t, err, &verr)

	created := decode[item.Item](t, env.mustRun(t, "item", "create", "--title", "x"))
	_, err = env.run(t, "item", "update", created.ID)
	require.ErrorContains(t, err, "nothing to update")
}

func TestItemCmd_ListAndNote(t *testing.T) {
	env := newTestEnv(t)

	a := decode[item.Item](t, env.mustRun(t, "item", "create", "--title", "Fix login", "--kind", "ticket"))
	env.mustRun(t, "item", "create", "--title", "Plan offsite")

	all := decodeLines[item.Item](t, env.mustRun(t, "item", "list"))
	assert.Len(t, all, 2)

	tickets := decodeLines[item.Item](t, env.mustRun(t, "item", "list", "--kind", "ticket"))
	require.Len(t, tickets, 1)
	assert.Equal(t, a.ID, tickets[0].ID)

	found := decodeLines[item.Item](t, env.mustRun(t, "item", "search", "login"))
	require.Len(t, found, 1)

	noted := decode[item.Item](t, env.mustRun(t, "item", "note", a.ID, "waiting", "on", "infra"))
	require.Len(t, noted.Notes, 1)
	assert.Equal(t, "waiting on infra", noted.Notes[0].Text)

	stats := decode[worklog.Stats](t, env.mustRun(t, "item", "stats"))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByKind[item.KindTicket])

	env.mustRun(t, "item", "delete", a.ID)
	_, err := env.run(t, "item", "delete", a.ID)
	require.ErrorIs(t, err, item.ErrNotFound)
}

func TestItemCmd_DoneReflectsIntoJournal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a := decode[item.Item](t, env.mustRun(t, "item", "create", "--title", "active", "--status", "in-progress"))

	started := decode[worklog.StartDayResult](t, env.mustRun(t, "journal", "start-day"))
	assert.Contains(t, started.Added, a.ID)

	done := decode[item.Item](t, env.mustRun(t, "item", "done", a.ID))
	assert.Equal(t, item.StatusDone, done.Status)

	w, err := env.app.Journal.Current(ctx)
	require.NoError(t, err)
	checked := false
	for i := range w.Days {
		if w.Days[i].CheckedState()[a.ID] {
			checked = true
		}
	}
	assert.True(t, checked, "done ticks the journal checkbox")

	res := decode[worklog.SyncResult](t, env.mustRun(t, "journal", "sync", "--week"))
	assert.Empty(t, res.Reopened)
}

func TestJournalCmd_ShowSummaryAndBackups(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "item", "create", "--title", "anything")
	env.mustRun(t, "journal", "start-day", "--date", "2026-02-11")

	md := env.mustRun(t, "journal", "show", "--week", "2026-W07")
	assert.True(t, strings.HasPrefix(md, "# Week 7 - 2026"), md)

	sum := env.mustRun(t, "journal", "summary", "--date", "2026-02-11")
	assert.Contains(t, sum, `"path"`)
	_, err := os.Stat(env.app.Journals.SummaryPath(journal.WeekKey{Year: 2026, Week: 7}))
	require.NoError(t, err)

	bk := decode[map[string]any](t, env.mustRun(t, "journal", "backup", "--week", "2026-W07"))
	assert.Equal(t, "manual", bk["trigger"])

	list := decodeLines[map[string]any](t, env.mustRun(t, "journal", "backups", "--week", "2026-W07"))
	require.NotEmpty(t, list)
	assert.Equal(t, bk["name"], list[0]["name"])

	restored := decode[map[string]any](t, env.mustRun(t, "journal", "restore", "--week", "2026-W07", bk["name"].(string)))
	assert.Equal(t, "2026-W07", restored["week"])

	_, err = env.run(t, "journal", "restore", "--week", "2026-W07", "1999-01-01T00-00-00")
	require.Error(t, err)

	_, err = env.run(t, "journal", "backup", "--week", "2026-W30")
	require.ErrorContains(t, err, "no journal")
}

func TestJournalCmd_Quarter(t *testing.T) {
	env := newTestEnv(t)

	out := decode[journal.QuarterlySummary](t, env.mustRun(t, "journal", "quarter", "--year", "2026", "--quarter", "1"))
	assert.Equal(t, 2026, out.Year)
	assert.Equal(t, 0, out.WeeksTracked)

	_, err := env.run(t, "journal", "quarter", "--year", "2026", "--quarter", "5")
	var verr *item.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestConfigValidateCmd(t *testing.T) {
	env := newTestEnv(t)

	out := decode[validationReport](t, env.mustRun(t, "config", "validate", "--format", "json"))
	assert.True(t, out.Valid)

	require.NoError(t, os.WriteFile(filepath.Join(env.app.Config.DataDir, "journal"), []byte("x"), 0o644))
	_, err := env.run(t, "config", "validate", "--format", "json")
	require.ErrorContains(t, err, "configuration error")
}

func TestBuildReport_Warnings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Backup.Enabled = false

	report := buildReport(&cfg, "")
	assert.True(t, report.Valid)
	assert.NotEmpty(t, report.Warnings)
}

func TestDoctorCmd(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "item", "create", "--title", "anything")
	env.mustRun(t, "journal", "start-day", "--date", "2026-02-11")

	type report struct {
		Healthy bool `json:"healthy"`
		Summary struct {
			Failed int `json:"failed"`
		} `json:"summary"`
	}

	out := decode[report](t, env.mustRun(t, "doctor", "--format", "json", "--week", "2026-W07"))
	assert.True(t, out.Healthy)

	tasks := env.app.Config.ItemsDir()
	require.NoError(t, os.WriteFile(filepath.Join(tasks, "task-0000beef.md"), []byte("no front matter"), 0o644))

	_, err := env.run(t, "doctor", "--format", "json", "--week", "2026-W07")
	require.ErrorContains(t, err, "check(s) failed")

	text, _ := env.run(t, "doctor", "--week", "2026-W07")
	assert.Contains(t, text, "task-0000beef.md")
}

func TestJournalCmd_ShowRender(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "journal", "start-day", "--date", "2026-02-11")

	out := env.mustRun(t, "journal", "show", "--render", "--week", "2026-W07")
	assert.Contains(t, out, "2026")
	assert.Contains(t, out, "Wednesday")
}
