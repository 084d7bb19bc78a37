package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"

	"lifeadmin/internal/config"
	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/storage/memory"
	"lifeadmin/internal/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type harness struct {
	app            *App
	stdout, stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	n := 0
	p := memory.New()
	m := store.NewManager(p,
		store.WithClock(func() time.Time { return testNow }),
		store.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		store.WithLogger(log.Nop()))
	return &harness{
		app:    &App{Config: &config.Config{CloudRemote: "none"}, Logger: log.Nop(), Store: m, Persistence: p},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
}

func (h *harness) run(t *testing.T, args ...string) subcommands.ExitStatus {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	fs := flag.NewFlagSet("lifeadmin-cli", flag.ContinueOnError)
	cdr := subcommands.NewCommander(fs, "lifeadmin-cli")
	open := func(context.Context) (*App, error) { return h.app, nil }
	for _, c := range Commands(open, h.stdout, h.stderr) {
		cdr.Register(c, "")
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cdr.Execute(context.Background())
}

func TestExportImportRoundTrip(t *testing.T) {
	h := newHarness(t)
	if st := h.run(t, "template", "passport"); st != subcommands.ExitSuccess {
		t.Fatalf("template: %v (%s)", st, h.stderr)
	}

	file := filepath.Join(t.TempDir(), "export.json")
	if st := h.run(t, "export", "-envelope", "-passphrase", "pw", "-o", file); st != subcommands.ExitSuccess {
		t.Fatalf("export: %v (%s)", st, h.stderr)
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "lifeAdmin") {
		t.Error("sealed export leaks plaintext")
	}

	if st := h.run(t, "import", file); st != subcommands.ExitFailure {
		t.Errorf("import without passphrase = %v, want failure", st)
	}
	if st := h.run(t, "import", "-passphrase", "pw", file); st != subcommands.ExitSuccess {
		t.Fatalf("import: %v (%s)", st, h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "Imported 1 items") {
		t.Errorf("import output = %q", h.stdout)
	}
	if st := h.run(t, "import"); st != subcommands.ExitUsageError {
		t.Errorf("import without file = %v, want usage error", st)
	}
}

func TestBackupAndRestore(t *testing.T) {
	h := newHarness(t)

	if st := h.run(t, "restore"); st != subcommands.ExitFailure {
		t.Errorf("restore with no backups = %v, want failure", st)
	}
	if st := h.run(t, "backups"); st != subcommands.ExitSuccess || !strings.Contains(h.stdout.String(), "No backups") {
		t.Errorf("backups = %v, %q", st, h.stdout)
	}
	if st := h.run(t, "backup", "-reason", "before-trip"); st != subcommands.ExitSuccess {
		t.Fatalf("backup: %v (%s)", st, h.stderr)
	}
	if st := h.run(t, "backups"); st != subcommands.ExitSuccess || !strings.Contains(h.stdout.String(), "before-trip") {
		t.Errorf("backups = %v, %q", st, h.stdout)
	}
	if st := h.run(t, "restore", "-safety=false"); st != subcommands.ExitSuccess {
		t.Errorf("restore latest: %v (%s)", st, h.stderr)
	}
	if st := h.run(t, "restore", "-id", "nope"); st != subcommands.ExitFailure {
		t.Errorf("restore unknown id = %v, want failure", st)
	}
}

func TestCheck(t *testing.T) {
	h := newHarness(t)
	if _, err := h.app.Store.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st := h.run(t, "check"); st != subcommands.ExitSuccess || strings.TrimSpace(h.stdout.String()) != "OK" {
		t.Errorf("check = %v, %q", st, h.stdout)
	}
	if st := h.run(t, "check", "-repair"); st != subcommands.ExitSuccess {
		t.Errorf("check -repair = %v (%s)", st, h.stderr)
	}
}

func TestSyncWithoutRemote(t *testing.T) {
	h := newHarness(t)
	if st := h.run(t, "sync"); st != subcommands.ExitFailure {
		t.Errorf("sync = %v, want failure", st)
	}
	if !strings.Contains(h.stderr.String(), "not configured") {
		t.Errorf("stderr = %q", h.stderr)
	}
}

func TestTemplate(t *testing.T) {
	h := newHarness(t)
	if st := h.run(t, "template"); st != subcommands.ExitSuccess || !strings.Contains(h.stdout.String(), "passport") {
		t.Errorf("template list = %v, %q", st, h.stdout)
	}
	if st := h.run(t, "template", "nope"); st != subcommands.ExitFailure {
		t.Errorf("unknown template = %v, want failure", st)
	}
}

func TestReport(t *testing.T) {
	h := newHarness(t)
	if _, err := h.app.Store.Update(context.Background(), func(s *core.Store) error {
		s.LifeAdmin.Items = append(s.LifeAdmin.Items, core.AdminItem{
			ID: "a1", Name: "Car | tax", Category: core.CategoryVehicle,
			DueDateISO: core.Ptr("2025-03-12"), Priority: core.PriorityNormal,
		})
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if st := h.run(t, "report", "-raw"); st != subcommands.ExitSuccess {
		t.Fatalf("report: %v (%s)", st, h.stderr)
	}
	out := h.stdout.String()
	for _, want := range []string{"# Life Admin report: 2025-03", "## Next steps", `Car \| tax`, "## Money"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	if st := h.run(t, "report", "-month", "March"); st != subcommands.ExitUsageError {
		t.Errorf("bad month = %v, want usage error", st)
	}
}
