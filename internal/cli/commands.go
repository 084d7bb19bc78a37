package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"lifeadmin/internal/core"
	"lifeadmin/internal/log"
	"lifeadmin/internal/services"
	"lifeadmin/internal/store"
	"lifeadmin/internal/vault"
)

// Opener opens the application for one command run.
type Opener func(ctx context.Context) (*App, error)

// DefaultOpener logs to stderr so stdout stays clean for exported data.
func DefaultOpener(ctx context.Context) (*App, error) {
	return Open(ctx, Options{Component: log.ComponentCLI, LogOutput: os.Stderr})
}

// env is shared by every command: how to open the app and where to write.
type env struct {
	open   Opener
	stdout io.Writer
	stderr io.Writer
}

// run opens the app, runs fn and maps its error to an exit status.
func (e env) run(ctx context.Context, fn func(*App) error) subcommands.ExitStatus {
	a, err := e.open(ctx)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	if err := fn(a); err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// Commands returns every lifeadmin-cli subcommand.
func Commands(open Opener, stdout, stderr io.Writer) []subcommands.Command {
	e := env{open: open, stdout: stdout, stderr: stderr}
	return []subcommands.Command{
		&exportCmd{env: e},
		&importCmd{env: e},
		&backupCmd{env: e},
		&backupsCmd{env: e},
		&restoreCmd{env: e},
		&checkCmd{env: e},
		&syncCmd{env: e},
		&reportCmd{env: e},
		&templateCmd{env: e},
	}
}

type exportCmd struct {
	env
	envelope   bool
	passphrase string
	out        string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the store as JSON" }
func (*exportCmd) Usage() string {
	return `lifeadmin-cli export [-envelope] [-passphrase <p>] [-o <file>]

  Writes the store to stdout or a file, optionally wrapped and sealed.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.envelope, "envelope", false, "wrap the store with app name and export time")
	f.StringVar(&c.passphrase, "passphrase", "", "seal the export with this passphrase")
	f.StringVar(&c.out, "o", "", "output file (defaults to stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *App) error {
		data, err := a.Store.Export(ctx, c.envelope)
		if err != nil {
			return err
		}
		if c.passphrase != "" {
			if data, err = vault.Seal(data, c.passphrase); err != nil {
				return err
			}
		}
		if c.out == "" {
			_, err = fmt.Fprintln(c.stdout, string(data))
			return err
		}
		if err := os.WriteFile(c.out, data, 0o600); err != nil {
			return err
		}
		fmt.Fprintf(c.stderr, "Exported to %s\n", c.out)
		return nil
	})
}

type importCmd struct {
	env
	passphrase string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the store from a JSON export" }
func (*importCmd) Usage() string {
	return `lifeadmin-cli import [-passphrase <p>] <file>

  Replaces the store with a bare or wrapped export. Sealed files need -passphrase.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.passphrase, "passphrase", "", "passphrase for a sealed export")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return c.run(ctx, func(a *App) error {
		data, err := os.ReadFile(f.Arg(0))
		if err != nil {
			return err
		}
		if vault.IsSealed(data) {
			if data, err = vault.Open(data, c.passphrase); err != nil {
				return err
			}
		}
		st, err := a.Store.Import(ctx, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Imported %d items\n", len(st.LifeAdmin.Items))
		return nil
	})
}

type backupCmd struct {
	env
	reason string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "record a backup of the store" }
func (*backupCmd) Usage() string {
	return `lifeadmin-cli backup [-reason <text>]
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.reason, "reason", store.ReasonManual, "reason stored with the backup")
}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *App) error {
		b, err := a.Store.AddBackup(ctx, c.reason)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "Backup %s recorded\n", b.ID)
		return nil
	})
}

type backupsCmd struct{ env }

func (*backupsCmd) Name() string             { return "backups" }
func (*backupsCmd) Synopsis() string         { return "list backups, newest first" }
func (*backupsCmd) Usage() string            { return "lifeadmin-cli backups\n" }
func (*backupsCmd) SetFlags(f *flag.FlagSet) {}

func (c *backupsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *App) error {
		list, err := a.Store.Backups(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(c.stdout, "No backups")
			return nil
		}
		for _, b := range list {
			ts := time.UnixMilli(b.TS).Format("2006-01-02 15:04")
			fmt.Fprintf(c.stdout, "%s  %s  %s\n", b.ID, ts, b.Reason)
		}
		return nil
	})
}

type restoreCmd struct {
	env
	id     string
	safety bool
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "restore a backup" }
func (*restoreCmd) Usage() string {
	return `lifeadmin-cli restore [-id <backup id>] [-safety=false]

  Restores the given backup, or the newest one without -id.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "backup id (defaults to the newest)")
	f.BoolVar(&c.safety, "safety", true, "record a safety backup before restoring")
}

func (c *restoreCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *App) error {
		var err error
		if c.id == "" {
			_, err = a.Store.RestoreLatest(ctx, c.safety)
		} else {
			_, err = a.Store.RestoreBackup(ctx, c.id, c.safety)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, "Restored")
		return nil
	})
}

type checkCmd struct {
	env
	repair bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "check store integrity" }
func (*checkCmd) Usage() string {
	return `lifeadmin-cli check [-repair]
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.repair, "repair", false, "rewrite the store through the normalizers")
}

func (c *checkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	healthy := true
	status := c.run(ctx, func(a *App) error {
		check := a.Store.Check
		if c.repair {
			check = a.Store.Repair
		}
		rep, err := check(ctx)
		if err != nil {
			return err
		}
		if rep.OK {
			fmt.Fprintln(c.stdout, "OK")
			return nil
		}
		healthy = false
		for _, issue := range rep.Issues {
			fmt.Fprintf(c.stdout, "- %s\n", issue)
		}
		return nil
	})
	if status == subcommands.ExitSuccess && !healthy {
		return subcommands.ExitFailure
	}
	return status
}

type syncCmd struct{ env }

func (*syncCmd) Name() string             { return "sync" }
func (*syncCmd) Synopsis() string         { return "sync the store with the cloud remote" }
func (*syncCmd) Usage() string            { return "lifeadmin-cli sync\n" }
func (*syncCmd) SetFlags(f *flag.FlagSet) {}

func (c *syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(a *App) error {
		s, err := a.Syncer(ctx)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("cloud sync is not configured (CLOUD_REMOTE=%s)", a.Config.CloudRemote)
		}
		out, err := s.SyncNow(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "%s (local %d, remote %d)\n", out.Action, out.LocalUpdatedAt, out.RemoteUpdatedAt)
		return nil
	})
}

type reportCmd struct {
	env
	month string
	raw   bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print a monthly overview" }
func (*reportCmd) Usage() string {
	return `lifeadmin-cli report [-month YYYY-MM] [-raw]

  Prints status, next steps, money, wins and progress for one month.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "month to report (defaults to the current one)")
	f.BoolVar(&c.raw, "raw", false, "print markdown instead of rendering it")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.month != "" {
		if _, err := time.Parse("2006-01", c.month); err != nil {
			fmt.Fprintf(c.stderr, "Error: invalid month %q, want YYYY-MM\n", c.month)
			return subcommands.ExitUsageError
		}
	}
	return c.run(ctx, func(a *App) error {
		st, err := a.Store.Snapshot(ctx)
		if err != nil {
			return err
		}
		now := a.Store.Now()()
		month := c.month
		if month == "" {
			month = core.MonthKey(now)
		}
		md := ReportMarkdown(st, month, now)
		if !c.raw {
			if md, err = renderMarkdown(md); err != nil {
				return err
			}
		}
		_, err = fmt.Fprint(c.stdout, md)
		return err
	})
}

type templateCmd struct{ env }

func (*templateCmd) Name() string     { return "template" }
func (*templateCmd) Synopsis() string { return "add an admin item from a preset" }
func (*templateCmd) Usage() string {
	return `lifeadmin-cli template [<key>]

  Without a key, lists the presets.
`
}
func (*templateCmd) SetFlags(f *flag.FlagSet) {}

func (c *templateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(c.stdout, strings.Join(services.TemplateKeys(), "\n"))
		return subcommands.ExitSuccess
	}
	return c.run(ctx, func(a *App) error {
		it, err := services.NewService(a.Store, a.Logger).AddFromTemplate(ctx, f.Arg(0))
		if err != nil {
			return err
		}
		due := "no due date"
		if it.DueDateISO != nil {
			due = "due " + *it.DueDateISO
		}
		fmt.Fprintf(c.stdout, "Added %q (%s)\n", it.Name, due)
		return nil
	})
}
