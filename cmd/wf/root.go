// Command wf is the CLI control plane for a workflow-automation server
// (spec §1 "Purpose & scope"). Each subcommand is a thin RunE handler wiring
// the core subsystems (catalog, validator, autofix, diffengine, apiclient,
// lifecycle, localstore) together; one command (or command family) per file,
// following the teacher's cmd/bd layout.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/apiclient"
	"github.com/n8n-cli/wf/internal/apperr"
	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/config"
	"github.com/n8n-cli/wf/internal/lifecycle"
	"github.com/n8n-cli/wf/internal/localstore"
	"github.com/n8n-cli/wf/internal/logging"
)

// app is the explicit handle bundle every subcommand receives through its
// cobra.Command context (spec §9 "Singletons and reset hooks" — no
// module-level mutable state; each invocation builds and owns its own app).
type app struct {
	cfg        *config.Config
	log        *logging.Logger
	catalog    *catalog.Store
	http       *apiclient.Client
	lifecycle  *lifecycle.Coordinator
	local      *localstore.Store
	backuper   *lifecycle.Backuper
	homeDir    string
}

type appKeyType struct{}

var appKey = appKeyType{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey).(*app)
}

var verbose bool
var configDir string

// lastApp holds the most recently built app so main can inspect its
// lifecycle Coordinator after rootCmd.Execute returns (the app itself lives
// only inside the per-invocation cmd.Context(), which is gone by then).
var lastApp *app

var rootCmd = &cobra.Command{
	Use:           "wf",
	Short:         "Control plane for a workflow-automation server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		lastApp = a
		// Every subcommand's RunE reads cmd.Context() for its HTTP/store
		// calls, so it must be the Coordinator's cancellable context, not
		// the original uncancelled one Execute started with (spec §6
		// "cancel any outstanding HTTP contexts").
		cmd.SetContext(context.WithValue(a.lifecycle.Context(), appKey, a))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		a, ok := cmd.Context().Value(appKey).(*app)
		if !ok || a == nil {
			return nil
		}
		return a.shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Emit debug-level logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory to start the config-file search from (defaults to cwd)")
	rootCmd.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog commands:"},
		&cobra.Group{ID: "workflow", Title: "Workflow commands:"},
		&cobra.Group{ID: "diff", Title: "Diff & validation commands:"},
		&cobra.Group{ID: "setup", Title: "Setup commands:"},
	)
}

// buildApp resolves configuration and constructs every subsystem handle
// this invocation needs, in dependency order (spec §2 "Dependency order,
// leaves first"): config -> logging -> lifecycle -> catalog -> local store
// -> backup -> HTTP client.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, apperr.Wrap(apperr.ConfigInvalid, "loading configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.ConfigInvalid, "validating configuration", err)
	}

	home, err := n8nHomeDir()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "resolving home directory", err)
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "creating "+home, err)
	}

	log := logging.New(home, verbose)

	lc := lifecycle.New(ctx, time.Duration(cfg.CleanupTimeoutMs)*time.Millisecond, log)

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = defaultCatalogPath()
	}
	store, err := catalog.Open(lc.Context(), dbPath, log)
	if err != nil {
		return nil, err
	}
	lc.RegisterCleanup(func(context.Context) error { return store.Close() })

	local, err := localstore.Open(lc.Context(), filepath.Join(home, "data.db"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	lc.RegisterCleanup(func(context.Context) error { return local.Close() })

	backuper, err := lifecycle.NewBackuper(home, cfg.StrictPermissions)
	if err != nil {
		return nil, err
	}

	httpClient := apiclient.New(apiclient.Config{
		Host:           cfg.Host,
		APIKey:         cfg.APIKey,
		InsecureHTTPS:  cfg.InsecureHTTPS,
		DefaultTimeout: cfg.Timeout,
	}, log)

	return &app{
		cfg:       cfg,
		log:       log,
		catalog:   store,
		http:      httpClient,
		lifecycle: lc,
		local:     local,
		backuper:  backuper,
		homeDir:   home,
	}, nil
}

func (a *app) shutdown() error {
	return a.lifecycle.Shutdown()
}

// n8nHomeDir resolves the CLI's local writable state directory (spec §6
// "~/.n8n-cli/ (or XDG equivalent)").
func n8nHomeDir() (string, error) {
	if dir := os.Getenv("WF_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".n8n-cli"), nil
}

// defaultCatalogPath resolves the bundled read-only catalog relative to the
// running executable, overridable via the dbPath config key.
func defaultCatalogPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "catalog.db"
	}
	return filepath.Join(filepath.Dir(exe), "catalog.db")
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
	}
	// A signal-driven shutdown gets its exit code from which signal was
	// caught (SIGINT 130, SIGTERM 143, spec §6 "Exit codes"), not from the
	// generic Cancelled kind every signal otherwise collapses into.
	if lastApp != nil {
		if sig, ok := lastApp.lifecycle.CaughtSignal(); ok {
			os.Exit(lifecycle.ExitCode(sig))
		}
	}
	if err != nil {
		os.Exit(apperr.ExitCode(apperr.KindOf(err)))
	}
}
