// Package cli implements the usercontext command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"usercontext/internal/config"
	"usercontext/internal/domain"
	"usercontext/internal/logging"
	"usercontext/internal/render"
	"usercontext/internal/repository/sqlite"
	"usercontext/internal/service"
)

// Output formats for --output
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// annotation that keeps setup from opening the database
const skipStore = "usercontext/skip-store"

// app holds the state shared by every command of one invocation
type app struct {
	// flags
	configPath string
	dbPath     string
	user       string
	output     string
	logLevel   string
	wide       bool

	cfg     *config.Config
	cfgFile string
	log     *slog.Logger
	repo    *sqlite.Repository
	svc     *service.ContextService
	render  *render.Renderer
}

// NewRootCmd builds the command tree
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "usercontext",
		Short: "Durable user context for AI assistants",
		Long: `usercontext keeps what an assistant has learned about a user: decisions,
goals, preferences, known issues and follow-up todos. It serves them to
assistants over MCP and lets you inspect and edit them from the shell.

Examples:
  usercontext serve                               # MCP server on stdio
  usercontext decision create "use sqlite" --category architecture --user alice
  usercontext goal list --status in_progress
  usercontext export --format markdown --file context.md

Config: ./usercontext.yaml or ~/.config/usercontext/config.yaml (or $USERCONTEXT_CONFIG)`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: search standard locations)")
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	flags.StringVarP(&a.user, "user", "u", "", "user the context belongs to (default: config default_user)")
	flags.StringVarP(&a.output, "output", "o", OutputTable, "output format: table or json")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&a.wide, "wide", false, "show full IDs in tables")

	root.AddCommand(
		a.serveCmd(),
		a.configCmd(),
		a.decisionCmd(),
		a.goalCmd(),
		a.preferenceCmd(),
		a.issueCmd(),
		a.todoCmd(),
		a.queryCmd(),
		a.historyCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return root
}

// setup loads config, installs the logger and opens the store
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.output != OutputTable && a.output != OutputJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", a.output, OutputTable, OutputJSON)
	}

	var err error
	if a.configPath != "" {
		a.cfg, a.cfgFile, err = config.LoadFromPath(a.configPath)
		if err == nil {
			a.cfg.ApplyEnv()
		}
	} else {
		a.cfg, a.cfgFile, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		a.cfg.Database.Path = a.dbPath
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}

	a.log, err = logging.Init(logging.Options{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if a.cfgFile != "" {
		a.log.Debug("config loaded", "path", a.cfgFile)
	}
	a.render = render.New(cmd.OutOrStdout())
	a.render.Wide = a.wide

	if cmd.Annotations[skipStore] == "true" {
		return nil
	}

	a.repo, err = sqlite.Open(cmd.Context(), a.cfg.Database.Path, sqlite.Options{
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
		BusyTimeout:  a.cfg.BusyTimeout(),
		Logger:       a.log,
	})
	if err != nil {
		return fmt.Errorf("open database %s: %w", a.cfg.Database.Path, err)
	}

	a.svc = service.NewContextService(a.repo, a.cfg.Actor, nil, a.log)
	return nil
}

func (a *app) close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

// userID resolves the --user flag, falling back to the configured default
func (a *app) userID() (string, error) {
	if a.user != "" {
		return a.user, nil
	}
	if a.cfg != nil && a.cfg.DefaultUser != "" {
		return a.cfg.DefaultUser, nil
	}
	return "", errors.New("no user given: pass --user or set default_user / $" + config.EnvDefaultUser)
}

// emit prints v as JSON or through the table renderer
func (a *app) emit(v any, table func() error) error {
	if a.output == OutputJSON {
		return a.render.JSON(v)
	}
	return table()
}

// deleted reports the outcome of a delete command
func (a *app) deleted(cmd *cobra.Command, kind, id string, ok bool) error {
	if a.output == OutputJSON {
		return a.render.JSON(map[string]any{"id": id, "deleted": ok})
	}
	if !ok {
		cmd.PrintErrf("%s %s not found\n", kind, id)
		return nil
	}
	cmd.Printf("Deleted %s %s\n", kind, id)
	return nil
}

// filterFrom turns the changed filter flags into a query filter
func filterFrom(cmd *cobra.Command, names ...string) service.Filter {
	f := service.Filter{}
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetString(name)
		key := strings.ReplaceAll(name, "-", "_")
		if name == "project" {
			key = service.FilterProject
		}
		f[key] = v
	}
	return f
}

// parseDate accepts RFC 3339 timestamps or plain dates
func parseDate(flag, s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("--%s: %q is not a date (want YYYY-MM-DD or RFC 3339)", flag, s)
}

// parseScope accepts the encoded scope forms
func parseScope(s string) (domain.ContextScope, error) {
	scope, err := domain.ParseScope(s)
	if err != nil {
		return scope, fmt.Errorf("--scope: %w (want global, project_id:<id> or workflow:<name>)", err)
	}
	return scope, nil
}

func enumHelp(values []string) string {
	return strings.Join(values, ", ")
}

// optional maps an empty flag value to nil
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
