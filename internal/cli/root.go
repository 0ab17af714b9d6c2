// Package cli wires the cadence commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tgienger/cadence/internal/config"
	"github.com/tgienger/cadence/internal/db"
	"github.com/tgienger/cadence/internal/lifecycle"
	"github.com/tgienger/cadence/internal/logging"
	"github.com/tgienger/cadence/internal/models"
)

// skipStore marks commands that run without opening the database
const skipStore = "skip-store"

// app holds what every command needs once the root has initialized
type app struct {
	configPath string
	dbPath     string
	verbose    bool

	cfg      *config.Config
	db       *db.DB
	ctl      *lifecycle.Controller
	statuses lifecycle.StatusSet
	logger   *slog.Logger
	closers  []io.Closer

	// newController lets tests pin the clock
	newController func(*app) *lifecycle.Controller
}

// NewRootCmd builds the command tree
func NewRootCmd(version string) *cobra.Command {
	root, _ := newRoot(version)
	return root
}

func newRoot(version string) (*cobra.Command, *app) {
	a := &app{newController: defaultController}

	root := &cobra.Command{
		Use:           "cadence",
		Short:         "cadence - recurring task tracker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cadence/config.yaml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at the configured level to stderr")

	root.AddCommand(
		newTUICmd(a),
		newProjectCmd(a),
		newTaskCmd(a),
		newSubtaskCmd(a),
		newRecurCmd(a),
		newSeriesCmd(a),
		newAgendaCmd(a),
		newConfigCmd(a),
	)
	return root, a
}

// Execute runs the CLI and returns the process exit code
func Execute(version string) int {
	root, a := newRoot(version)
	err := root.ExecuteContext(context.Background())
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.configPath == "" {
		a.configPath = config.Path()
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database = a.dbPath
	}
	a.cfg = cfg

	a.statuses, err = cfg.StatusSet()
	if err != nil {
		return err
	}

	if isTUI(cmd) {
		if err := a.openLogFile(); err != nil {
			return err
		}
	} else {
		level := cfg.Log.Level
		if !a.verbose {
			level = "warn"
		}
		a.logger = logging.New(cmd.ErrOrStderr(), level)
	}

	if cmd.Annotations[skipStore] != "" {
		return nil
	}

	path, err := cfg.DatabasePath()
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	a.db, err = db.Open(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, a.db)
	a.logger.Debug("database opened", "path", path)

	a.ctl = a.newController(a)
	return nil
}

func (a *app) openLogFile() error {
	path := a.cfg.Log.File
	if path == "" {
		dbPath, err := a.cfg.DatabasePath()
		if err != nil {
			return err
		}
		path = filepath.Join(filepath.Dir(dbPath), "cadence.log")
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.closers = append(a.closers, f)
	a.logger = logging.New(f, a.cfg.Log.Level)
	return nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func defaultController(a *app) *lifecycle.Controller {
	c := lifecycle.NewController(a.db, a.statuses, a.cfg.Scheduler())
	c.Logger = a.logger
	return c
}

func isTUI(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

// parseID parses a numeric task, project or subtask id argument
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func (a *app) task(ctx context.Context, arg string) (*models.Task, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	return a.db.GetTask(ctx, id)
}
