package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/being-motion/spline/internal/config"
	"github.com/being-motion/spline/internal/content"
	"github.com/being-motion/spline/internal/logging"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "curver",
		Short:         "Edit, fit and serve motion curves",
		Long:          `curver manages a library of named motion curves: cubic splines describing a value over time.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvPath+" or "+config.Path()+")")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newRenameCmd(a),
		newCopyCmd(a),
		newRemoveCmd(a),
		newFitCmd(a),
		newRenderCmd(a),
		newDragCmd(a),
		newInsertKnotCmd(a),
		newRemoveKnotCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log, cmd.ErrOrStderr())
	a.logger.Debug("loaded config", slog.String("path", path), slog.String("backend", cfg.Content.Backend))
	return nil
}

// openContent opens the configured content store. The caller closes it.
func (a *app) openContent() (*content.Content, error) {
	var (
		store content.Store
		err   error
	)
	switch a.cfg.Content.Backend {
	case config.BackendBadger:
		store, err = content.OpenBadgerStore(content.BadgerConfig{
			Path:   a.cfg.Content.BadgerPath,
			Logger: a.logger,
		})
	default:
		store, err = content.NewFileStore(a.cfg.Content.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	return content.New(store, content.WithLogger(a.logger)), nil
}

// withContent runs fn with an open content store.
func (a *app) withContent(fn func(c *content.Content) error) error {
	c, err := a.openContent()
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
