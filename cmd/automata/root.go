package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/geange/automata/internal/config"
	"github.com/geange/automata/internal/logging"
	"github.com/geange/automata/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what the subcommands share once the root command has parsed its flags.
type app struct {
	cfgFile string
	backend string
	verbose bool

	cfg    config.Config
	logger *zap.Logger
	log    store.Log
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "automata",
		Short:         "automata - finite automata and Turing machine toolkit",
		Long:          `Run words through DFAs, NFAs and Turing machines, determinize and minimize automata, and keep them in an append-only log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "Configuration file (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&a.backend, "store", "", "Automaton log backend: file, redis or memory")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newAcceptsCmd(a))
	rootCmd.AddCommand(newDeterminizeCmd(a))
	rootCmd.AddCommand(newMinimizeCmd(a))
	rootCmd.AddCommand(newRegExpCmd(a))
	rootCmd.AddCommand(newEquivalenceCmd(a))
	rootCmd.AddCommand(newTuringCmd(a))
	rootCmd.AddCommand(newLogCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}

// Execute runs the CLI with args.
func Execute(args []string) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, err := logging.New(a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	// init writes the configuration instead of reading it.
	if cmd.Name() == "init" {
		a.cfg = config.Default()
		if a.backend != "" {
			a.cfg.Store.Backend = a.backend
		}
		return a.cfg.Validate()
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		if a.cfgFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = config.Default()
	}
	if a.backend != "" {
		cfg.Store.Backend = a.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger.Debug("configuration loaded",
		zap.String("file", a.cfgFile),
		zap.String("store", cfg.Store.Backend),
	)
	return nil
}

// store opens the configured log on first use.
func (a *app) store() (store.Log, error) {
	if a.log != nil {
		return a.log, nil
	}
	log, err := openStore(a.cfg.Store)
	if err != nil {
		return nil, err
	}
	a.log = log
	return log, nil
}

func (a *app) close() error {
	_ = a.logger.Sync()
	if a.log == nil {
		return nil
	}
	err := a.log.Close()
	a.log = nil
	return err
}
