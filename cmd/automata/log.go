package main

import (
	"fmt"
	"strconv"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/definition"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLogCmd(a *app) *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect and extend the append-only automaton log",
	}
	logCmd.AddCommand(newLogAppendCmd(a))
	logCmd.AddCommand(newLogListCmd(a))
	logCmd.AddCommand(newLogShowCmd(a))
	return logCmd
}

func newLogAppendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "append <file>...",
		Short: "Validate automaton documents and append them to the log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				x, err := definition.LoadAutomaton(path)
				if err != nil {
					return err
				}
				if err := a.save(cmd.Context(), cmd.OutOrStdout(), x); err != nil {
					return err
				}
				a.logger.Debug("automaton appended", zap.String("file", path), zap.Stringer("kind", x.Kind()))
			}
			return nil
		},
	}
}

func newLogListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List the automata of one kind (DFA or NFA)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := automaton.ParseKind(args[0])
			if err != nil {
				return err
			}
			log, err := a.store()
			if err != nil {
				return err
			}
			defs, err := log.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, def := range defs {
				fmt.Fprintf(out, "%s:%d\tstates=%d\tstart=%s\taccepting=%v\n",
					kind, i, len(def.States), def.Start, def.Accepting)
			}
			return nil
		},
	}
}

func newLogShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <kind> <index>",
		Short: "Print one automaton of the log",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := automaton.ParseKind(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			log, err := a.store()
			if err != nil {
				return err
			}
			def, err := log.Get(cmd.Context(), kind, index)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), def, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON instead of YAML")
	return cmd
}
