package main

import (
	automaton "github.com/geange/automata"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type transformFlags struct {
	save   bool
	asJSON bool
}

func (f *transformFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.save, "save", false, "Append the result to the automaton log")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the result as JSON instead of YAML")
}

func (a *app) finish(cmd *cobra.Command, flags *transformFlags, x *automaton.Automaton) error {
	if flags.save {
		return a.save(cmd.Context(), cmd.OutOrStdout(), x)
	}
	return writeDocument(cmd.OutOrStdout(), x.Definition(), flags.asJSON)
}

func newDeterminizeCmd(a *app) *cobra.Command {
	var (
		flags transformFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "determinize <automaton>",
		Short: "Convert an NFA into an equivalent DFA (subset construction)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Determinize.WorkLimit
			}
			nfa, err := a.loadAutomaton(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dfa, err := automaton.DeterminizeWithLimit(nfa, limit)
			if err != nil {
				return err
			}
			a.logger.Info("automaton determinized",
				zap.Int("nfa_states", nfa.NumStates()),
				zap.Int("dfa_states", dfa.NumStates()),
			)
			return a.finish(cmd, &flags, dfa)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of subset states to expand, 0 for no limit (default determinize.work_limit)")
	return cmd
}

func newMinimizeCmd(a *app) *cobra.Command {
	var flags transformFlags
	cmd := &cobra.Command{
		Use:   "minimize <automaton>",
		Short: "Minimize a DFA by partition refinement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dfa, err := a.loadAutomaton(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			minimal, err := automaton.Minimize(dfa)
			if err != nil {
				return err
			}
			a.logger.Info("automaton minimized",
				zap.Int("states_before", dfa.NumStates()),
				zap.Int("states_after", minimal.NumStates()),
			)
			return a.finish(cmd, &flags, minimal)
		},
	}
	flags.register(cmd)
	return cmd
}

func newRegExpCmd(a *app) *cobra.Command {
	var (
		flags       transformFlags
		alphabet    []string
		determinize bool
	)
	cmd := &cobra.Command{
		Use:   "regexp <pattern>",
		Short: "Compile a regular expression into an NFA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var options []automaton.RegExpOption
			if cmd.Flags().Changed("alphabet") {
				options = append(options, automaton.WithAlphabet(alphabet))
			}
			r, err := automaton.NewRegExp(args[0], options...)
			if err != nil {
				return err
			}
			x, err := r.ToAutomaton()
			if err != nil {
				return err
			}
			if determinize {
				if x, err = automaton.DeterminizeWithLimit(x, a.cfg.Determinize.WorkLimit); err != nil {
					return err
				}
			}
			a.logger.Info("regular expression compiled",
				zap.String("pattern", r.String()),
				zap.Int("states", x.NumStates()),
			)
			return a.finish(cmd, &flags, x)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVar(&alphabet, "alphabet", nil, "Symbols '.' and negated classes range over (default: the pattern's characters)")
	cmd.Flags().BoolVar(&determinize, "determinize", false, "Determinize the compiled NFA")
	return cmd
}
