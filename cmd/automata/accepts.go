package main

import (
	"fmt"

	automaton "github.com/geange/automata"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAcceptsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accepts <automaton> <word>...",
		Short: "Run words through an automaton",
		Long: `Run each word through the automaton and print whether it is accepted.
The automaton is either a log reference such as NFA:0 or the path of a JSON/YAML document.
Words are read one character per symbol; pass "" for the empty word.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := a.loadAutomaton(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, word := range args[1:] {
				result := "rejected"
				if automaton.Accepts(x, word) {
					result = "accepted"
				}
				a.logger.Debug("word run", zap.String("word", word), zap.String("result", result))
				fmt.Fprintf(cmd.OutOrStdout(), "%q\t%s\n", word, result)
			}
			return nil
		},
	}
}
