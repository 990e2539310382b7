package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/geange/automata/internal/definition"
	"github.com/geange/automata/turing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTuringCmd(a *app) *cobra.Command {
	var (
		stepLimit int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "turing <machine> <word>...",
		Short: "Execute a Turing machine on words",
		Long: `Execute the Turing machine described by a JSON/YAML document on each word and print the
outcome and the final tape. Execution stops after the configured step limit.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := definition.LoadMachine(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("step-limit") {
				stepLimit = a.cfg.Turing.StepLimit
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			for _, word := range args[1:] {
				res, err := m.ExecuteContext(ctx, word, turing.WithStepLimit(stepLimit))
				if err != nil {
					return fmt.Errorf("word %q: %w", word, err)
				}
				a.logger.Debug("machine halted",
					zap.String("word", word),
					zap.Stringer("halt", res.Halt),
					zap.Int("steps", res.Steps),
				)
				if asJSON {
					if err := writeDocument(out, res, true); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%q\t%s\ttape=%s\tsteps=%d\n", word, res.Halt, res.Tape, res.Steps)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&stepLimit, "step-limit", 0, "Maximum number of steps per word (default from configuration)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print each result as JSON")
	return cmd
}
