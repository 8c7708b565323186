package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var decayCmd = &cobra.Command{
	Use:   "decay [learner-id]",
	Short: "Run the passive decay pass (all learners unless one is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		eng, err := buildEngine(ctx, s)
		if err != nil {
			return err
		}

		var learners []string
		if len(args) == 1 {
			learners = args
		} else {
			learners, err = s.Profiles().LearnerIDs(ctx)
			if err != nil {
				return err
			}
		}

		total := 0
		for _, id := range learners {
			transitions, err := eng.RunDecay(ctx, id)
			if err != nil {
				return fmt.Errorf("decay for %s: %w", id, err)
			}
			if len(transitions) > 0 {
				fmt.Printf("%s: %d chunk(s) marked fragile\n", id, len(transitions))
			}
			total += len(transitions)
		}
		fmt.Printf("Decay pass complete: %d transition(s) across %d learner(s)\n", total, len(learners))
		return nil
	},
}
