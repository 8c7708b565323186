package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatterling/engine/internal/srs"
)

var dueCmd = &cobra.Command{
	Use:   "due <learner-id>",
	Short: "Show how many chunks need review now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		scheduler := srs.NewScheduler(s.States())
		due, err := scheduler.Due(ctx, args[0])
		if err != nil {
			return fmt.Errorf("due lookup: %w", err)
		}

		if len(due) == 0 {
			fmt.Println("Nothing due. All caught up.")
			return nil
		}

		fmt.Printf("%d chunk(s) due for review:\n", len(due))
		for _, st := range due {
			marker := " "
			if st.Status == srs.StatusFragile {
				marker = "!"
			}
			fmt.Printf("  %s %-36s  %-9s  due %s\n",
				marker, st.ChunkID, st.Status, st.NextReviewAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}
