package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the maintenance daemon (daily decay pass)",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")

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

		scheduler := gocron.NewScheduler(time.Local)
		_, err = scheduler.Every(1).Day().At(at).Do(func() {
			learners, err := s.Profiles().LearnerIDs(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "decay job: list learners: %v\n", err)
				return
			}
			for _, id := range learners {
				if _, err := eng.RunDecay(ctx, id); err != nil {
					fmt.Fprintf(os.Stderr, "decay job: learner %s: %v\n", id, err)
				}
			}
			fmt.Printf("decay pass finished for %d learner(s)\n", len(learners))
		})
		if err != nil {
			return fmt.Errorf("schedule decay job: %w", err)
		}

		scheduler.StartAsync()
		fmt.Printf("chatterling daemon running, daily decay at %s (ctrl-c to stop)\n", at)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		scheduler.Stop()
		return nil
	},
}

func init() {
	serveCmd.Flags().String("at", "03:00", "Local time of day for the daily decay pass (HH:MM)")
}
