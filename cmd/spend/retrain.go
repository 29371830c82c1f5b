package main

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func retrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Rebuild category models from corrected history",
		RunE:  runRetrain,
	}

	cmd.Flags().Bool("all", false, "retrain every user with corrections")
	cmd.Flags().Int("concurrency", 4, "parallel retrains when using --all")

	return cmd
}

func runRetrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	all, _ := cmd.Flags().GetBool("all")
	if !all {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		if err := eng.RetrainUser(ctx, userID); err != nil {
			return err
		}
		fmt.Printf("Retrained model for %s\n", userID)
		return nil
	}

	userIDs, err := store.ListUserIDs(ctx)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		fmt.Println("No users with expenses.")
		return nil
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	bar := progressbar.NewOptions(len(userIDs),
		progressbar.OptionSetDescription("Retraining"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var mu sync.Mutex
	var failed int
	err = eng.RetrainAllUsers(ctx, concurrency, func(userID string, err error) {
		mu.Lock()
		defer mu.Unlock()
		_ = bar.Add(1)
		if err != nil {
			failed++
			fmt.Printf("\n%s\n", warnStyle.Render(fmt.Sprintf("retrain failed for %s: %v", userID, err)))
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("Retrained %d user(s)", len(userIDs)-failed)
	if failed > 0 {
		fmt.Printf(", %d failed", failed)
	}
	fmt.Println()
	return nil
}
