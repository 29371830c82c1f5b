package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict <description>",
		Short: "Predict a category without recording anything",
		Args:  cobra.ExactArgs(1),
		RunE:  runPredict,
	}
}

func runPredict(cmd *cobra.Command, args []string) error {
	// Anonymous prediction is allowed; the global model serves it.
	userID, _ := requireUser()

	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result := eng.PredictCategory(ctx, args[0], userID)
	fmt.Printf("%s (confidence %.2f)\n", result.Label, result.Confidence)
	return nil
}
