package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the shared model on the built-in seed corpus",
		Long: `Force a fresh training run of the shared category model from the
built-in seed corpus, replacing any persisted model. Per-user models
are untouched; use retrain for those.`,
		RunE: runTrain,
	}
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := eng.RetrainGlobal(ctx); err != nil {
		return err
	}

	fmt.Println("Shared category model trained and saved.")
	return nil
}
