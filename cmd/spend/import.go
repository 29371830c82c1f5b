package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendsense/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import expenses from an OFX/QFX bank export",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()

	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	drafts, err := ofx.NewParser().ParseFile(ctx, f, userID)
	if err != nil {
		return fmt.Errorf("failed to parse OFX file: %w", err)
	}
	if len(drafts) == 0 {
		fmt.Println("No debit transactions found.")
		return nil
	}

	var imported int
	for i := range drafts {
		if err := eng.CreateExpense(ctx, &drafts[i]); err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("skipped %q: %v", drafts[i].Description, err)))
			continue
		}
		imported++
	}

	fmt.Printf("Imported %d of %d transaction(s), categories predicted where missing.\n",
		imported, len(drafts))
	return nil
}
