package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calder-f/statement-resolver/internal/cli"
	"github.com/calder-f/statement-resolver/internal/model"
	"github.com/calder-f/statement-resolver/internal/tokenizer"
)

func correctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Manage human correction overrides",
		Long: `Corrections are data-driven patches applied after computation, keyed by
ISIN. They never change the extraction heuristics themselves.`,
	}

	cmd.AddCommand(correctionsListCmd())
	cmd.AddCommand(correctionsAddCmd())
	cmd.AddCommand(correctionsRemoveCmd())

	return cmd
}

func correctionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			corrections, err := store.Corrections(ctx)
			if err != nil {
				return err
			}
			if len(corrections) == 0 {
				fmt.Println("No corrections stored.")
				return nil
			}

			fmt.Println(cli.FormatTitle("Corrections"))
			for _, c := range corrections {
				switch c.Field {
				case model.CorrectionFieldMarketValue:
					fmt.Printf("%-14s marketValue → %.2f  %s\n", c.ISIN, c.CorrectedValue, c.Notes)
				case model.CorrectionFieldName:
					fmt.Printf("%-14s name → %q  %s\n", c.ISIN, c.CorrectedName, c.Notes)
				}
			}
			return nil
		},
	}
}

func correctionsAddCmd() *cobra.Command {
	var (
		name  string
		notes string
	)

	cmd := &cobra.Command{
		Use:   "add <isin> [value]",
		Short: "Add or replace a correction",
		Long: `Add a market value correction ("add XS2530201644 199'080") or, with
--name, a description correction. Values accept statement formatting.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			isin := args[0]
			if !tokenizer.ValidISINShape(isin) {
				return fmt.Errorf("%q is not a valid security identifier", isin)
			}

			correction := &model.Correction{ISIN: isin, Notes: notes}
			switch {
			case name != "":
				correction.Field = model.CorrectionFieldName
				correction.CorrectedName = name
			case len(args) == 2:
				value, err := tokenizer.ParseAmount(args[1], true)
				if err != nil {
					return fmt.Errorf("invalid value: %w", err)
				}
				correction.Field = model.CorrectionFieldMarketValue
				correction.CorrectedValue = value
			default:
				return fmt.Errorf("provide a value or --name")
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveCorrection(ctx, correction); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("correction saved for " + isin))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "correct the security name instead of the value")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form note stored with the correction")

	return cmd
}

func correctionsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <isin>",
		Short: "Remove a correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteCorrection(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("correction removed for " + args[0]))
			return nil
		},
	}
}
