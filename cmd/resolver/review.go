package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/calder-f/statement-resolver/internal/cli"
	"github.com/calder-f/statement-resolver/internal/extract"
	"github.com/calder-f/statement-resolver/internal/tui"
)

func reviewCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Interactively review low-confidence resolutions",
		Long: `Review resolves one statement, then steps through every unresolved or
low-confidence security so a human can confirm or correct its value.
Confirmed values are stored as corrections and feed the learning store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			r, err := newResolver(store)
			if err != nil {
				return err
			}

			text, err := extract.TextFromFile(args[0])
			if err != nil {
				return err
			}
			result, err := r.Resolve(ctx, text)
			if err != nil {
				return err
			}

			var items []tui.Item
			for _, sec := range result.Securities {
				if sec.Confidence < threshold {
					items = append(items, tui.Item{
						ISIN:       sec.ISIN,
						Name:       sec.Name,
						Value:      sec.MarketValue,
						Confidence: sec.Confidence,
					})
				}
			}
			for _, isin := range result.Unresolved {
				items = append(items, tui.Item{ISIN: isin, Unresolved: true})
			}

			if len(items) == 0 {
				fmt.Println(cli.FormatSuccess("nothing to review: all securities resolved confidently"))
				return nil
			}

			program := tea.NewProgram(tui.NewReview(items, store, result.RunID))
			final, err := program.Run()
			if err != nil {
				return fmt.Errorf("review aborted: %w", err)
			}
			if m, ok := final.(tui.ReviewModel); ok {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d correction(s) saved", m.Saved())))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0.7, "review securities below this confidence")

	return cmd
}
