package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/calder-f/statement-resolver/internal/cli"
	"github.com/calder-f/statement-resolver/internal/common"
	"github.com/calder-f/statement-resolver/internal/config"
	"github.com/calder-f/statement-resolver/internal/extract"
	"github.com/calder-f/statement-resolver/internal/model"
	"github.com/calder-f/statement-resolver/internal/resolver"
	"github.com/calder-f/statement-resolver/internal/service"
	"github.com/calder-f/statement-resolver/internal/storage"
)

func resolveCmd() *cobra.Command {
	var (
		output  string
		noStore bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <file> [file...]",
		Short: "Resolve security values from statement text",
		Long: `Resolve reads extracted statement text (or a PDF with a text layer) and
produces the resolved holdings with per-security confidence and a portfolio
total cross-check. Multiple files are processed independently; one bad file
does not abort the batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var store service.Storage
			if !noStore {
				var err error
				store, err = openStorage(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
			}

			r, err := newResolver(store)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if len(args) > 1 {
				bar = progressbar.Default(int64(len(args)), "resolving")
			}

			failures := 0
			for _, path := range args {
				result, err := resolveOne(ctx, r, path, output)
				switch {
				case err != nil:
					slog.Error("failed to resolve statement", "file", path, "error", err)
					failures++
				case strict && result.PortfolioTotal.Status == model.ValidationFail:
					slog.Error("statement rejected in strict mode",
						"file", path, "error", common.ErrValidationFailed)
					failures++
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d statement(s) failed", failures, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "run without the corrections database")
	cmd.Flags().BoolVar(&strict, "strict", false, "count statements failing the portfolio total check as failures")

	return cmd
}

func resolveOne(ctx context.Context, r *resolver.Resolver, path, output string) (*model.Result, error) {
	text, err := extract.TextFromFile(path)
	if err != nil {
		return nil, err
	}

	result, err := r.Resolve(ctx, text)
	if err != nil {
		return nil, err
	}

	switch output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return nil, err
		}
	default:
		fmt.Println(cli.RenderResult(result))
	}
	return result, nil
}

// openStorage opens and migrates the corrections database.
func openStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, common.NewUserError("cannot open corrections database", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("cannot migrate corrections database", err)
	}
	return store, nil
}

// newResolver wires the pipeline with the optional stores. A nil store
// simply disables the correction patch pass and learning diagnostics.
func newResolver(store service.Storage) (*resolver.Resolver, error) {
	cfg := config.ResolverConfig()
	if store == nil {
		return resolver.New(cfg, nil, nil)
	}
	return resolver.New(cfg, store, store)
}
