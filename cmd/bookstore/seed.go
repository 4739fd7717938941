package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/config"
	seeduc "github.com/kailas-cloud/bookstore/internal/usecase/seed"
)

func seedCmd(a *app) *cobra.Command {
	var (
		reset    bool
		fixtures bool
		random   int
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample books into the collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Database.Driver == config.DriverMemory {
				return fmt.Errorf("seed needs a persistent driver, got %q", a.cfg.Database.Driver)
			}

			opts := seedOptions(a.cfg, reset)
			if cmd.Flags().Changed("fixtures") {
				opts.Fixtures = fixtures
			}
			if cmd.Flags().Changed("random") {
				opts.Random = random
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}

			ctx := cmd.Context()
			store, err := openStore(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(context.WithoutCancel(ctx)); err != nil {
					a.logger.Warn("Close failed", zap.Error(err))
				}
			}()

			res, err := seeduc.New(store, a.logger).Load(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d fixture and %d generated books\n", res.Fixtures, res.Generated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop the collection before loading")
	cmd.Flags().BoolVar(&fixtures, "fixtures", true, "load the built-in fixture books (default from seed.fixtures)")
	cmd.Flags().IntVar(&random, "random", 0, "number of generated books (default from seed.random)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "generator seed, 0 = random (default from seed.seed)")
	return cmd
}
