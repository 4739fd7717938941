package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	bookstoreuc "github.com/kailas-cloud/bookstore/internal/usecase/bookstore"
	"github.com/kailas-cloud/bookstore/internal/usecase/catalog"
)

func runCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the fixed query walkthrough once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := bookstoreuc.New(a.cfg.Catalog.Walkthrough, a.cfg.Catalog.TopAuthors, a.logger)

			var report bookstoreuc.Report
			err := catalog.WithSession(cmd.Context(), connector(a.cfg, a.logger), a.logger,
				func(ctx context.Context, exec *catalog.Executor) error {
					var err error
					report, err = svc.Run(ctx, exec)
					return err
				})
			if err != nil {
				a.logger.Error("Walkthrough failed", zap.Error(err))
				return err
			}

			a.logger.Info("Walkthrough finished",
				zap.Int("by_genre", len(report.ByGenre)),
				zap.Int64("price_matched", report.PriceUpdate.Matched),
				zap.Int64("deleted", report.Deleted),
				zap.Strings("indexes", report.Indexes),
				zap.String("title_plan_stage", report.TitlePlan.Stage),
				zap.Int64("title_plan_docs_examined", report.TitlePlan.TotalDocsExamined),
				zap.String("author_year_plan_stage", report.AuthorYearPlan.Stage),
				zap.Int64("author_year_plan_docs_examined", report.AuthorYearPlan.TotalDocsExamined),
			)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON to stdout")
	return cmd
}
