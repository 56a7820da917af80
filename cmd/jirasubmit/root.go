package main

import (
	"context"
	"fmt"

	"github.com/natserract/jiraci/pkg/config"
	"github.com/natserract/jiraci/pkg/submission"
	"github.com/natserract/jiraci/pkg/submission/schema/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	sites  []string
	token  string
	record bool
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "jirasubmit",
		Short:         "Report build and deployment status to Jira Cloud",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringArrayVar(&opts.sites, "site", nil, "target site as siteURL=cloudID (repeatable, overrides JIRA_SITES)")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "bearer token (overrides JIRA_ACCESS_TOKEN)")
	cmd.PersistentFlags().BoolVar(&opts.record, "record", false, "record outcomes in Postgres (overrides JIRA_RECORD_SUBMISSIONS)")

	cmd.AddCommand(
		newBuildsCmd(opts, logger),
		newDeploymentsCmd(opts, logger),
		newHistoryCmd(logger),
	)

	return cmd
}

// loadConfig merges the environment with command-line overrides and validates the result.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := []config.Option{
		config.WithSites(o.sites),
		config.WithAccessToken(o.token),
	}
	if cmd.Flags().Changed("record") {
		opts = append(opts, config.WithRecordSubmissions(o.record))
	}
	return config.Load(opts...)
}

// openStore connects to Postgres when recording is enabled. The returned
// close func is always safe to call.
func openStore(ctx context.Context, enabled bool, logger *zap.Logger) (submission.Store, func(), error) {
	if !enabled {
		return submission.NopStore{}, func() {}, nil
	}

	db, err := postgres.New(ctx, postgres.NewConfig(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := submission.NewPostgresStore(db, logger)
	if err := store.InitSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	return store, db.Close, nil
}
