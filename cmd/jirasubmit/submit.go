package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/natserract/jiraci/pkg/config"
	httpclient "github.com/natserract/jiraci/pkg/http"
	"github.com/natserract/jiraci/pkg/jira"
	"github.com/natserract/jiraci/pkg/submission/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBuildsCmd(opts *rootOptions, logger *zap.Logger) *cobra.Command {
	var payloadPath string

	cmd := &cobra.Command{
		Use:   "builds",
		Short: "Submit a builds payload to every configured site",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload jira.BuildPayload
			if err := readPayload(payloadPath, &payload); err != nil {
				return err
			}

			return runSubmit(cmd, opts, logger, func(svc *services.SubmitService, sites []services.Site) ([]services.SiteResult, *services.SubmitMetrics, error) {
				return svc.SubmitBuilds(cmd.Context(), sites, &payload)
			})
		},
	}

	cmd.Flags().StringVar(&payloadPath, "payload", "", "path to a JSON builds payload ('-' for stdin)")
	_ = cmd.MarkFlagRequired("payload")
	return cmd
}

func newDeploymentsCmd(opts *rootOptions, logger *zap.Logger) *cobra.Command {
	var payloadPath string

	cmd := &cobra.Command{
		Use:   "deployments",
		Short: "Submit a deployments payload to every configured site",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload jira.DeploymentPayload
			if err := readPayload(payloadPath, &payload); err != nil {
				return err
			}

			return runSubmit(cmd, opts, logger, func(svc *services.SubmitService, sites []services.Site) ([]services.SiteResult, *services.SubmitMetrics, error) {
				return svc.SubmitDeployments(cmd.Context(), sites, &payload)
			})
		},
	}

	cmd.Flags().StringVar(&payloadPath, "payload", "", "path to a JSON deployments payload ('-' for stdin)")
	_ = cmd.MarkFlagRequired("payload")
	return cmd
}

type submitRunner func(svc *services.SubmitService, sites []services.Site) ([]services.SiteResult, *services.SubmitMetrics, error)

func runSubmit(cmd *cobra.Command, opts *rootOptions, logger *zap.Logger, run submitRunner) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	transport := httpclient.NewClientWithLogger(logger, cfg.HTTPTimeout)
	client, err := jira.NewClientWithLogger(transport, cfg.BuildsEndpoint, cfg.DeploymentsEndpoint, logger)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd.Context(), cfg.RecordSubmissions, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := services.NewSubmitService(client, store, cfg.MaxConcurrentSites, logger)

	results, metrics, err := run(svc, siteTargets(cfg))
	printResults(cmd.OutOrStdout(), results)
	if err != nil {
		return fmt.Errorf("%d of %d sites failed", metrics.SitesFailed, metrics.Total())
	}
	return nil
}

func siteTargets(cfg *config.Config) []services.Site {
	sites := make([]services.Site, 0, len(cfg.Sites))
	for _, s := range cfg.Sites {
		sites = append(sites, services.Site{URL: s.URL, CloudID: s.CloudID, AccessToken: cfg.AccessToken})
	}
	return sites
}

func readPayload(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse payload %s: %w", path, err)
	}
	return nil
}

func printResults(w io.Writer, results []services.SiteResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tOUTCOME\tACCEPTED\tREJECTED\tDETAIL")
	for _, r := range results {
		detail := ""
		if r.Err != nil {
			detail = r.Err.Error()
		} else if len(r.Record.UnknownIssueKeys) > 0 {
			detail = fmt.Sprintf("unknown issue keys: %v", r.Record.UnknownIssueKeys)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.Site.URL, r.Record.Outcome, r.Record.Accepted, r.Record.Rejected, detail)
	}
	_ = tw.Flush()
}
