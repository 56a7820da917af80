package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/natserract/jiraci/pkg/submission"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newHistoryCmd(logger *zap.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), true, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			records, err := store.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			printHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of records to show")
	return cmd
}

func printHistory(w io.Writer, records []submission.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tSITE\tOUTCOME\tSTATUS\tMESSAGE")
	for _, r := range records {
		status := "-"
		if r.StatusCode != 0 {
			status = fmt.Sprint(r.StatusCode)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Format(time.RFC3339), r.Kind, r.SiteURL, r.Outcome, status, r.Message)
	}
	_ = tw.Flush()
}
