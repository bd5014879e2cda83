package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tkge-lab/tkgel/internal/trace"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query a job's trace store",
		Long: `Query the SQLite trace store inside a job folder.

Examples:
  tkgel trace best <job-dir> --metric mean_reciprocal_rank_filtered
  tkgel trace summary <job-dir>`,
	}

	cmd.AddCommand(
		newTraceBestCmd(),
		newTraceSummaryCmd(),
	)
	return cmd
}

func openJobStore(cmd *cobra.Command, dir string) (*trace.Store, error) {
	root, _ := cmd.Flags().GetString("root")
	return trace.OpenStore(filepath.Join(root, dir))
}

func newTraceBestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best <job-dir>",
		Short: "Find the epoch with the best value for a metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			metric, _ := cmd.Flags().GetString("metric")
			jobID, _ := cmd.Flags().GetString("job-id")

			store, err := openJobStore(cmd, args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if jobID == "" {
				jobs, err := store.Jobs(ctx)
				if err != nil {
					return err
				}
				if len(jobs) != 1 {
					return fmt.Errorf("store has %d jobs, pick one with --job-id", len(jobs))
				}
				jobID = jobs[0]
			}

			best, err := store.BestEpoch(ctx, jobID, metric)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"job_id": jobID,
					"metric": metric,
					"epoch":  best.Epoch,
					"value":  best.Metrics[metric],
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s: best %s = %g at epoch %d\n",
				jobID, metric, best.Metrics[metric], best.Epoch)
			return nil
		},
	}

	cmd.Flags().String("metric", "mean_reciprocal_rank_filtered", "Metric to rank by")
	cmd.Flags().String("job-id", "", "Job ID (optional when the store has one job)")
	return cmd
}

func newTraceSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <job-dir>",
		Short: "Summarize the jobs and epochs in a trace store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			store, err := openJobStore(cmd, args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			jobs, err := store.Jobs(ctx)
			if err != nil {
				return err
			}

			type jobSummary struct {
				JobID   string `json:"job_id"`
				Entries int    `json:"entries"`
				Epochs  int    `json:"epochs"`
			}
			summaries := make([]jobSummary, 0, len(jobs))
			for _, id := range jobs {
				entries, err := store.Entries(ctx, id)
				if err != nil {
					return err
				}
				maxEpoch := 0
				for _, e := range entries {
					if e.Epoch > maxEpoch {
						maxEpoch = e.Epoch
					}
				}
				summaries = append(summaries, jobSummary{
					JobID: id, Entries: len(entries), Epochs: maxEpoch,
				})
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trace entries.")
				return nil
			}
			for _, s := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, %d epochs\n",
					s.JobID, s.Entries, s.Epochs)
			}
			return nil
		},
	}
}
