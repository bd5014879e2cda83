package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tkge-lab/tkgel/internal/checkpoint"
	"github.com/tkge-lab/tkgel/internal/config"
	"github.com/tkge-lab/tkgel/internal/profiles"
)

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage checkpoints in a job folder",
	}

	cmd.AddCommand(
		newCheckpointListCmd(),
		newCheckpointPruneCmd(),
	)
	return cmd
}

func newCheckpointListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <job-dir>",
		Short: "List checkpoint epochs in a job folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			dir := filepath.Join(root, args[0])
			epochs, err := checkpoint.Epochs(dir)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"dir":    dir,
					"epochs": epochs,
				})
			}
			if len(epochs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No checkpoints.")
				return nil
			}
			for _, e := range epochs {
				fmt.Fprintln(cmd.OutOrStdout(), checkpoint.File(dir, e))
			}
			return nil
		},
	}
}

func newCheckpointPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune <job-dir>",
		Short: "Apply the checkpoint retention schedule to a job folder",
		Long: `Delete checkpoints the way the trainer would have during the run, keeping
the latest epoch, the best checkpoint, and the scheduled history per
train.checkpoint.every and train.checkpoint.keep. The schedule is taken
from --config when given, otherwise from --every/--keep.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			configPath, _ := cmd.Flags().GetString("config")
			every, _ := cmd.Flags().GetInt("every")
			keep, _ := cmd.Flags().GetInt("keep")

			if configPath != "" {
				cfg, err := config.LoadFile(configPath, profiles.Registry{})
				if err != nil {
					return err
				}
				if every, err = cfg.GetInt("train.checkpoint.every"); err != nil {
					return err
				}
				if keep, err = cfg.GetInt("train.checkpoint.keep"); err != nil {
					return err
				}
			}

			dir := filepath.Join(root, args[0])
			removed, err := checkpoint.Prune(dir, every, keep)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"removed": removed,
					"count":   len(removed),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d checkpoints.\n", len(removed))
			return nil
		},
	}

	cmd.Flags().String("config", "", "Read the schedule from this config file")
	cmd.Flags().Int("every", 5, "Keep every Nth epoch checkpoint")
	cmd.Flags().Int("keep", 3, "Number of scheduled checkpoints to keep")
	return cmd
}
