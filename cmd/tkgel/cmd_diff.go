package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/tkge-lab/tkgel/internal/config"
	"github.com/tkge-lab/tkgel/internal/profiles"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <config-a> <config-b>",
		Short: "Compare two resolved configurations",
		Long: `Resolve two configuration files and compare them key by key. Useful for
seeing what actually differs between two experiments once imports and
defaults are merged in.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			a, err := config.LoadFile(args[0], profiles.Registry{})
			if err != nil {
				return err
			}
			b, err := config.LoadFile(args[1], profiles.Registry{})
			if err != nil {
				return err
			}

			flatA, flatB := a.Flatten(), b.Flatten()
			type change struct {
				Key string `json:"key"`
				A   any    `json:"a,omitempty"`
				B   any    `json:"b,omitempty"`
			}
			var changes []change

			keys := map[string]bool{}
			for k := range flatA {
				keys[k] = true
			}
			for k := range flatB {
				keys[k] = true
			}
			sorted := make([]string, 0, len(keys))
			for k := range keys {
				sorted = append(sorted, k)
			}
			sort.Strings(sorted)

			for _, k := range sorted {
				va, okA := flatA[k]
				vb, okB := flatB[k]
				if okA && okB && cmp.Equal(va, vb) {
					continue
				}
				changes = append(changes, change{Key: k, A: va, B: vb})
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"changes": changes,
					"count":   len(changes),
				})
			}
			if len(changes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No differences.")
				return nil
			}
			for _, c := range changes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v -> %v\n", c.Key, c.A, c.B)
			}
			return nil
		},
	}
}
