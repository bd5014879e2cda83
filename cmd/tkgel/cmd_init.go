package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tkge-lab/tkgel/internal/profiles"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <profile>",
		Short: "Write a starter configuration for a model profile",
		Long: fmt.Sprintf(`Write a starter config.yaml importing one of the built-in profiles.

Available profiles: %s

Examples:
  tkgel init eceformer
  tkgel init evokg --output experiments/evokg.yaml`, strings.Join(profiles.Names(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			output, _ := cmd.Flags().GetString("output")
			jsonOut, _ := cmd.Flags().GetBool("json")
			profile := args[0]

			if _, err := (profiles.Registry{}).Fragment(profile); err != nil {
				return fmt.Errorf("unknown profile %q (available: %s)",
					profile, strings.Join(profiles.Names(), ", "))
			}

			if output == "" {
				output = filepath.Join(root, "config.yaml")
			}
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("%s already exists", output)
			}

			content := fmt.Sprintf(`import:
  - default
  - %s

job:
  type: train

model: %s
`, profile, profile)
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			if err := os.WriteFile(output, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing starter config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status":  "initialized",
					"path":    output,
					"profile": profile,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (profile: %s)\n", output, profile)
			fmt.Fprintln(cmd.OutOrStdout(), "Run 'tkgel validate' to check it after editing.")
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output path (default <root>/config.yaml)")
	return cmd
}
