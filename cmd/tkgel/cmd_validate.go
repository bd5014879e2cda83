package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tkge-lab/tkgel/internal/config"
	"github.com/tkge-lab/tkgel/internal/logging"
	"github.com/tkge-lab/tkgel/internal/profiles"
	"github.com/tkge-lab/tkgel/internal/watch"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Resolve a configuration and check it against the built-in profiles",
		Long: `Resolve a configuration file (merging its imports) and validate it.

Checks performed:
  - Type, range and enum validity of every profile section present
  - Unknown keys outside "+++" extension points

Examples:
  tkgel validate config.yaml
  tkgel validate config.yaml --watch   # re-validate on every save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			watchMode, _ := cmd.Flags().GetBool("watch")
			path := args[0]

			run := func() error {
				return runValidate(cmd, path, jsonOut)
			}

			if !watchMode {
				return run()
			}

			// First pass immediately, then on every change. Validation
			// failures must not stop the watch loop.
			report := func() {
				if err := run(); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			}
			report()
			log := logging.FromEnv()
			return watch.File(cmd.Context(), path, log, report)
		},
	}

	cmd.Flags().Bool("watch", false, "Re-validate whenever the file changes")
	return cmd
}

func runValidate(cmd *cobra.Command, path string, jsonOut bool) error {
	cfg, err := config.LoadFile(path, profiles.Registry{})
	if err != nil {
		return err
	}

	var problems []string
	if err := profiles.Validate(cfg); err != nil {
		problems = append(problems, err.Error())
	}

	base, err := profiles.Base()
	if err != nil {
		return err
	}
	unknown := base.UnknownKeys(cfg)
	sort.Strings(unknown)

	valid := len(problems) == 0 && len(unknown) == 0
	if jsonOut {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"valid":        valid,
			"problems":     problems,
			"unknown_keys": unknown,
		}); err != nil {
			return err
		}
	} else {
		if valid {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s has problems:\n", path)
			for _, p := range problems {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
			for _, k := range unknown {
				fmt.Fprintf(cmd.OutOrStdout(), "  unknown key: %s\n", k)
			}
		}
	}

	if !valid {
		return fmt.Errorf("validation failed")
	}
	return nil
}
