package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tkge-lab/tkgel/internal/config"
	"github.com/tkge-lab/tkgel/internal/profiles"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and modify a configuration file",
		Long: `Read and write hyperparameters in a configuration file by dotted key.

Examples:
  tkgel config get config.yaml evokg.lr
  tkgel config set config.yaml evokg.lr 0.0005
  tkgel config resolve config.yaml      # print the fully merged tree`,
	}

	cmd.AddCommand(
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigResolveCmd(),
	)
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <config> <key>",
		Short: "Get a configuration value by dotted key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			path, key := args[0], args[1]

			cfg, err := config.LoadFile(path, profiles.Registry{})
			if err != nil {
				return err
			}
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <config> <key> <value>",
		Short: "Set a configuration value by dotted key",
		Long: `Set a value in a configuration file. The value is parsed as bool, int or
float before falling back to string, and must be type-compatible with the
key's current value. New keys need --create unless they sit under a "+++"
extension point.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			create, _ := cmd.Flags().GetBool("create")
			path, key, raw := args[0], args[1], args[2]

			cfg, err := config.LoadFile(path, profiles.Registry{})
			if err != nil {
				return err
			}

			value := parseScalar(raw)
			if create {
				err = cfg.SetCreate(key, value)
			} else {
				err = cfg.Set(key, value)
			}
			if err != nil {
				return err
			}

			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}

	cmd.Flags().Bool("create", false, "Create the key if it does not exist")
	return cmd
}

func newConfigResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <config>",
		Short: "Print the fully resolved configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.LoadFile(args[0], profiles.Registry{})
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(cfg.Options())
			}
			data, err := cfg.Bytes()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// parseScalar interprets a CLI argument the way YAML would: bool, then int,
// then float, then string.
func parseScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null", "~":
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
