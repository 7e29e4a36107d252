package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the fully-resolved configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(flagConfig, flagLogLevel)
			if err != nil {
				return err
			}
			defer rt.Shutdown(cmd.Context())

			out, err := yaml.Marshal(rt.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
