package main

import (
	"fmt"

	"github.com/effective-security/modelfactory/pkg/llmfactory"
	"github.com/effective-security/modelfactory/pkg/modelsync"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the configured models, the default is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("config")
			cfg, err := llmfactory.Load(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range cfg.ModelNames() {
				mark := " "
				if name == cfg.DefaultModel() {
					mark = "*"
				}
				m := cfg.Models.Models[name]
				fmt.Fprintf(out, "%s %s (%s: %s)\n", mark, name, m.Provider, m.ModelName)
			}
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", defaultConfigDir, "Folder with providers.yaml and models.yaml")
	return cmd
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [MODEL]",
		Short: "Print the resolved configuration of a model, or the default model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("config")
			cfg, err := llmfactory.Load(dir)
			if err != nil {
				return err
			}

			var name string
			if len(args) > 0 {
				name = args[0]
			}
			mc, err := cfg.ModelConfig(name)
			if err != nil {
				return err
			}

			return modelsync.Encode(cmd.OutOrStdout(), mc)
		},
	}
	cmd.Flags().StringP("config", "c", defaultConfigDir, "Folder with providers.yaml and models.yaml")
	return cmd
}
