package main

import (
	"github.com/spf13/cobra"

	"github.com/vadiminshakov/seedfarm/internal/setup"
)

const defaultConfigPath = "seedfarm.yaml"

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			path = defaultConfigPath
		}
		return setup.RunTUI(path)
	},
}
