package cmd

import (
	"github.com/Carmen-Shannon/apiary/internal/cli/cmd/utils"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func NewInstallConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "installconfig",
		Short: "Install the default config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			path, err := utils.InstallDefaultConfig()
			if err != nil {
				log.Fatalf("Error installing config: %v", err)
			}
			if path != "" {
				log.Infof("Installed default config file at %v", path)
			}
		},
	}
}
