package cmd

import (
	"github.com/Carmen-Shannon/apiary/internal/cli/cmd/utils"
	"github.com/Carmen-Shannon/apiary/internal/ipc"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get apiary status",
		Long:  `Returns the lifecycle state, frame rate, surface size and playback state of the running apiary.`,
		Run: func(cmd *cobra.Command, args []string) {
			status, err := ipc.NewClient(viper.GetString("control.socket")).FetchStatus()
			if err != nil {
				log.Fatalf("Error fetching status: %v", err)
			}

			utils.PrintJSONColored(status)
		},
	}
}
