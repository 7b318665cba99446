package cmd

import (
	"github.com/Carmen-Shannon/apiary/internal/ipc"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewPlayCmd() *cobra.Command {
	return newPlaybackCmd(ipc.CommandPlay, "Resume the animation")
}

func NewPauseCmd() *cobra.Command {
	return newPlaybackCmd(ipc.CommandPause, "Pause the animation")
}

func NewToggleCmd() *cobra.Command {
	return newPlaybackCmd(ipc.CommandToggle, "Toggle between playing and paused")
}

func newPlaybackCmd(t ipc.CommandType, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(t),
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.NewClient(viper.GetString("control.socket")).SendCommand(ipc.Command{Type: t})
			if err != nil {
				log.Fatalf("Failed to send '%s' command: %v", t, err)
			}
			log.Info(response.Message)
		},
	}
}
