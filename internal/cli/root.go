package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/Carmen-Shannon/apiary"
	"github.com/Carmen-Shannon/apiary/internal/cli/cmd"
	"github.com/Carmen-Shannon/apiary/internal/cli/cmd/utils"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd runs the animated triangle when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "apiary",
	Short: "An animated WebGPU triangle",
	Long: `Apiary draws a triangle with WebGPU and animates its clear color.
Space or P toggles playback. A control socket accepts play, pause,
toggle and status commands from other apiary invocations.`,
	SilenceUsage: true,
	RunE: func(c *cobra.Command, args []string) error {
		if v, err := c.Flags().GetBool("version"); err == nil && v {
			printVersion()
			return nil
		}

		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(viper.AllSettings())
			return nil
		}

		cfg, err := LoadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if err := setupLogging(cfg.Debug, utils.CanonicalPath(cfg.Log.File)); err != nil {
			return err
		}

		if v, err := c.Flags().GetBool("headless"); err == nil && v {
			frames, _ := c.Flags().GetUint64("frames")
			snapshot, _ := c.Flags().GetString("snapshot")
			return runHeadless(cfg, frames, snapshot)
		}
		return runWindow(cfg)
	},
}

// Execute runs the root command. It is called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/apiary/apiary.toml)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	rootCmd.PersistentFlags().String("socket", "", "control socket path (default is $XDG_RUNTIME_DIR/apiary.sock)")
	viper.BindPFlag("control.socket", rootCmd.PersistentFlags().Lookup("socket"))

	rootCmd.Flags().Bool("show-config", false, "Dump resolved config")
	rootCmd.Flags().BoolP("version", "v", false, "Print version")
	rootCmd.Flags().Bool("headless", false, "Render offscreen without a window")
	rootCmd.Flags().Uint64("frames", 0, "Stop a headless run after this many frames (0 runs until interrupted)")
	rootCmd.Flags().String("snapshot", "", "Write the last headless frame to this PNG file")

	rootCmd.AddCommand(
		cmd.NewStatusCmd(),
		cmd.NewPlayCmd(),
		cmd.NewPauseCmd(),
		cmd.NewToggleCmd(),
		cmd.NewVersionCmd(printVersion),
		cmd.NewInstallConfigCmd(),
	)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("apiary")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/apiary")
		viper.AddConfigPath("/etc/xdg/apiary")
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("apiary")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config: %v", err)
		}
		log.Debug("no config file found, using defaults")
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}

func printVersion() {
	babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	log.Infof("%v version %v %v",
		babyBlue.Render("apiary"),
		green.Render(strings.Trim(apiary.Version, "\n\r ")),
		yellow.Render("(webgpu)"))
}
