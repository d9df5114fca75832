package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datadog_lighthouse/internal/config"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lighthouse",
	Short: "Datadog monitor status light",
	Long: `Lighthouse polls Datadog monitors and sweeps a comet around an LED strip
whose color is the worst monitor state: green ok, orange warn, red alert,
blue no data. Without stored network credentials it opens a provisioning
portal and shows yellow until credentials are submitted.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runCmdE,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the device (default)",
	Example: `  # Run with configs/config.yml and LIGHTHOUSE_* overrides
  lighthouse run

  # Simulated link that rejects one network, terminal strip
  LIGHTHOUSE_LINK_SIM_REJECT=badnet LIGHTHOUSE_STRIP_CONSOLE=true lighthouse run`,
	RunE: runCmdE,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored credentials and zero the boot counter",
	Long: `Reset performs the factory reset the boot-loop guard performs after three
unconfirmed boots: the credentials and the boot counter are cleared in one
transaction. The next run starts in provisioning mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := resetDevice(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "credentials cleared, boot counter reset")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lighthouse %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: configs/config.yml if present)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

func runCmdE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runDevice(cfg)
}
