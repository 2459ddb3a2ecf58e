package cmd

import (
	"fmt"
	"os"

	"github.com/robokit/simlink/cmd/mock"
	"github.com/robokit/simlink/cmd/robot"
	"github.com/robokit/simlink/cmd/station"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "simlink",
		Short: "robot simulator control",
		Long: fmt.Sprintf(`simlink (v%s)

Command line client for a running robot simulation station. Connects to
the simulator's socket API to inspect items, drive robots and manage
station documents.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of simlink",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("simlink v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(station.StationCommands)
	RootCmd.AddCommand(robot.RobotCommands)
	RootCmd.AddCommand(mock.MockCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
