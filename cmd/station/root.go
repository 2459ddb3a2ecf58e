package station

import (
	"github.com/robokit/simlink/cmd/util"
	"github.com/robokit/simlink/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.Client

	// StationCommands represents the station command group
	StationCommands = &cobra.Command{
		Use:               "station",
		Short:             "Inspect and edit the open station",
		PersistentPreRunE: setupClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the station command
	util.SetupClientFlags(StationCommands)

	// Add subcommands
	StationCommands.AddCommand(versionCmd)
	StationCommands.AddCommand(licenseCmd)
	StationCommands.AddCommand(itemsCmd)
	StationCommands.AddCommand(findCmd)
	StationCommands.AddCommand(paramCmd)
	StationCommands.AddCommand(setParamCmd)
	StationCommands.AddCommand(paramsCmd)
	StationCommands.AddCommand(runModeCmd)
	StationCommands.AddCommand(speedCmd)
	StationCommands.AddCommand(commandCmd)
	StationCommands.AddCommand(saveCmd)
	StationCommands.AddCommand(loadCmd)
	StationCommands.AddCommand(addFrameCmd)
	StationCommands.AddCommand(addTargetCmd)
	StationCommands.AddCommand(collisionsCmd)
	StationCommands.AddCommand(messageCmd)
	StationCommands.AddCommand(showCmd)
	StationCommands.AddCommand(hideCmd)
	StationCommands.AddCommand(quitCmd)
}

// setupClient initializes the station client
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	rpcClient = util.NewClient()
	return nil
}
