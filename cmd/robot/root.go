package robot

import (
	"fmt"

	"github.com/robokit/simlink/cmd/util"
	"github.com/robokit/simlink/rpc/client"
	"github.com/robokit/simlink/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcClient *client.Client
	rpcRobot  *client.Item

	// RobotCommands represents the robot command group
	RobotCommands = &cobra.Command{
		Use:               "robot",
		Short:             "Drive a robot in the station",
		PersistentPreRunE: setupRobotClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the robot command
	util.SetupClientFlags(RobotCommands)

	// Select which robot to drive; with a single robot the name can be
	// left empty
	RobotCommands.PersistentFlags().String("robot", "", util.WrapString("Name of the robot item (empty selects the only robot in the station)"))

	// Add subcommands
	RobotCommands.AddCommand(jointsCmd)
	RobotCommands.AddCommand(setJointsCmd)
	RobotCommands.AddCommand(homeCmd)
	RobotCommands.AddCommand(limitsCmd)
	RobotCommands.AddCommand(poseCmd)
	RobotCommands.AddCommand(moveJCmd)
	RobotCommands.AddCommand(moveLCmd)
	RobotCommands.AddCommand(waitCmd)
	RobotCommands.AddCommand(busyCmd)
	RobotCommands.AddCommand(stopCmd)
	RobotCommands.AddCommand(fkCmd)
	RobotCommands.AddCommand(ikCmd)
	RobotCommands.AddCommand(runCmd)
	RobotCommands.AddCommand(perfTestCmd)
}

// setupRobotClient connects and resolves the robot item
func setupRobotClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	rpcClient = util.NewClient()

	name := viper.GetString("robot")
	if name == "" {
		// a station with exactly one robot needs no name
		names, err := rpcClient.ItemNames(common.ItemTypeRobot)
		if err != nil {
			return err
		}
		if len(names) != 1 {
			return fmt.Errorf("station has %d robots, select one with --robot", len(names))
		}
		name = names[0]
	}

	robot, err := rpcClient.ItemByName(name, common.ItemTypeRobot)
	if err != nil {
		return err
	}
	if !robot.Valid() {
		return fmt.Errorf("no robot named %q", name)
	}
	rpcRobot = robot
	return nil
}
