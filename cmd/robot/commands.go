package robot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/robokit/simlink/lib/mat"
	"github.com/robokit/simlink/rpc/client"
	"github.com/robokit/simlink/rpc/common"
	"github.com/spf13/cobra"
)

var (
	jointsCmd = &cobra.Command{
		Use:   "joints",
		Short: "Print the current joint values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rpcRobot.Joints()
			if err != nil {
				return err
			}
			fmt.Println(j)
			return nil
		},
	}
	setJointsCmd = &cobra.Command{
		Use:   "set-joints [values]",
		Short: "Teleport the robot to a joint configuration (comma separated, in degrees)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := mat.ParseJoints(args[0])
			if err != nil {
				return err
			}
			return rpcRobot.SetJoints(j)
		},
	}
	homeCmd = &cobra.Command{
		Use:   "home",
		Short: "Print the robot's home joint configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rpcRobot.JointsHome()
			if err != nil {
				return err
			}
			fmt.Println(j)
			return nil
		},
	}
	limitsCmd = &cobra.Command{
		Use:   "limits",
		Short: "Print the lower and upper joint limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lower, upper, err := rpcRobot.JointLimits()
			if err != nil {
				return err
			}
			fmt.Printf("lower: %s\nupper: %s\n", lower, upper)
			return nil
		},
	}
	poseCmd = &cobra.Command{
		Use:   "pose",
		Short: "Print the flange pose relative to the robot base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rpcRobot.Pose()
			if err != nil {
				return err
			}
			fmt.Println(p)
			return nil
		},
	}
	moveJCmd = &cobra.Command{
		Use:   "movej [target]",
		Short: "Joint move to a joint configuration or a named target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTarget(args[0])
			if err != nil {
				return err
			}
			return rpcRobot.MoveJ(t)
		},
	}
	moveLCmd = &cobra.Command{
		Use:   "movel [target]",
		Short: "Linear move to a joint configuration or a named target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTarget(args[0])
			if err != nil {
				return err
			}
			return rpcRobot.MoveL(t)
		},
	}
	waitCmd = &cobra.Command{
		Use:   "wait [seconds]",
		Short: "Block until the current move finishes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := 300 * time.Second
			if len(args) == 1 {
				secs, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("seconds must be a number: %w", err)
				}
				timeout = time.Duration(secs * float64(time.Second))
			}
			return rpcRobot.WaitMove(timeout)
		},
	}
	busyCmd = &cobra.Command{
		Use:   "busy",
		Short: "Report whether the robot is still moving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			busy, err := rpcRobot.Busy()
			if err != nil {
				return err
			}
			fmt.Println(busy)
			return nil
		},
	}
	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Abort the current motion or program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rpcRobot.Stop()
		},
	}
	fkCmd = &cobra.Command{
		Use:   "fk [joints]",
		Short: "Compute the flange pose for a joint configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := mat.ParseJoints(args[0])
			if err != nil {
				return err
			}
			p, err := rpcRobot.SolveFK(j)
			if err != nil {
				return err
			}
			fmt.Println(p)
			return nil
		},
	}
	ikCmd = &cobra.Command{
		Use:   "ik [x,y,z,w,p,r]",
		Short: "Compute the joint solution for a cartesian pose (mm and degrees)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := mat.ParseJoints(args[0])
			if err != nil {
				return err
			}
			if len(values) != 6 {
				return fmt.Errorf("expected 6 values, got %d", len(values))
			}
			pose := mat.FromXYZWPR([6]float64{values[0], values[1], values[2], values[3], values[4], values[5]})
			j, err := rpcRobot.SolveIK(pose)
			if err != nil {
				return err
			}
			if len(j) == 0 {
				return fmt.Errorf("pose is not reachable")
			}
			fmt.Println(j)
			return nil
		},
	}
	runCmd = &cobra.Command{
		Use:   "run [program]",
		Short: "Run a program defined in the station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := rpcClient.ItemByName(args[0], common.ItemTypeProgram)
			if err != nil {
				return err
			}
			if !prog.Valid() {
				return fmt.Errorf("no program named %q", args[0])
			}
			n, err := prog.RunProgram()
			if err != nil {
				return err
			}
			fmt.Printf("program started (%d instructions checked)\n", n)
			return nil
		},
	}
)

// resolveTarget parses the argument as a joint list, falling back to a
// target item lookup.
func resolveTarget(arg string) (client.Target, error) {
	if j, err := mat.ParseJoints(arg); err == nil {
		return client.JointTarget(j), nil
	}
	item, err := rpcClient.ItemByName(arg, common.ItemTypeTarget)
	if err != nil {
		return client.Target{}, err
	}
	if !item.Valid() {
		return client.Target{}, fmt.Errorf("no target named %q", arg)
	}
	return client.ItemTarget(item), nil
}
