package station

import (
	"fmt"
	"strconv"

	"github.com/robokit/simlink/rpc/common"
	"github.com/spf13/cobra"
)

var (
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the simulator version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := rpcClient.Version()
			if err != nil {
				return err
			}
			fmt.Printf("%s v%s (%d bit, build %s)\n", v.Name, v.Version, v.Arch, v.Build)
			return nil
		},
	}
	licenseCmd = &cobra.Command{
		Use:   "license",
		Short: "Print the simulator license",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lic, err := rpcClient.License()
			if err != nil {
				return err
			}
			fmt.Println(lic)
			return nil
		},
	}
	itemsCmd = &cobra.Command{
		Use:   "items [type]",
		Short: "List the items in the station, optionally filtered by type id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := common.ItemTypeAny
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("type must be a number: %w", err)
				}
				typ = common.ItemType(v)
			}
			names, err := rpcClient.ItemNames(typ)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
	findCmd = &cobra.Command{
		Use:   "find [name]",
		Short: "Look up an item by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := rpcClient.ItemByName(args[0], common.ItemTypeAny)
			if err != nil {
				return err
			}
			if !item.Valid() {
				return fmt.Errorf("no item named %q", args[0])
			}
			typ, err := item.Type()
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", args[0], typ)
			return nil
		},
	}
	paramCmd = &cobra.Command{
		Use:   "param [key]",
		Short: "Read a station parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := rpcClient.Param(args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
	setParamCmd = &cobra.Command{
		Use:   "set-param [key] [value]",
		Short: "Store a station parameter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.SetParam(args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("parameter set")
			return nil
		},
	}
	paramsCmd = &cobra.Command{
		Use:   "params",
		Short: "List all station parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := rpcClient.Params()
			if err != nil {
				return err
			}
			for k, v := range params {
				fmt.Printf("%s=%s\n", k, v)
			}
			return nil
		},
	}
	runModeCmd = &cobra.Command{
		Use:   "run-mode [mode]",
		Short: "Get or set the execution mode (1=simulate, 2=validate, 3=make program, 4=run robot)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				mode, err := rpcClient.RunMode()
				if err != nil {
					return err
				}
				fmt.Println(mode)
				return nil
			}
			mode, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("mode must be a number: %w", err)
			}
			return rpcClient.SetRunMode(mode)
		},
	}
	speedCmd = &cobra.Command{
		Use:   "speed [ratio]",
		Short: "Get or set the simulation speed ratio (1.0 = real time)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				ratio, err := rpcClient.SimulationSpeed()
				if err != nil {
					return err
				}
				fmt.Println(ratio)
				return nil
			}
			ratio, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("ratio must be a number: %w", err)
			}
			return rpcClient.SetSimulationSpeed(ratio)
		},
	}
	commandCmd = &cobra.Command{
		Use:   "command [name] [value]",
		Short: "Send a named application command",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 2 {
				value = args[1]
			}
			answer, err := rpcClient.Command(args[0], value)
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
	saveCmd = &cobra.Command{
		Use:   "save [file]",
		Short: "Save the open station to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Save(args[0], nil); err != nil {
				return err
			}
			fmt.Println("station saved")
			return nil
		},
	}
	loadCmd = &cobra.Command{
		Use:   "load [file]",
		Short: "Load a file into the station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := rpcClient.AddFile(args[0], nil)
			if err != nil {
				return err
			}
			if !item.Valid() {
				return fmt.Errorf("could not load %q", args[0])
			}
			fmt.Println("file loaded")
			return nil
		},
	}
	addFrameCmd = &cobra.Command{
		Use:   "add-frame [name]",
		Short: "Create a reference frame at the station root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := rpcClient.AddFrame(args[0], nil)
			if err != nil {
				return err
			}
			if !item.Valid() {
				return fmt.Errorf("could not create frame %q", args[0])
			}
			fmt.Println("frame created")
			return nil
		},
	}
	addTargetCmd = &cobra.Command{
		Use:   "add-target [name] [frame]",
		Short: "Create a target attached to a frame",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := rpcClient.ItemByName(args[1], common.ItemTypeFrame)
			if err != nil {
				return err
			}
			if !frame.Valid() {
				return fmt.Errorf("no frame named %q", args[1])
			}
			item, err := rpcClient.AddTarget(args[0], frame, nil)
			if err != nil {
				return err
			}
			if !item.Valid() {
				return fmt.Errorf("could not create target %q", args[0])
			}
			fmt.Println("target created")
			return nil
		},
	}
	collisionsCmd = &cobra.Command{
		Use:   "collisions",
		Short: "Print the number of item pairs currently in collision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rpcClient.Collisions()
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
	messageCmd = &cobra.Command{
		Use:   "message [text]",
		Short: "Show a message in the simulator status bar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rpcClient.ShowMessage(args[0], false)
		},
	}
	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Bring the simulator window to the front",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rpcClient.ShowApp()
		},
	}
	hideCmd = &cobra.Command{
		Use:   "hide",
		Short: "Hide the simulator window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rpcClient.HideApp()
		},
	}
	quitCmd = &cobra.Command{
		Use:   "quit",
		Short: "Ask the simulator to exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rpcClient.CloseApp()
		},
	}
)
