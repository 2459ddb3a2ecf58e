package client

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/robokit/simlink/rpc/common"
)

// interactiveTimeout bounds commands that wait on a person: blocking popups
// and item picking.
const interactiveTimeout = time.Hour

// Run modes for SetRunMode.
const (
	RunModeSimulate      = 1
	RunModeQuickValidate = 2
	RunModeMakeProgram   = 3
	RunModeRunRobot      = 4
)

// AppVersion describes the running simulator build.
type AppVersion struct {
	Name    string
	Arch    int
	Version string
	Build   string
}

// Version queries the application name, architecture and build of the
// connected simulator.
func (c *Client) Version() (AppVersion, error) {
	var v AppVersion
	err := c.command("Version", 0, func(cl *call) {
		v.Name = cl.recvLine()
		v.Arch = int(cl.recvInt())
		v.Version = cl.recvLine()
		v.Build = cl.recvLine()
	})
	return v, err
}

// RequireVersion fails unless the simulator version satisfies the semver
// constraint, for example ">= 5.4".
func (c *Client) RequireVersion(constraint string) error {
	cons, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := c.Version()
	if err != nil {
		return err
	}
	ver, err := semver.NewVersion(v.Version)
	if err != nil {
		return fmt.Errorf("cannot parse application version %q: %w", v.Version, err)
	}
	if !cons.Check(ver) {
		return fmt.Errorf("application version %s does not satisfy %q", ver, constraint)
	}
	return nil
}

// License returns the license string shown in the application window.
func (c *Client) License() (string, error) {
	var lic string
	err := c.command("G_License", 0, func(cl *call) {
		lic = cl.recvLine()
	})
	return lic, err
}

// ShowApp brings the application window to the front.
func (c *Client) ShowApp() error { return c.command("RAISE", 0, nil) }

// HideApp hides the application window; the process keeps running.
func (c *Client) HideApp() error { return c.command("HIDE", 0, nil) }

// CloseApp asks the application to quit and drops the connection.
func (c *Client) CloseApp() error {
	err := c.command("QUIT", 0, nil)
	c.Close()
	return err
}

// Render enables or disables automatic re-rendering after each change.
func (c *Client) Render(alwaysRender bool) error {
	v := int32(0)
	if alwaysRender {
		v = 1
	}
	return c.command("Render", 0, func(cl *call) {
		cl.sendInt(v)
	})
}

// Update recomputes all item positions and refreshes the screen once.
func (c *Client) Update() error {
	return c.command("Refresh", 0, func(cl *call) {
		cl.sendInt(0)
	})
}

// Command sends a named application command, such as "Trace" or "Threads",
// and returns the application's answer.
func (c *Client) Command(cmd, value string) (string, error) {
	var answer string
	err := c.command("SCMD", 0, func(cl *call) {
		cl.sendLine(cmd)
		cl.sendLine(value)
		answer = cl.recvLine()
	})
	return answer, err
}

// ShowMessage displays a message in the application. With popup true the
// call blocks until the user closes the dialog; otherwise the message goes
// to the status bar.
func (c *Client) ShowMessage(message string, popup bool) error {
	if popup {
		return c.command("ShowMessage", interactiveTimeout, func(cl *call) {
			cl.sendLine(message)
		})
	}
	return c.command("ShowMessageStatus", 0, func(cl *call) {
		cl.sendLine(message)
	})
}

// --------------------------------------------------------------------------
// Item lookup
// --------------------------------------------------------------------------

// ItemByName finds an item by its name in the station tree, optionally
// filtered by type. A missing item is returned as an invalid Item, not an
// error; check Valid.
func (c *Client) ItemByName(name string, typ common.ItemType) (*Item, error) {
	var h common.Handle
	var err error
	if typ == common.ItemTypeAny {
		err = c.command("G_Item", 0, func(cl *call) {
			cl.sendLine(name)
			h = cl.recvHandle()
		})
	} else {
		err = c.command("G_Item2", 0, func(cl *call) {
			cl.sendLine(name)
			cl.sendInt(int32(typ))
			h = cl.recvHandle()
		})
	}
	return newItem(c, h), err
}

// ItemNames lists the names of all station items matching the type filter.
func (c *Client) ItemNames(typ common.ItemType) ([]string, error) {
	var names []string
	var err error
	body := func(cl *call) {
		n := cl.recvInt()
		for i := int32(0); i < n && cl.err == nil; i++ {
			names = append(names, cl.recvLine())
		}
	}
	if typ == common.ItemTypeAny {
		err = c.command("G_List_Items", 0, body)
	} else {
		err = c.command("G_List_Items_Type", 0, func(cl *call) {
			cl.sendInt(int32(typ))
			body(cl)
		})
	}
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Items lists all station items matching the type filter as handles.
func (c *Client) Items(typ common.ItemType) ([]*Item, error) {
	var out []*Item
	body := func(cl *call) {
		n := cl.recvInt()
		for i := int32(0); i < n && cl.err == nil; i++ {
			out = append(out, newItem(c, cl.recvHandle()))
		}
	}
	var err error
	if typ == common.ItemTypeAny {
		err = c.command("G_List_Items_ptr", 0, body)
	} else {
		err = c.command("G_List_Items_Type_ptr", 0, func(cl *call) {
			cl.sendInt(int32(typ))
			body(cl)
		})
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ItemUserPick prompts the user to pick an item in the 3D view. The call
// blocks until the user picks or cancels; a cancel yields an invalid item.
func (c *Client) ItemUserPick(message string, typ common.ItemType) (*Item, error) {
	var h common.Handle
	err := c.command("PickItem", interactiveTimeout, func(cl *call) {
		cl.sendLine(message)
		cl.sendInt(int32(typ))
		h = cl.recvHandle()
	})
	return newItem(c, h), err
}

// --------------------------------------------------------------------------
// Station edits
// --------------------------------------------------------------------------

// AddFile loads a file into the station: a robot, object, tool or a whole
// station file. parent may be nil to load at the station root. Check the
// returned item with Valid.
func (c *Client) AddFile(path string, parent *Item) (*Item, error) {
	var h common.Handle
	err := c.command("Add", 0, func(cl *call) {
		cl.sendLine(path)
		cl.sendHandle(handleOf(parent))
		h = cl.recvHandle()
	})
	return newItem(c, h), err
}

// Save writes an item to a file. A nil item saves the open station.
func (c *Client) Save(path string, item *Item) error {
	return c.command("Save", 0, func(cl *call) {
		cl.sendLine(path)
		cl.sendHandle(handleOf(item))
	})
}

// AddTarget creates a target attached to a frame. robot selects which robot
// the target is reachable with; nil uses the only robot in the station.
func (c *Client) AddTarget(name string, parent, robot *Item) (*Item, error) {
	var h common.Handle
	err := c.command("Add_TARGET", 0, func(cl *call) {
		cl.sendLine(name)
		cl.sendHandle(handleOf(parent))
		cl.sendHandle(handleOf(robot))
		h = cl.recvHandle()
	})
	return newItem(c, h), err
}

// AddFrame creates a reference frame. parent may be nil for a root frame.
func (c *Client) AddFrame(name string, parent *Item) (*Item, error) {
	var h common.Handle
	err := c.command("Add_FRAME", 0, func(cl *call) {
		cl.sendLine(name)
		cl.sendHandle(handleOf(parent))
		h = cl.recvHandle()
	})
	return newItem(c, h), err
}

// AddProgram creates an empty program bound to a robot.
func (c *Client) AddProgram(name string, robot *Item) (*Item, error) {
	var h common.Handle
	err := c.command("Add_PROG", 0, func(cl *call) {
		cl.sendLine(name)
		cl.sendHandle(handleOf(robot))
		h = cl.recvHandle()
	})
	return newItem(c, h), err
}

// AddStation creates a new empty station document.
func (c *Client) AddStation() (*Item, error) {
	var h common.Handle
	err := c.command("NewStation", 0, func(cl *call) {
		h = cl.recvHandle()
	})
	return newItem(c, h), err
}

// --------------------------------------------------------------------------
// Parameters and modes
// --------------------------------------------------------------------------

// Param reads a station parameter. An unset parameter yields "".
func (c *Client) Param(key string) (string, error) {
	var value string
	err := c.command("G_Param", 0, func(cl *call) {
		cl.sendLine(key)
		value = cl.recvLine()
	})
	if err == nil && len(value) >= 8 && value[:8] == "UNKNOWN " {
		value = ""
	}
	return value, err
}

// SetParam stores a station parameter, creating it if needed.
func (c *Client) SetParam(key, value string) error {
	return c.command("S_Param", 0, func(cl *call) {
		cl.sendLine(key)
		cl.sendLine(value)
	})
}

// Params returns all station parameters as key/value pairs.
func (c *Client) Params() (map[string]string, error) {
	out := make(map[string]string)
	err := c.command("G_Params", 0, func(cl *call) {
		n := cl.recvInt()
		for i := int32(0); i < n && cl.err == nil; i++ {
			k := cl.recvLine()
			out[k] = cl.recvLine()
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RunMode returns the current execution mode.
func (c *Client) RunMode() (int, error) {
	var mode int32
	err := c.command("G_RunMode", 0, func(cl *call) {
		mode = cl.recvInt()
	})
	return int(mode), err
}

// SetRunMode switches between simulation, validation, program generation and
// driving the real robot.
func (c *Client) SetRunMode(mode int) error {
	return c.command("S_RunMode", 0, func(cl *call) {
		cl.sendInt(int32(mode))
	})
}

// SimulationSpeed returns the current speed ratio, 1.0 being real time.
func (c *Client) SimulationSpeed() (float64, error) {
	var milli int32
	err := c.command("GetSimulateSpeed", 0, func(cl *call) {
		milli = cl.recvInt()
	})
	return float64(milli) / 1000.0, err
}

// SetSimulationSpeed sets the speed ratio of the simulation.
func (c *Client) SetSimulationSpeed(ratio float64) error {
	return c.command("SimulateSpeed", 0, func(cl *call) {
		cl.sendInt(int32(ratio * 1000.0))
	})
}

// RunCode executes code in the station scope: a program call when fnCall is
// true, raw code otherwise. It returns the execution status.
func (c *Client) RunCode(code string, fnCall bool) (int, error) {
	v := int32(0)
	if fnCall {
		v = 1
	}
	var status int32
	err := c.command("RunCode", 0, func(cl *call) {
		cl.sendInt(v)
		cl.sendLine(code)
		status = cl.recvInt()
	})
	return int(status), err
}

// RunMessage inserts a message or comment into the program being generated.
func (c *Client) RunMessage(message string, comment bool) error {
	v := int32(0)
	if comment {
		v = 1
	}
	return c.command("RunMessage", 0, func(cl *call) {
		cl.sendInt(v)
		cl.sendLine(message)
	})
}

// --------------------------------------------------------------------------
// Collisions
// --------------------------------------------------------------------------

// Collisions returns the number of item pairs currently in collision.
func (c *Client) Collisions() (int, error) {
	var n int32
	err := c.command("Collisions", 0, func(cl *call) {
		n = cl.recvInt()
	})
	return int(n), err
}

// Collided reports whether two specific items are in collision.
func (c *Client) Collided(a, b *Item) (bool, error) {
	var n int32
	err := c.command("Collided", 0, func(cl *call) {
		cl.sendHandle(handleOf(a))
		cl.sendHandle(handleOf(b))
		n = cl.recvInt()
	})
	return n > 0, err
}

// SetCollisionActive switches global collision checking on or off and
// returns the resulting number of collision pairs.
func (c *Client) SetCollisionActive(active bool) (int, error) {
	v := int32(0)
	if active {
		v = 1
	}
	var n int32
	err := c.command("Collision_SetState", 0, func(cl *call) {
		cl.sendInt(v)
		n = cl.recvInt()
	})
	return int(n), err
}

// LaserTrackerMeasure triggers a laser tracker measurement near the
// estimated point. It returns the measured point; ok is false when the
// tracker could not acquire a target.
func (c *Client) LaserTrackerMeasure(estimate [3]float64, search bool) (xyz [3]float64, ok bool, err error) {
	v := int32(0)
	if search {
		v = 1
	}
	err = c.command("MeasLT", 0, func(cl *call) {
		cl.sendXYZ(estimate)
		cl.sendInt(v)
		xyz = cl.recvXYZ()
	})
	if err != nil {
		return xyz, false, err
	}
	ok = xyz[0]*xyz[0]+xyz[1]*xyz[1]+xyz[2]*xyz[2] >= 0.0001
	return xyz, ok, nil
}

func handleOf(it *Item) common.Handle {
	if it == nil {
		return common.NilHandle
	}
	return it.h
}
