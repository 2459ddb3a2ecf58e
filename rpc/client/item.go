package client

import (
	"time"

	"github.com/robokit/simlink/lib/mat"
	"github.com/robokit/simlink/rpc/common"
)

// Move types understood by the simulator.
const (
	moveJoint    = 1
	moveLinear   = 2
	moveCircular = 3
)

// Program run types for SetRunType.
const (
	RunOnSimulator = 1
	RunOnRobot     = 2
)

// Item is a client-side reference to one node of the station tree: a robot,
// frame, tool, object, target or program. Items are cheap values; they hold
// no state beyond the remote handle.
type Item struct {
	h common.Handle
	c *Client
}

func newItem(c *Client, h common.Handle) *Item { return &Item{h: h, c: c} }

// Valid reports whether the item references an existing remote object. A
// failed lookup returns an invalid item rather than an error.
func (it *Item) Valid() bool { return it.h.Valid() }

// Handle exposes the raw remote handle.
func (it *Item) Handle() common.Handle { return it.h }

func (it *Item) String() string { return it.h.String() }

// Type asks the station for the item's current type.
func (it *Item) Type() (common.ItemType, error) {
	var typ int32
	err := it.c.command("G_Item_Type", 0, func(cl *call) {
		cl.sendHandle(it.h)
		typ = cl.recvInt()
	})
	return common.ItemType(typ), err
}

// Name returns the name shown in the station tree.
func (it *Item) Name() (string, error) {
	var name string
	err := it.c.command("G_Name", 0, func(cl *call) {
		cl.sendHandle(it.h)
		name = cl.recvLine()
	})
	return name, err
}

// SetName renames the item.
func (it *Item) SetName(name string) error {
	return it.c.command("S_Name", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendLine(name)
	})
}

// Delete removes the item from the station. The handle is invalid afterward.
func (it *Item) Delete() error {
	err := it.c.command("Remove", 0, func(cl *call) {
		cl.sendHandle(it.h)
	})
	if err == nil {
		it.h = common.NilHandle
	}
	return err
}

// Parent returns the item this one is attached to.
func (it *Item) Parent() (*Item, error) {
	var h common.Handle
	err := it.c.command("G_Parent", 0, func(cl *call) {
		cl.sendHandle(it.h)
		h = cl.recvHandle()
	})
	return newItem(it.c, h), err
}

// SetParent attaches the item to a new parent, keeping the pose relative to
// it. The absolute position changes.
func (it *Item) SetParent(parent *Item) error {
	return it.c.command("S_Parent", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendHandle(handleOf(parent))
	})
}

// SetParentStatic attaches the item to a new parent while keeping its
// absolute position in the station.
func (it *Item) SetParentStatic(parent *Item) error {
	return it.c.command("S_Parent_Static", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendHandle(handleOf(parent))
	})
}

// Children lists the items attached to this one.
func (it *Item) Children() ([]*Item, error) {
	var out []*Item
	err := it.c.command("G_Childs", 0, func(cl *call) {
		cl.sendHandle(it.h)
		n := cl.recvInt()
		for i := int32(0); i < n && cl.err == nil; i++ {
			out = append(out, newItem(it.c, cl.recvHandle()))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Visible reports whether the item is shown in the 3D view.
func (it *Item) Visible() (bool, error) {
	var v int32
	err := it.c.command("G_Visible", 0, func(cl *call) {
		cl.sendHandle(it.h)
		v = cl.recvInt()
	})
	return v != 0, err
}

// SetVisible shows or hides the item together with its reference frame.
func (it *Item) SetVisible(visible bool) error {
	v := int32(0)
	if visible {
		v = 1
	}
	return it.c.command("S_Visible", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendInt(v)
		cl.sendInt(v)
	})
}

// --------------------------------------------------------------------------
// Poses and joints
// --------------------------------------------------------------------------

// Pose returns the pose of the item relative to its parent. For a robot this
// is the flange pose relative to the base.
func (it *Item) Pose() (mat.Pose, error) {
	var p mat.Pose
	err := it.c.command("G_Hlocal", 0, func(cl *call) {
		cl.sendHandle(it.h)
		p = cl.recvPose()
	})
	return p, err
}

// SetPose places the item relative to its parent.
func (it *Item) SetPose(p mat.Pose) error {
	return it.c.command("S_Hlocal", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendPose(p)
	})
}

// PoseTool returns the pose of the active tool center point.
func (it *Item) PoseTool() (mat.Pose, error) {
	var p mat.Pose
	err := it.c.command("G_Tool", 0, func(cl *call) {
		cl.sendHandle(it.h)
		p = cl.recvPose()
	})
	return p, err
}

// SetPoseTool updates the tool center point of a robot or tool item.
func (it *Item) SetPoseTool(p mat.Pose) error {
	return it.c.command("S_Tool", 0, func(cl *call) {
		cl.sendPose(p)
		cl.sendHandle(it.h)
	})
}

// Joints returns the current joint values.
func (it *Item) Joints() (mat.Joints, error) {
	var j mat.Joints
	err := it.c.command("G_Thetas", 0, func(cl *call) {
		cl.sendHandle(it.h)
		j = cl.recvJoints()
	})
	return j, err
}

// SetJoints teleports the robot to a joint configuration without simulating
// the motion.
func (it *Item) SetJoints(j mat.Joints) error {
	return it.c.command("S_Thetas", 0, func(cl *call) {
		cl.sendJoints(j)
		cl.sendHandle(it.h)
	})
}

// JointsHome returns the robot's configured home position.
func (it *Item) JointsHome() (mat.Joints, error) {
	var j mat.Joints
	err := it.c.command("G_Home", 0, func(cl *call) {
		cl.sendHandle(it.h)
		j = cl.recvJoints()
	})
	return j, err
}

// JointLimits returns the lower and upper joint bounds.
func (it *Item) JointLimits() (lower, upper mat.Joints, err error) {
	err = it.c.command("G_RobLimits", 0, func(cl *call) {
		cl.sendHandle(it.h)
		lower = cl.recvJoints()
		upper = cl.recvJoints()
	})
	return lower, upper, err
}

// --------------------------------------------------------------------------
// Kinematics
// --------------------------------------------------------------------------

// SolveFK computes the flange pose for a joint configuration.
func (it *Item) SolveFK(j mat.Joints) (mat.Pose, error) {
	var p mat.Pose
	err := it.c.command("G_FK", 0, func(cl *call) {
		cl.sendJoints(j)
		cl.sendHandle(it.h)
		p = cl.recvPose()
	})
	return p, err
}

// SolveIK computes the joint solution closest to the current configuration
// for a flange pose. An unreachable pose yields an empty joint array.
func (it *Item) SolveIK(pose mat.Pose) (mat.Joints, error) {
	var j mat.Joints
	err := it.c.command("G_IK", 0, func(cl *call) {
		cl.sendPose(pose)
		cl.sendHandle(it.h)
		j = cl.recvJoints()
	})
	return j, err
}

// SolveIKAll computes every joint solution for a flange pose. Each column of
// the returned matrix is one solution; the two trailing rows carry solution
// metadata and are not joint values.
func (it *Item) SolveIKAll(pose mat.Pose) (*mat.Matrix, error) {
	var m *mat.Matrix
	err := it.c.command("G_IK_cmpl", 0, func(cl *call) {
		cl.sendPose(pose)
		cl.sendHandle(it.h)
		m = cl.recvMatrix()
	})
	return m, err
}

// --------------------------------------------------------------------------
// Motion
// --------------------------------------------------------------------------

func (it *Item) move(moveType int32, t Target) error {
	return it.c.command("MoveX", 0, func(cl *call) {
		cl.sendInt(moveType)
		t.send(cl)
		cl.sendHandle(it.h)
	})
}

// MoveJ starts a joint move towards the target. The call is non-blocking;
// use WaitMove or Busy to track completion.
func (it *Item) MoveJ(t Target) error { return it.move(moveJoint, t) }

// MoveL starts a linear move towards the target.
func (it *Item) MoveL(t Target) error { return it.move(moveLinear, t) }

// MoveC starts a circular move through t1 ending at t2.
func (it *Item) MoveC(t1, t2 Target) error {
	return it.c.command("MoveC", 0, func(cl *call) {
		cl.sendInt(moveCircular)
		t1.send(cl)
		t2.send(cl)
		cl.sendHandle(it.h)
	})
}

// MoveJTest checks a joint move for collisions without executing it,
// stepping the path at minStepDeg resolution. It returns the number of
// collisions found; the check can take a long time on dense stations.
func (it *Item) MoveJTest(from, to mat.Joints, minStepDeg float64) (int, error) {
	var collisions int32
	err := it.c.command("CollisionMove", interactiveTimeout, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendJoints(from)
		cl.sendJoints(to)
		cl.sendInt(int32(minStepDeg * 1000.0))
		collisions = cl.recvInt()
	})
	return int(collisions), err
}

// Busy reports whether the robot or program is still executing.
func (it *Item) Busy() (bool, error) {
	var busy int32
	err := it.c.command("IsBusy", 0, func(cl *call) {
		cl.sendHandle(it.h)
		busy = cl.recvInt()
	})
	return busy > 0, err
}

// Stop aborts the current motion or program.
func (it *Item) Stop() error {
	return it.c.command("Stop", 0, func(cl *call) {
		cl.sendHandle(it.h)
	})
}

// WaitMove blocks until the current motion finishes or the timeout elapses.
// The station acknowledges the request immediately and sends a second status
// when the move completes; only that second wait uses the extended timeout.
func (it *Item) WaitMove(timeout time.Duration) error {
	return it.c.command("WaitMove", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.readStatus()
		cl.setTimeout(timeout)
	})
}

// SetSpeed sets motion speed and acceleration. Pass -1 to leave a value
// unchanged. Linear values are mm/s and mm/s2, joint values deg/s and
// deg/s2.
func (it *Item) SetSpeed(linear, accelLinear, joints, accelJoints float64) error {
	return it.c.command("S_Speed4", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendArray([]float64{linear, accelLinear, joints, accelJoints})
	})
}

// SetRounding sets the blending radius between consecutive moves, in mm.
// Use -1 for exact point-to-point motion.
func (it *Item) SetRounding(zoneData float64) error {
	return it.c.command("S_ZoneData", 0, func(cl *call) {
		cl.sendInt(int32(zoneData * 1000.0))
		cl.sendHandle(it.h)
	})
}

// --------------------------------------------------------------------------
// Programs
// --------------------------------------------------------------------------

// RunProgram starts the program. Non-blocking; it returns the number of
// instructions the quick pre-check could validate.
func (it *Item) RunProgram() (int, error) {
	var n int32
	err := it.c.command("RunProg", 0, func(cl *call) {
		cl.sendHandle(it.h)
		n = cl.recvInt()
	})
	return int(n), err
}

// RunCode starts the program passing parameters to the underlying call.
func (it *Item) RunCode(parameters string) (int, error) {
	if parameters == "" {
		return it.RunProgram()
	}
	var n int32
	err := it.c.command("RunProgParam", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendLine(parameters)
		n = cl.recvInt()
	})
	return int(n), err
}

// RunInstruction appends a program call, raw code, message or comment to the
// program. runType selects how the code is interpreted.
func (it *Item) RunInstruction(code string, runType int32) (int, error) {
	var n int32
	err := it.c.command("RunCode2", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendLine(code)
		cl.sendInt(runType)
		n = cl.recvInt()
	})
	return int(n), err
}

// Pause appends a pause instruction, in milliseconds. Negative pauses until
// the user resumes.
func (it *Item) Pause(ms float64) error {
	return it.c.command("RunPause", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendInt(int32(ms * 1000.0))
	})
}

// SetRunType selects whether the program runs on the simulator or drives the
// connected robot.
func (it *Item) SetRunType(runType int32) error {
	return it.c.command("S_ProgRunType", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendInt(runType)
	})
}

// MakeProgram generates the vendor-specific program file. It returns the
// generation log; a false ok means the post-processor reported problems.
func (it *Item) MakeProgram(path string) (ok bool, log string, err error) {
	var status int32
	err = it.c.command("MakeProg", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendLine(path)
		status = cl.recvInt()
		log = cl.recvLine()
	})
	return status > 1, log, err
}

// --------------------------------------------------------------------------
// Robot driver and I/O
// --------------------------------------------------------------------------

// ConnectRobot connects the item to the physical robot through its driver.
// An empty ip uses the connection parameters stored in the station.
func (it *Item) ConnectRobot(ip string) (bool, error) {
	var status int32
	err := it.c.command("Connect", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendLine(ip)
		status = cl.recvInt()
	})
	return status != 0, err
}

// DisconnectRobot closes the driver connection.
func (it *Item) DisconnectRobot() (bool, error) {
	var status int32
	err := it.c.command("Disconnect", 0, func(cl *call) {
		cl.sendHandle(it.h)
		status = cl.recvInt()
	})
	return status != 0, err
}

// SetDO sets a digital output. Variable and value are robot-dependent
// strings, numeric IDs included.
func (it *Item) SetDO(ioVar, ioValue string) error {
	return it.c.command("setDO", 0, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendLine(ioVar)
		cl.sendLine(ioValue)
	})
}

// WaitDI blocks until a digital input reaches the given value or the timeout
// elapses, 0 for no bound.
func (it *Item) WaitDI(ioVar, ioValue string, timeout time.Duration) error {
	frameTimeout := timeout + it.c.cfg.EffectiveTimeout()
	return it.c.command("waitDI", frameTimeout, func(cl *call) {
		cl.sendHandle(it.h)
		cl.sendLine(ioVar)
		cl.sendLine(ioValue)
		cl.sendInt(int32(timeout.Milliseconds() * 1000))
	})
}
