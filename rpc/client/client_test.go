package client_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/robokit/simlink/lib/mat"
	"github.com/robokit/simlink/rpc/client"
	"github.com/robokit/simlink/rpc/common"
	"github.com/robokit/simlink/rpc/simserver"
)

// startStub brings up a stub station and returns a connected client.
func startStub(t *testing.T) (*client.Client, *simserver.Server) {
	t.Helper()
	srv := simserver.NewStub()
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("stub listen: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	cfg := common.NewClientConfig()
	cfg.Port = srv.Port()
	cfg.Timeout = 2 * time.Second
	c := client.New(cfg)
	t.Cleanup(func() { c.Close() })
	return c, srv
}

// TestVersion tests the version query and the semver gate built on it
func TestVersion(t *testing.T) {
	c, _ := startStub(t)

	v, err := c.Version()
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if v.Version == "" || v.Arch == 0 {
		t.Errorf("Version() = %+v, missing fields", v)
	}

	if err := c.RequireVersion(">= 5.0"); err != nil {
		t.Errorf("RequireVersion(>= 5.0) error: %v", err)
	}
	if err := c.RequireVersion(">= 99.0"); err == nil {
		t.Error("RequireVersion(>= 99.0) passed against a 5.x stub")
	}
}

// TestItemlookup tests lookups by name, type filters and the invalid-item
// convention for missing names
func TestItemLookup(t *testing.T) {
	c, _ := startStub(t)

	robot, err := c.ItemByName("Arm", common.ItemTypeRobot)
	if err != nil {
		t.Fatalf("ItemByName() error: %v", err)
	}
	if !robot.Valid() {
		t.Fatal("ItemByName(Arm) returned an invalid item")
	}
	typ, err := robot.Type()
	if err != nil {
		t.Fatalf("Type() error: %v", err)
	}
	if typ != common.ItemTypeRobot {
		t.Errorf("Type() = %v, want robot", typ)
	}

	missing, err := c.ItemByName("does-not-exist", common.ItemTypeAny)
	if err != nil {
		t.Fatalf("ItemByName() error: %v", err)
	}
	if missing.Valid() {
		t.Error("lookup of a missing name returned a valid item")
	}

	names, err := c.ItemNames(common.ItemTypeRobot)
	if err != nil {
		t.Fatalf("ItemNames() error: %v", err)
	}
	if len(names) != 1 || names[0] != "Arm" {
		t.Errorf("ItemNames(robot) = %v, want [Arm]", names)
	}
}

// TestJoints tests reading and teleporting joint values
func TestJoints(t *testing.T) {
	c, _ := startStub(t)

	robot, _ := c.ItemByName("Arm", common.ItemTypeRobot)

	j, err := robot.Joints()
	if err != nil {
		t.Fatalf("Joints() error: %v", err)
	}
	if len(j) != 6 {
		t.Fatalf("Joints() len = %d, want 6", len(j))
	}

	want := mat.Joints{10, 20, 30, 40, 50, 60}
	if err := robot.SetJoints(want); err != nil {
		t.Fatalf("SetJoints() error: %v", err)
	}
	got, err := robot.Joints()
	if err != nil {
		t.Fatalf("Joints() error: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Joints()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestPose tests pose writes and reads through the fixed 16-double frame
func TestPose(t *testing.T) {
	c, _ := startStub(t)

	frame, _ := c.ItemByName("World Frame", common.ItemTypeFrame)
	want := mat.Transl(100, 200, 300).Mul(mat.RotZ(math.Pi / 4))

	if err := frame.SetPose(want); err != nil {
		t.Fatalf("SetPose() error: %v", err)
	}
	got, err := frame.Pose()
	if err != nil {
		t.Fatalf("Pose() error: %v", err)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("pose[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestMove tests the move frame with each target alternative plus WaitMove's
// double status
func TestMove(t *testing.T) {
	c, _ := startStub(t)

	robot, _ := c.ItemByName("Arm", common.ItemTypeRobot)

	// joint target updates the stub's state
	target := mat.Joints{1, 2, 3, 4, 5, 6}
	if err := robot.MoveJ(client.JointTarget(target)); err != nil {
		t.Fatalf("MoveJ(joints) error: %v", err)
	}
	got, _ := robot.Joints()
	for i := range target {
		if got[i] != target[i] {
			t.Errorf("Joints()[%d] = %v after MoveJ, want %v", i, got[i], target[i])
		}
	}

	// pose and item targets must at least produce well-formed frames
	if err := robot.MoveL(client.PoseTarget(mat.Transl(10, 0, 0))); err != nil {
		t.Fatalf("MoveL(pose) error: %v", err)
	}
	home, _ := c.ItemByName("Home", common.ItemTypeTarget)
	if err := robot.MoveJ(client.ItemTarget(home)); err != nil {
		t.Fatalf("MoveJ(item) error: %v", err)
	}

	if err := robot.WaitMove(5 * time.Second); err != nil {
		t.Fatalf("WaitMove() error: %v", err)
	}

	// the zero Target is rejected client-side
	if err := robot.MoveJ(client.Target{}); err == nil {
		t.Error("MoveJ accepted a zero target")
	}

	busy, err := robot.Busy()
	if err != nil {
		t.Fatalf("Busy() error: %v", err)
	}
	if busy {
		t.Error("stub robot reports busy")
	}
}

// TestParams tests station parameter storage
func TestParams(t *testing.T) {
	c, _ := startStub(t)

	if err := c.SetParam("cell", "A7"); err != nil {
		t.Fatalf("SetParam() error: %v", err)
	}
	v, err := c.Param("cell")
	if err != nil {
		t.Fatalf("Param() error: %v", err)
	}
	if v != "A7" {
		t.Errorf("Param(cell) = %q, want A7", v)
	}

	// unset parameters read as empty, not as an error
	v, err = c.Param("unset-key")
	if err != nil {
		t.Fatalf("Param() error: %v", err)
	}
	if v != "" {
		t.Errorf("Param(unset-key) = %q, want empty", v)
	}

	all, err := c.Params()
	if err != nil {
		t.Fatalf("Params() error: %v", err)
	}
	if all["cell"] != "A7" {
		t.Errorf("Params() = %v, want cell=A7", all)
	}
}

// TestModes tests run mode and simulation speed round trips
func TestModes(t *testing.T) {
	c, _ := startStub(t)

	if err := c.SetRunMode(client.RunModeQuickValidate); err != nil {
		t.Fatalf("SetRunMode() error: %v", err)
	}
	mode, err := c.RunMode()
	if err != nil {
		t.Fatalf("RunMode() error: %v", err)
	}
	if mode != client.RunModeQuickValidate {
		t.Errorf("RunMode() = %d, want %d", mode, client.RunModeQuickValidate)
	}

	if err := c.SetSimulationSpeed(2.5); err != nil {
		t.Fatalf("SetSimulationSpeed() error: %v", err)
	}
	speed, err := c.SimulationSpeed()
	if err != nil {
		t.Fatalf("SimulationSpeed() error: %v", err)
	}
	if speed != 2.5 {
		t.Errorf("SimulationSpeed() = %v, want 2.5", speed)
	}
}

// TestStationEdits tests item creation, renaming and removal
func TestStationEdits(t *testing.T) {
	c, _ := startStub(t)

	frame, err := c.AddFrame("Fixture", nil)
	if err != nil {
		t.Fatalf("AddFrame() error: %v", err)
	}
	if !frame.Valid() {
		t.Fatal("AddFrame() returned an invalid item")
	}

	target, err := c.AddTarget("Approach", frame, nil)
	if err != nil {
		t.Fatalf("AddTarget() error: %v", err)
	}
	if err := target.SetName("Approach_1"); err != nil {
		t.Fatalf("SetName() error: %v", err)
	}
	name, err := target.Name()
	if err != nil {
		t.Fatalf("Name() error: %v", err)
	}
	if name != "Approach_1" {
		t.Errorf("Name() = %q, want Approach_1", name)
	}

	parent, err := target.Parent()
	if err != nil {
		t.Fatalf("Parent() error: %v", err)
	}
	if !parent.Handle().Same(frame.Handle()) {
		t.Errorf("Parent() = %v, want %v", parent, frame)
	}

	children, err := frame.Children()
	if err != nil {
		t.Fatalf("Children() error: %v", err)
	}
	if len(children) != 1 {
		t.Errorf("Children() len = %d, want 1", len(children))
	}

	if err := target.Delete(); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if target.Valid() {
		t.Error("item still valid after Delete()")
	}
}

// TestInvalidHandle tests that a stale handle surfaces as a remote
// invalid-handle error and does not poison the connection
func TestInvalidHandle(t *testing.T) {
	c, _ := startStub(t)

	it1, _ := c.ItemByName("Home", common.ItemTypeTarget)
	it2, _ := c.ItemByName("Home", common.ItemTypeTarget)

	if err := it1.Delete(); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	_, err := it2.Name()
	if !common.IsInvalidHandle(err) {
		t.Errorf("Name() on stale handle = %v, want invalid-handle error", err)
	}

	// the stream stays in sync for the next command
	if _, err := c.Version(); err != nil {
		t.Errorf("Version() after invalid handle: %v", err)
	}
}

// TestRemoteError tests the error status with its diagnostic message line
func TestRemoteError(t *testing.T) {
	c, srv := startStub(t)

	srv.Handle("G_License", func(ses *simserver.Session) error {
		ses.SendLine("Stub License")
		return ses.Fail("license server unreachable")
	})

	_, err := c.License()
	var remote *common.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("License() error = %v, want RemoteError", err)
	}
	if remote.Code != common.StatusError || remote.Message != "license server unreachable" {
		t.Errorf("RemoteError = %+v", remote)
	}

	// a remote error completes the frame; the connection survives
	if _, err := c.Version(); err != nil {
		t.Errorf("Version() after remote error: %v", err)
	}
}

// TestWarningStatus tests that warnings are recorded, not returned as errors
func TestWarningStatus(t *testing.T) {
	c, srv := startStub(t)

	srv.Handle("G_License", func(ses *simserver.Session) error {
		ses.SendLine("Stub License")
		return ses.Warn("license expires soon")
	})

	lic, err := c.License()
	if err != nil {
		t.Fatalf("License() with warning status error: %v", err)
	}
	if lic != "Stub License" {
		t.Errorf("License() = %q, result must stay valid on warning", lic)
	}
	if c.LastWarning() != "license expires soon" {
		t.Errorf("LastWarning() = %q", c.LastWarning())
	}

	// the next clean command resets the warning
	if _, err := c.Version(); err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if c.LastWarning() != "" {
		t.Errorf("LastWarning() = %q after clean command, want empty", c.LastWarning())
	}
}

// TestUnexpectedStatus tests that an out-of-range status drops the
// connection and that the client recovers by reconnecting
func TestUnexpectedStatus(t *testing.T) {
	c, srv := startStub(t)

	srv.Handle("G_License", func(ses *simserver.Session) error {
		ses.SendLine("Stub License")
		return ses.Warn("about to misbehave")
	})
	if _, err := c.License(); err != nil {
		t.Fatalf("License() with warning status error: %v", err)
	}

	srv.Handle("G_License", func(ses *simserver.Session) error {
		ses.SendLine("Stub License")
		return ses.Status(common.StatusCode(77))
	})

	_, err := c.License()
	if !errors.Is(err, common.ErrProtocol) {
		t.Fatalf("License() error = %v, want protocol error", err)
	}
	if c.Connected() {
		t.Error("connection kept after protocol fault")
	}
	if c.LastWarning() != "" {
		t.Errorf("LastWarning() = %q after lost connection, want empty", c.LastWarning())
	}

	// the next command reconnects transparently
	if _, err := c.Version(); err != nil {
		t.Errorf("Version() after reconnect: %v", err)
	}
}

// TestTimeoutScope tests that a per-call timeout override covers only its
// own frame: WaitMove succeeds on an extended deadline, and the command after
// it is back on the default one
func TestTimeoutScope(t *testing.T) {
	srv := simserver.NewStub()
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("stub listen: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	cfg := common.NewClientConfig()
	cfg.Port = srv.Port()
	cfg.Timeout = 500 * time.Millisecond
	c := client.New(cfg)
	t.Cleanup(func() { c.Close() })

	// both handlers answer after the default deadline
	delay := 900 * time.Millisecond
	srv.Handle("WaitMove", func(ses *simserver.Session) error {
		if _, err := ses.RecvHandleID(); err != nil {
			return err
		}
		if err := ses.OK(); err != nil {
			return err
		}
		time.Sleep(delay)
		return ses.OK()
	})
	srv.Handle("G_License", func(ses *simserver.Session) error {
		time.Sleep(delay)
		ses.SendLine("Stub License")
		return ses.OK()
	})

	robot, err := c.ItemByName("Arm", common.ItemTypeRobot)
	if err != nil {
		t.Fatalf("ItemByName() error: %v", err)
	}
	if err := robot.WaitMove(5 * time.Second); err != nil {
		t.Fatalf("WaitMove() with extended deadline error: %v", err)
	}

	if _, err := c.License(); !errors.Is(err, common.ErrTimeout) {
		t.Errorf("License() after WaitMove = %v, want timeout on the default deadline", err)
	}
}

// TestKinematics tests the FK/IK frames against the stub
func TestKinematics(t *testing.T) {
	c, _ := startStub(t)

	robot, _ := c.ItemByName("Arm", common.ItemTypeRobot)

	j, _ := robot.Joints()
	if _, err := robot.SolveFK(j); err != nil {
		t.Fatalf("SolveFK() error: %v", err)
	}
	if _, err := robot.SolveIK(mat.Identity()); err != nil {
		t.Fatalf("SolveIK() error: %v", err)
	}

	m, err := robot.SolveIKAll(mat.Identity())
	if err != nil {
		t.Fatalf("SolveIKAll() error: %v", err)
	}
	if m.Rows() != len(j)+2 {
		t.Errorf("SolveIKAll() rows = %d, want %d", m.Rows(), len(j)+2)
	}
}

// TestPrograms tests program creation and execution frames
func TestPrograms(t *testing.T) {
	c, _ := startStub(t)

	prog, err := c.AddProgram("Cycle", nil)
	if err != nil {
		t.Fatalf("AddProgram() error: %v", err)
	}
	if _, err := prog.RunProgram(); err != nil {
		t.Fatalf("RunProgram() error: %v", err)
	}
	ok, log, err := prog.MakeProgram("/tmp/cycle.src")
	if err != nil {
		t.Fatalf("MakeProgram() error: %v", err)
	}
	if !ok || log == "" {
		t.Errorf("MakeProgram() = %v %q", ok, log)
	}
}

// TestFleet tests the named-client registry
func TestFleet(t *testing.T) {
	_, srv := startStub(t)

	cfg := common.NewClientConfig()
	cfg.Port = srv.Port()
	cfg.Timeout = 2 * time.Second

	fleet := client.NewFleet()
	defer fleet.Close()

	fleet.Add("cell-a", cfg)
	fleet.Add("cell-b", cfg)
	if fleet.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", fleet.Len())
	}

	c, err := fleet.Get("cell-a")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if _, err := c.Version(); err != nil {
		t.Errorf("Version() through fleet client: %v", err)
	}

	if _, err := fleet.Get("cell-z"); err == nil {
		t.Error("Get() of unknown name succeeded")
	}

	fleet.Remove("cell-a")
	if fleet.Len() != 1 {
		t.Errorf("Len() = %d after Remove, want 1", fleet.Len())
	}
}
