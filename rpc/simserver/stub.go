package simserver

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/robokit/simlink/lib/mat"
	"github.com/robokit/simlink/rpc/common"
)

// Station is the in-memory world model behind the stub handlers. It tracks a
// flat item tree plus the global simulation settings a client can toggle.
type Station struct {
	mu         sync.Mutex
	items      map[uint64]*stubItem
	order      []uint64
	nextID     uint64
	params     map[string]string
	runMode    int32
	speedMilli int32
	collisions int32
}

type stubItem struct {
	id      uint64
	typ     common.ItemType
	name    string
	parent  uint64
	pose    mat.Pose
	joints  mat.Joints
	visible bool
}

// NewStation seeds a world with one station root, a six-axis robot, a
// reference frame and a target, enough for a client to exercise every
// operation without external state.
func NewStation() *Station {
	st := &Station{
		items:      make(map[uint64]*stubItem),
		params:     make(map[string]string),
		runMode:    1,
		speedMilli: 1000,
	}
	root := st.add(common.ItemTypeStation, "Station", 0)
	frame := st.add(common.ItemTypeFrame, "World Frame", root)
	robot := st.add(common.ItemTypeRobot, "Arm", root)
	st.add(common.ItemTypeTarget, "Home", frame)
	st.items[robot].joints = mat.Joints{0, -90, 90, 0, 90, 0}
	return st
}

func (st *Station) add(typ common.ItemType, name string, parent uint64) uint64 {
	st.nextID++
	id := st.nextID
	st.items[id] = &stubItem{
		id:      id,
		typ:     typ,
		name:    name,
		parent:  parent,
		pose:    mat.Identity(),
		visible: true,
	}
	st.order = append(st.order, id)
	return id
}

func (st *Station) lookup(id uint64) *stubItem { return st.items[id] }

func (st *Station) find(name string, typ common.ItemType) *stubItem {
	for _, id := range st.order {
		it := st.items[id]
		if it.name == name && (typ == common.ItemTypeAny || it.typ == typ) {
			return it
		}
	}
	return nil
}

func (st *Station) names(typ common.ItemType) []string {
	var out []string
	for _, id := range st.order {
		if it := st.items[id]; typ == common.ItemTypeAny || it.typ == typ {
			out = append(out, it.name)
		}
	}
	return out
}

func (st *Station) handles(typ common.ItemType) []common.Handle {
	var out []common.Handle
	for _, id := range st.order {
		if it := st.items[id]; typ == common.ItemTypeAny || it.typ == typ {
			out = append(out, st.handleOf(it))
		}
	}
	return out
}

func (st *Station) handleOf(it *stubItem) common.Handle {
	if it == nil {
		return common.Handle{ID: 0, Type: common.ItemTypeAny}
	}
	return common.Handle{ID: it.id, Type: it.typ}
}

// NewStub returns a server with a fresh Station wired to handlers for the
// full command set. Tests and the mock command both start here.
func NewStub() *Server {
	s := New()
	st := NewStation()
	registerStub(s, st)
	return s
}

//nolint:gocyclo
func registerStub(s *Server, st *Station) {
	// ---- application level ----

	s.Handle("Version", func(ses *Session) error {
		ses.SendLine("SimLink Stub")
		ses.SendInt(64)
		ses.SendLine("5.6.0")
		ses.SendLine("2024-01-15")
		return ses.OK()
	})

	s.Handle("G_License", func(ses *Session) error {
		ses.SendLine("Stub License")
		return ses.OK()
	})

	s.Handle("ShowMessage", func(ses *Session) error {
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		return ses.OK()
	})
	s.Handle("ShowMessageStatus", func(ses *Session) error {
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("RAISE", func(ses *Session) error { return ses.OK() })
	s.Handle("HIDE", func(ses *Session) error { return ses.OK() })
	s.Handle("QUIT", func(ses *Session) error { return ses.OK() })

	s.Handle("Render", func(ses *Session) error {
		if _, err := ses.RecvInt(); err != nil {
			return err
		}
		return ses.OK()
	})
	s.Handle("Refresh", func(ses *Session) error {
		if _, err := ses.RecvInt(); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("SCMD", func(ses *Session) error {
		cmd, err := ses.RecvLine()
		if err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		if cmd == "MainProcess_ID" {
			ses.SendLine(fmt.Sprintf("%d", os.Getpid()))
		} else {
			ses.SendLine("OK: " + cmd)
		}
		return ses.OK()
	})

	s.Handle("MeasLT", func(ses *Session) error {
		estimate, err := ses.RecvXYZ()
		if err != nil {
			return err
		}
		if _, err := ses.RecvInt(); err != nil { // search flag
			return err
		}
		ses.SendXYZ(estimate)
		return ses.OK()
	})

	// ---- item lookup ----

	s.Handle("G_Item", func(ses *Session) error {
		name, err := ses.RecvLine()
		if err != nil {
			return err
		}
		st.mu.Lock()
		h := st.handleOf(st.find(name, common.ItemTypeAny))
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	s.Handle("G_Item2", func(ses *Session) error {
		name, err := ses.RecvLine()
		if err != nil {
			return err
		}
		typ, err := ses.RecvInt()
		if err != nil {
			return err
		}
		st.mu.Lock()
		h := st.handleOf(st.find(name, common.ItemType(typ)))
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	s.Handle("G_List_Items", func(ses *Session) error {
		st.mu.Lock()
		names := st.names(common.ItemTypeAny)
		st.mu.Unlock()
		ses.SendInt(int32(len(names)))
		for _, n := range names {
			ses.SendLine(n)
		}
		return ses.OK()
	})

	s.Handle("G_List_Items_Type", func(ses *Session) error {
		typ, err := ses.RecvInt()
		if err != nil {
			return err
		}
		st.mu.Lock()
		names := st.names(common.ItemType(typ))
		st.mu.Unlock()
		ses.SendInt(int32(len(names)))
		for _, n := range names {
			ses.SendLine(n)
		}
		return ses.OK()
	})

	s.Handle("G_List_Items_ptr", func(ses *Session) error {
		st.mu.Lock()
		handles := st.handles(common.ItemTypeAny)
		st.mu.Unlock()
		ses.SendInt(int32(len(handles)))
		for _, h := range handles {
			ses.SendHandle(h)
		}
		return ses.OK()
	})

	s.Handle("G_List_Items_Type_ptr", func(ses *Session) error {
		typ, err := ses.RecvInt()
		if err != nil {
			return err
		}
		st.mu.Lock()
		handles := st.handles(common.ItemType(typ))
		st.mu.Unlock()
		ses.SendInt(int32(len(handles)))
		for _, h := range handles {
			ses.SendHandle(h)
		}
		return ses.OK()
	})

	s.Handle("PickItem", func(ses *Session) error {
		if _, err := ses.RecvLine(); err != nil { // prompt message
			return err
		}
		typ, err := ses.RecvInt()
		if err != nil {
			return err
		}
		st.mu.Lock()
		var pick *stubItem
		for _, id := range st.order {
			it := st.items[id]
			if common.ItemType(typ) == common.ItemTypeAny || it.typ == common.ItemType(typ) {
				pick = it
				break
			}
		}
		h := st.handleOf(pick)
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	// ---- item attributes ----

	s.Handle("G_Name", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendLine(it.name)
		return ses.OK()
	})

	s.Handle("S_Name", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		name, err := ses.RecvLine()
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		it.name = name
		st.mu.Unlock()
		return ses.OK()
	})

	s.Handle("G_Item_Type", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendInt(int32(it.typ))
		return ses.OK()
	})

	s.Handle("G_Visible", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		v := int32(0)
		if it.visible {
			v = 1
		}
		ses.SendInt(v)
		return ses.OK()
	})

	s.Handle("S_Visible", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		v, err := ses.RecvInt()
		if err != nil {
			return err
		}
		if _, err := ses.RecvInt(); err != nil { // frame visibility
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		it.visible = v != 0
		st.mu.Unlock()
		return ses.OK()
	})

	s.Handle("G_Parent", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		h := st.handleOf(st.lookup(it.parent))
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	reparent := func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		parent, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		if parent != nil {
			it.parent = parent.id
		} else {
			it.parent = 0
		}
		st.mu.Unlock()
		return ses.OK()
	}
	s.Handle("S_Parent", reparent)
	s.Handle("S_Parent_Static", reparent)

	s.Handle("G_Childs", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		var childs []common.Handle
		for _, id := range st.order {
			if c := st.items[id]; c.parent == it.id {
				childs = append(childs, st.handleOf(c))
			}
		}
		st.mu.Unlock()
		ses.SendInt(int32(len(childs)))
		for _, h := range childs {
			ses.SendHandle(h)
		}
		return ses.OK()
	})

	s.Handle("Remove", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		delete(st.items, it.id)
		for i, id := range st.order {
			if id == it.id {
				st.order = append(st.order[:i], st.order[i+1:]...)
				break
			}
		}
		st.mu.Unlock()
		return ses.OK()
	})

	// ---- poses and joints ----

	s.Handle("G_Hlocal", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendPose(it.pose)
		return ses.OK()
	})

	s.Handle("S_Hlocal", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		pose, err := ses.RecvPose()
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		it.pose = pose
		st.mu.Unlock()
		return ses.OK()
	})

	s.Handle("G_Tool", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		ses.SendPose(mat.Identity())
		return ses.OK()
	})

	s.Handle("S_Tool", func(ses *Session) error {
		if _, err := ses.RecvPose(); err != nil {
			return err
		}
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("G_Thetas", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendJoints(it.joints)
		return ses.OK()
	})

	s.Handle("S_Thetas", func(ses *Session) error {
		jnts, err := ses.RecvJoints()
		if err != nil {
			return err
		}
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		it.joints = jnts
		st.mu.Unlock()
		return ses.OK()
	})

	s.Handle("G_Home", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendJoints(make(mat.Joints, len(it.joints)))
		return ses.OK()
	})

	s.Handle("G_RobLimits", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		n := len(it.joints)
		lower := make([]float64, n)
		upper := make([]float64, n)
		for i := range lower {
			lower[i] = -360
			upper[i] = 360
		}
		ses.SendArray(lower)
		ses.SendArray(upper)
		return ses.OK()
	})

	// ---- kinematics ----

	s.Handle("G_FK", func(ses *Session) error {
		if _, err := ses.RecvJoints(); err != nil {
			return err
		}
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendPose(it.pose)
		return ses.OK()
	})

	s.Handle("G_IK", func(ses *Session) error {
		if _, err := ses.RecvPose(); err != nil {
			return err
		}
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendJoints(it.joints)
		return ses.OK()
	})

	s.Handle("G_IK_cmpl", func(ses *Session) error {
		if _, err := ses.RecvPose(); err != nil {
			return err
		}
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		// one solution column: joints plus two trailing slots
		m := mat.NewMatrix(len(it.joints)+2, 1)
		for i, v := range it.joints {
			m.Set(i, 0, v)
		}
		ses.SendMatrix(m)
		return ses.OK()
	})

	// ---- motion ----

	s.Handle("MoveX", func(ses *Session) error {
		if _, err := ses.RecvInt(); err != nil { // move type
			return err
		}
		return stubMoveTarget(ses, st)
	})

	s.Handle("MoveC", func(ses *Session) error {
		if _, err := ses.RecvInt(); err != nil { // move type, always 3
			return err
		}
		for i := 0; i < 2; i++ {
			if _, err := ses.RecvInt(); err != nil { // selector
				return err
			}
			if _, err := ses.RecvArray(); err != nil {
				return err
			}
			if _, err := ses.RecvHandleID(); err != nil {
				return err
			}
		}
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("CollisionMove", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if _, err := ses.RecvJoints(); err != nil {
			return err
		}
		to, err := ses.RecvJoints()
		if err != nil {
			return err
		}
		if _, err := ses.RecvInt(); err != nil { // step size, milli-degrees
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		st.mu.Lock()
		it.joints = to
		st.mu.Unlock()
		ses.SendInt(0)
		return ses.OK()
	})

	s.Handle("IsBusy", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		ses.SendInt(0)
		return ses.OK()
	})

	s.Handle("Stop", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("WaitMove", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		if err := ses.OK(); err != nil {
			return err
		}
		// second status once the motion settles; the stub is never busy
		return ses.OK()
	})

	s.Handle("S_Speed4", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		if _, err := ses.RecvArray(); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("S_ZoneData", func(ses *Session) error {
		if _, err := ses.RecvInt(); err != nil {
			return err
		}
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		return ses.OK()
	})

	// ---- programs ----

	s.Handle("MakeProg", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil { // file path
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendInt(2)
		ses.SendLine("program generated")
		return ses.OK()
	})

	s.Handle("S_ProgRunType", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		if _, err := ses.RecvInt(); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("RunProg", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendInt(0)
		return ses.OK()
	})

	s.Handle("RunProgParam", func(ses *Session) error {
		it, err := stubArgItem(ses, st)
		if err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		if it == nil {
			return ses.FailInvalidHandle()
		}
		ses.SendInt(0)
		return ses.OK()
	})

	s.Handle("RunCode2", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		if _, err := ses.RecvInt(); err != nil {
			return err
		}
		ses.SendInt(0)
		return ses.OK()
	})

	s.Handle("RunPause", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		if _, err := ses.RecvInt(); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("RunCode", func(ses *Session) error {
		if _, err := ses.RecvInt(); err != nil { // function call flag
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		ses.SendInt(0)
		return ses.OK()
	})

	s.Handle("RunMessage", func(ses *Session) error {
		if _, err := ses.RecvInt(); err != nil { // comment flag
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		return ses.OK()
	})

	// ---- robot I/O and driver ----

	s.Handle("setDO", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("waitDI", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		if _, err := ses.RecvInt(); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("Connect", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		if _, err := ses.RecvLine(); err != nil { // robot ip
			return err
		}
		ses.SendInt(1)
		return ses.OK()
	})

	s.Handle("Disconnect", func(ses *Session) error {
		if _, err := stubArgItem(ses, st); err != nil {
			return err
		}
		ses.SendInt(1)
		return ses.OK()
	})

	// ---- station edits ----

	s.Handle("Add", func(ses *Session) error {
		path, err := ses.RecvLine()
		if err != nil {
			return err
		}
		parent, err := ses.RecvHandleID()
		if err != nil {
			return err
		}
		st.mu.Lock()
		id := st.add(common.ItemTypeObject, baseName(path), parent)
		h := st.handleOf(st.lookup(id))
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	s.Handle("Save", func(ses *Session) error {
		if _, err := ses.RecvLine(); err != nil {
			return err
		}
		if _, err := ses.RecvHandleID(); err != nil {
			return err
		}
		return ses.OK()
	})

	s.Handle("Add_TARGET", func(ses *Session) error {
		name, err := ses.RecvLine()
		if err != nil {
			return err
		}
		parent, err := ses.RecvHandleID()
		if err != nil {
			return err
		}
		if _, err := ses.RecvHandleID(); err != nil { // robot
			return err
		}
		st.mu.Lock()
		h := st.handleOf(st.lookup(st.add(common.ItemTypeTarget, name, parent)))
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	s.Handle("Add_FRAME", func(ses *Session) error {
		name, err := ses.RecvLine()
		if err != nil {
			return err
		}
		parent, err := ses.RecvHandleID()
		if err != nil {
			return err
		}
		st.mu.Lock()
		h := st.handleOf(st.lookup(st.add(common.ItemTypeFrame, name, parent)))
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	s.Handle("Add_PROG", func(ses *Session) error {
		name, err := ses.RecvLine()
		if err != nil {
			return err
		}
		if _, err := ses.RecvHandleID(); err != nil { // robot
			return err
		}
		st.mu.Lock()
		h := st.handleOf(st.lookup(st.add(common.ItemTypeProgram, name, 0)))
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	s.Handle("NewStation", func(ses *Session) error {
		st.mu.Lock()
		h := st.handleOf(st.lookup(st.add(common.ItemTypeStation, "New Station", 0)))
		st.mu.Unlock()
		ses.SendHandle(h)
		return ses.OK()
	})

	// ---- parameters and modes ----

	s.Handle("G_Param", func(ses *Session) error {
		key, err := ses.RecvLine()
		if err != nil {
			return err
		}
		st.mu.Lock()
		val, ok := st.params[key]
		st.mu.Unlock()
		if !ok {
			val = fmt.Sprintf("UNKNOWN %s", key)
		}
		ses.SendLine(val)
		return ses.OK()
	})

	s.Handle("S_Param", func(ses *Session) error {
		key, err := ses.RecvLine()
		if err != nil {
			return err
		}
		val, err := ses.RecvLine()
		if err != nil {
			return err
		}
		st.mu.Lock()
		st.params[key] = val
		st.mu.Unlock()
		return ses.OK()
	})

	s.Handle("G_Params", func(ses *Session) error {
		st.mu.Lock()
		keys := make([]string, 0, len(st.params))
		for k := range st.params {
			keys = append(keys, k)
		}
		vals := make([]string, len(keys))
		for i, k := range keys {
			vals[i] = st.params[k]
		}
		st.mu.Unlock()
		ses.SendInt(int32(len(keys)))
		for i := range keys {
			ses.SendLine(keys[i])
			ses.SendLine(vals[i])
		}
		return ses.OK()
	})

	s.Handle("S_RunMode", func(ses *Session) error {
		mode, err := ses.RecvInt()
		if err != nil {
			return err
		}
		st.mu.Lock()
		st.runMode = mode
		st.mu.Unlock()
		return ses.OK()
	})

	s.Handle("G_RunMode", func(ses *Session) error {
		st.mu.Lock()
		mode := st.runMode
		st.mu.Unlock()
		ses.SendInt(mode)
		return ses.OK()
	})

	s.Handle("SimulateSpeed", func(ses *Session) error {
		milli, err := ses.RecvInt()
		if err != nil {
			return err
		}
		st.mu.Lock()
		st.speedMilli = milli
		st.mu.Unlock()
		return ses.OK()
	})

	s.Handle("GetSimulateSpeed", func(ses *Session) error {
		st.mu.Lock()
		milli := st.speedMilli
		st.mu.Unlock()
		ses.SendInt(milli)
		return ses.OK()
	})

	// ---- collisions ----

	s.Handle("Collisions", func(ses *Session) error {
		st.mu.Lock()
		n := st.collisions
		st.mu.Unlock()
		ses.SendInt(n)
		return ses.OK()
	})

	s.Handle("Collided", func(ses *Session) error {
		if _, err := ses.RecvHandleID(); err != nil {
			return err
		}
		if _, err := ses.RecvHandleID(); err != nil {
			return err
		}
		ses.SendInt(0)
		return ses.OK()
	})

	s.Handle("Collision_SetState", func(ses *Session) error {
		if _, err := ses.RecvInt(); err != nil {
			return err
		}
		st.mu.Lock()
		n := st.collisions
		st.mu.Unlock()
		ses.SendInt(n)
		return ses.OK()
	})
}

// stubArgItem reads a handle argument and resolves it against the station.
// A nil item with a nil error means the handle was unknown; the caller still
// must consume any remaining arguments before failing the frame.
func stubArgItem(ses *Session, st *Station) (*stubItem, error) {
	id, err := ses.RecvHandleID()
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	it := st.lookup(id)
	st.mu.Unlock()
	return it, nil
}

// stubMoveTarget consumes one target union (selector, array, handle) plus the
// robot handle, applying joint targets to the robot state.
func stubMoveTarget(ses *Session, st *Station) error {
	sel, err := ses.RecvInt()
	if err != nil {
		return err
	}
	values, err := ses.RecvArray()
	if err != nil {
		return err
	}
	if _, err := ses.RecvHandleID(); err != nil { // target item slot
		return err
	}
	robot, err := stubArgItem(ses, st)
	if err != nil {
		return err
	}
	if robot == nil {
		return ses.FailInvalidHandle()
	}
	switch sel {
	case 1: // joint target
		st.mu.Lock()
		robot.joints = mat.Joints(values)
		st.mu.Unlock()
	case 2, 3: // pose values or target item, pose state unchanged
	default:
		return ses.Fail(fmt.Sprintf("invalid move target selector %d", sel))
	}
	return ses.OK()
}

func baseName(path string) string {
	path = strings.TrimRight(path, "/\\")
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}
