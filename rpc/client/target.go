package client

import (
	"errors"

	"github.com/robokit/simlink/lib/mat"
	"github.com/robokit/simlink/rpc/common"
)

var errInvalidTarget = errors.New("move target must set joints, a pose or an item")

// Target is a motion destination: a joint configuration, a cartesian pose or
// an existing target item. Exactly one alternative is set; the zero Target is
// not valid.
type Target struct {
	joints mat.Joints
	pose   *mat.Pose
	item   *Item
}

// JointTarget moves to an absolute joint configuration.
func JointTarget(j mat.Joints) Target { return Target{joints: j} }

// PoseTarget moves the tool to a cartesian pose.
func PoseTarget(p mat.Pose) Target { return Target{pose: &p} }

// ItemTarget moves to a target item defined in the station.
func ItemTarget(it *Item) Target { return Target{item: it} }

// Valid reports whether exactly the intended alternative is set.
func (t Target) Valid() bool {
	return t.joints != nil || t.pose != nil || t.item != nil
}

// send writes the tagged union: a selector, then both payload slots. The
// unused slots still go on the wire as an empty array and a nil handle so
// the frame shape never varies.
func (t Target) send(cl *call) {
	switch {
	case t.item != nil:
		cl.sendInt(3)
		cl.sendArray(nil)
		cl.sendHandle(t.item.h)
	case t.joints != nil:
		cl.sendInt(1)
		cl.sendJoints(t.joints)
		cl.sendHandle(common.NilHandle)
	case t.pose != nil:
		cl.sendInt(2)
		cl.sendPoseAsArray(t.pose)
		cl.sendHandle(common.NilHandle)
	default:
		cl.err = errInvalidTarget
	}
}
