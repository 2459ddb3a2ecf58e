package common

import "fmt"

// ItemType classifies the kind of object a Handle refers to in the remote
// station tree. The values are part of the protocol contract.
type ItemType int32

const (
	ItemTypeAny       ItemType = -1
	ItemTypeStation   ItemType = 1
	ItemTypeRobot     ItemType = 2
	ItemTypeFrame     ItemType = 3
	ItemTypeTool      ItemType = 4
	ItemTypeObject    ItemType = 5
	ItemTypeTarget    ItemType = 6
	ItemTypeProgram   ItemType = 8
	ItemTypeMachining ItemType = 11
)

// String returns a readable name for the item type.
func (t ItemType) String() string {
	switch t {
	case ItemTypeAny:
		return "any"
	case ItemTypeStation:
		return "station"
	case ItemTypeRobot:
		return "robot"
	case ItemTypeFrame:
		return "frame"
	case ItemTypeTool:
		return "tool"
	case ItemTypeObject:
		return "object"
	case ItemTypeTarget:
		return "target"
	case ItemTypeProgram:
		return "program"
	case ItemTypeMachining:
		return "machining"
	default:
		return fmt.Sprintf("type(%d)", int32(t))
	}
}

// Handle is an opaque reference to an object owned by the remote application:
// a 64-bit identifier plus a type tag. The identifier is only ever sent back
// to the remote side; it must never be treated as a local address. Equality
// of two handles is defined on the identifier alone, since the type tag is a
// client-side annotation the remote side does not echo consistently.
type Handle struct {
	ID   uint64
	Type ItemType
}

// NilHandle is the "no object" placeholder sent when an optional handle
// argument is absent.
var NilHandle = Handle{}

// Valid reports whether the handle refers to an object (nonzero identifier).
// A valid handle can still be stale; that is only detected by the remote
// side on next use, via a status 1 reply.
func (h Handle) Valid() bool { return h.ID != 0 }

// Same reports whether two handles refer to the same remote object.
func (h Handle) Same(other Handle) bool { return h.ID == other.ID }

// String renders the handle for logs.
func (h Handle) String() string {
	if !h.Valid() {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d, %s)", h.ID, h.Type)
}
