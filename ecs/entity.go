package ecs

import "strconv"

// EntityId is a zero-based, append-only handle. Ids are handed out in
// creation order and are never reused.
type EntityId uint32

// Index returns the id as a slot index into the component columns
func (e EntityId) Index() int {
	return int(e)
}

func (e EntityId) String() string {
	return "entity(" + strconv.FormatUint(uint64(e), 10) + ")"
}
