package ecs

import (
	"fmt"

	"github.com/kamstrup/intmap"
)

// Access declares how a pass uses a component kind.
type Access uint8

const (
	Read Access = iota
	Write
)

func (a Access) String() string {
	if a == Write {
		return "write"
	}
	return "read"
}

type borrow struct {
	kind   *componentKind
	access Access
}

// borrowLedger tracks the component kinds held by passes that are currently
// iterating. A write borrow is exclusive per kind; read borrows share.
// Stored values are -1 for a writer and the reader count otherwise.
type borrowLedger struct {
	held *intmap.Map[kindId, int32]
}

func newBorrowLedger() *borrowLedger {
	return &borrowLedger{
		held: intmap.New[kindId, int32](16),
	}
}

// check reports the first borrow in set that conflicts with a held borrow
func (l *borrowLedger) check(set []borrow) error {
	for _, b := range set {
		state, _ := l.held.Get(b.kind.id)
		if state < 0 || (b.access == Write && state > 0) {
			return fmt.Errorf("%w: %s %s", ErrBorrowConflict, b.access, b.kind.typ)
		}
	}
	return nil
}

// acquire takes every borrow in set or none of them
func (l *borrowLedger) acquire(set []borrow) error {
	if err := l.check(set); err != nil {
		return err
	}
	for _, b := range set {
		if b.access == Write {
			l.held.Put(b.kind.id, -1)
			continue
		}
		state, _ := l.held.Get(b.kind.id)
		l.held.Put(b.kind.id, state+1)
	}
	return nil
}

func (l *borrowLedger) release(set []borrow) {
	for _, b := range set {
		state, ok := l.held.Get(b.kind.id)
		if !ok {
			continue
		}
		if state <= 1 {
			l.held.Del(b.kind.id)
			continue
		}
		l.held.Put(b.kind.id, state-1)
	}
}

// active reports whether any pass holds a borrow
func (l *borrowLedger) active() bool {
	return l.held.Len() > 0
}
