package ecs

import (
	"iter"
	"reflect"
)

// iComponentStorage is a type-erased component column. Every column is
// parallel-indexed by entity id and is exactly as long as the entity count.
type iComponentStorage interface {
	Type() reflect.Type
	Grow()
	Len() int
	Filled() int
	Set(index int, item any) bool
	Get(index int) any
	Has(index int) bool
	Iter() iter.Seq[int]
}
