package debugui

import (
	"reflect"
	"sync"
)

// maxFieldDepth bounds how far nested value structs are flattened
const maxFieldDepth = 4

// FieldInfo is one leaf field of a component, reached from the component
// value through Index. Nested value structs are flattened into dotted names
// such as "Offset.X"; pointers, slices and maps stay leaves.
type FieldInfo struct {
	Name     string
	Index    []int
	Type     reflect.Type
	Editable bool
}

// ReflectionCache memoizes the flattened field layout of each component type
type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]FieldInfo),
	}
}

func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		fields = flattenFields(t, "", nil, 0)
	}
	rc.fieldCache[t] = fields
	return fields
}

func flattenFields(t reflect.Type, prefix string, index []int, depth int) []FieldInfo {
	var fields []FieldInfo
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := prefix + field.Name
		path := append(append([]int(nil), index...), i)
		if field.Type.Kind() == reflect.Struct && depth < maxFieldDepth {
			fields = append(fields, flattenFields(field.Type, name+".", path, depth+1)...)
			continue
		}
		fields = append(fields, FieldInfo{
			Name:     name,
			Index:    path,
			Type:     field.Type,
			Editable: editableKind(field.Type.Kind()),
		})
	}
	return fields
}

// editableKind reports whether the inspector has an input widget for k
func editableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return true
	}
	return false
}

var globalReflectionCache = NewReflectionCache()
