package ecs

import (
	"reflect"
	"sort"
)

// StorageStats is a point-in-time summary of a Storage.
type StorageStats struct {
	EntityCount    int
	ColumnCount    int
	SingletonCount int
	Columns        []ColumnStats
	SingletonTypes []string
}

// ColumnStats describes one allocated component column.
type ColumnStats struct {
	Type   reflect.Type
	Name   string
	Len    int
	Filled int
}

// CollectStats gathers entity, column and singleton counts. Columns are
// listed in registration order; only allocated columns are reported.
func (s *Storage) CollectStats() StorageStats {
	stats := StorageStats{
		EntityCount:    s.count,
		SingletonCount: len(s.singletons),
	}

	for _, column := range s.columns {
		if column == nil {
			continue
		}
		stats.Columns = append(stats.Columns, ColumnStats{
			Type:   column.Type(),
			Name:   column.Type().String(),
			Len:    column.Len(),
			Filled: column.Filled(),
		})
	}
	stats.ColumnCount = len(stats.Columns)

	for t := range s.singletons {
		stats.SingletonTypes = append(stats.SingletonTypes, t.String())
	}
	sort.Strings(stats.SingletonTypes)

	return stats
}
