package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/rustling/ecs"
)

type EntityInfo struct {
	ID             ecs.EntityId
	ComponentTypes []string
}

type EntityBrowserCache struct {
	entities      []EntityInfo
	generation    uint64
	valid         bool
	sortColumn    int
	sortAscending bool
}

func NewEntityBrowser(maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		cache: &EntityBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		maxEntitiesPerPage: max(maxEntitiesPerPage, 1),
	}
}

func (eb *EntityBrowser) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildCacheIfNeeded(storage)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.currentPage = 0
	}

	filteredEntities := eb.getFilteredEntities()
	totalPages := (len(filteredEntities) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
	if eb.currentPage >= totalPages {
		eb.currentPage = max(totalPages-1, 0)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, -30), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.cache.sortColumn = int(spec.ColumnIndex())
			eb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortEntities()
			sortSpecs.SetSpecsDirty(false)
			filteredEntities = eb.getFilteredEntities()
		}

		startIdx, endIdx := eb.pageBounds(len(filteredEntities))
		for _, entity := range filteredEntities[startIdx:endIdx] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.hasSelection && eb.selectedEntityId == entity.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.Select(entity.ID)
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(entity.ComponentTypes)))
		}

		imgui.EndTable()
	}

	if totalPages > 1 {
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filteredEntities)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredEntities)))
	}

	imgui.End()
}

func (eb *EntityBrowser) pageBounds(n int) (start, end int) {
	start = min(eb.currentPage*eb.maxEntitiesPerPage, n)
	end = min(start+eb.maxEntitiesPerPage, n)
	return start, end
}

func (eb *EntityBrowser) rebuildCacheIfNeeded(storage *ecs.Storage) {
	if eb.cache.valid && eb.cache.generation == storage.Generation() {
		return
	}
	eb.rebuildCache(storage)
	eb.cache.generation = storage.Generation()
	eb.cache.valid = true
}

func (eb *EntityBrowser) rebuildCache(storage *ecs.Storage) {
	eb.cache.entities = make([]EntityInfo, 0, storage.Len())

	for i := range storage.Len() {
		id := ecs.EntityId(i)
		kinds := storage.Kinds(id)
		componentTypes := make([]string, len(kinds))
		for j, t := range kinds {
			componentTypes[j] = t.String()
		}
		eb.cache.entities = append(eb.cache.entities, EntityInfo{
			ID:             id,
			ComponentTypes: componentTypes,
		})
	}

	eb.sortEntities()
}

func (eb *EntityBrowser) sortEntities() {
	less := func(a, b EntityInfo) bool {
		switch eb.cache.sortColumn {
		case 1:
			return strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 2:
			return len(a.ComponentTypes) < len(b.ComponentTypes)
		default:
			return a.ID < b.ID
		}
	}

	sort.SliceStable(eb.cache.entities, func(i, j int) bool {
		a, b := eb.cache.entities[i], eb.cache.entities[j]
		if !eb.cache.sortAscending {
			return less(b, a)
		}
		return less(a, b)
	})
}

func (eb *EntityBrowser) getFilteredEntities() []EntityInfo {
	if eb.filterText == "" {
		return eb.cache.entities
	}

	filtered := make([]EntityInfo, 0, len(eb.cache.entities))
	filterLower := strings.ToLower(eb.filterText)

	for _, entity := range eb.cache.entities {
		idStr := fmt.Sprintf("%d", entity.ID)
		componentsStr := strings.ToLower(strings.Join(entity.ComponentTypes, " "))

		if !strings.Contains(idStr, filterLower) && !strings.Contains(componentsStr, filterLower) {
			continue
		}
		filtered = append(filtered, entity)
	}

	return filtered
}

// Select makes id the inspected entity
func (eb *EntityBrowser) Select(id ecs.EntityId) {
	eb.selectedEntityId = id
	eb.hasSelection = true
}

// Selected returns the inspected entity, if any
func (eb *EntityBrowser) Selected() (ecs.EntityId, bool) {
	return eb.selectedEntityId, eb.hasSelection
}
