package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/rustling/ecs"
)

// NewComponentInspector shows the components of the entity selected in browser
func NewComponentInspector(browser *EntityBrowser) *ComponentInspector {
	return &ComponentInspector{browser: browser}
}

func (ci *ComponentInspector) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	entityId, ok := ci.browser.Selected()
	if !ok {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	if int(entityId) >= storage.Len() {
		imgui.Text(fmt.Sprintf("Entity %d not found", entityId))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", entityId))
	imgui.Separator()

	for _, compType := range storage.Kinds(entityId) {
		component, err := storage.GetComponent(entityId, compType)
		if err != nil || component == nil {
			continue
		}

		if imgui.TreeNodeStr(compType.String()) {
			renderValue(reflect.ValueOf(component).Elem(), compType.String())
			imgui.TreePop()
		}
	}

	imgui.End()
}

// renderValue draws every leaf field of val and writes edits straight back
// into it. val is addressable since it comes from a component pointer.
func renderValue(val reflect.Value, id string) {
	if val.Kind() != reflect.Struct {
		renderField("value", val, id)
		return
	}

	for _, field := range globalReflectionCache.GetFields(val.Type()) {
		fieldVal := val.FieldByIndex(field.Index)
		if fieldVal.Kind() == reflect.Pointer {
			if fieldVal.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			fieldVal = fieldVal.Elem()
		}
		renderField(field.Name, fieldVal, id+"."+field.Name)
	}
}

func renderField(name string, val reflect.Value, id string) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", id), &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", id), &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", id), &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(fmt.Sprintf("%s##%s", name, id), &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", id), "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(fmt.Sprintf("%s##%s", name, id)) {
			renderValue(val, id)
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	case reflect.Func:
		imgui.Text(fmt.Sprintf("%s: func", name))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: %s", name, val.Type()))
		}
	}
}
