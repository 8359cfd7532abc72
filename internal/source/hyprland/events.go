package hyprland

import (
	lua "github.com/yuin/gopher-lua"
)

// Signal suffixes emitted under the "hyprland" namespace.
const (
	KindWorkspaceChanged     = "workspace_changed"
	KindWorkspaceAdded       = "workspace_added"
	KindWorkspaceDeleted     = "workspace_deleted"
	KindWorkspaceMoved       = "workspace_moved"
	KindWorkspaceRenamed     = "workspace_renamed"
	KindActiveWindow         = "active_window"
	KindFullscreenChanged    = "fullscreen_changed"
	KindActiveMonitorChanged = "active_monitor_changed"
)

// Kinds lists every suffix the listener emits.
var Kinds = []string{
	KindWorkspaceChanged,
	KindWorkspaceAdded,
	KindWorkspaceDeleted,
	KindWorkspaceMoved,
	KindWorkspaceRenamed,
	KindActiveWindow,
	KindFullscreenChanged,
	KindActiveMonitorChanged,
}

// Workspace is the payload of the workspace_* signals. Monitor is only set
// for workspace_moved.
type Workspace struct {
	ID      int
	Name    string
	Monitor string
}

func (w Workspace) ToLua(L *lua.LState) (lua.LValue, error) {
	t := L.CreateTable(0, 3)
	t.RawSetString("id", lua.LNumber(w.ID))
	t.RawSetString("name", lua.LString(w.Name))
	if w.Monitor != "" {
		t.RawSetString("monitor", lua.LString(w.Monitor))
	}
	return t, nil
}

// ActiveWindow is the payload of active_window. Both fields are empty when
// nothing is focused.
type ActiveWindow struct {
	Title string
	Class string
}

func (w ActiveWindow) ToLua(L *lua.LState) (lua.LValue, error) {
	t := L.CreateTable(0, 2)
	t.RawSetString("title", lua.LString(w.Title))
	t.RawSetString("class", lua.LString(w.Class))
	return t, nil
}

// ActiveMonitor is the payload of active_monitor_changed. Workspace is nil
// in Lua when Hyprland reports none.
type ActiveMonitor struct {
	Monitor   string
	Workspace string
}

func (m ActiveMonitor) ToLua(L *lua.LState) (lua.LValue, error) {
	t := L.CreateTable(0, 2)
	t.RawSetString("monitor", lua.LString(m.Monitor))
	if m.Workspace != "" {
		t.RawSetString("workspace", lua.LString(m.Workspace))
	}
	return t, nil
}
