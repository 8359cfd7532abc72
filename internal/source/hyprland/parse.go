package hyprland

import (
	"strconv"
	"strings"

	"github.com/jmylchreest/wayglance/internal/source"
)

// ParseLine decodes one "EVENT>>DATA" line from the event socket. ok is false
// for events wayglance does not publish and for malformed lines.
func ParseLine(line string) (msg source.Message, ok bool) {
	event, data, found := strings.Cut(strings.TrimRight(line, "\r\n"), ">>")
	if !found {
		return source.Message{}, false
	}

	switch event {
	case "workspacev2":
		return workspaceMessage(KindWorkspaceChanged, data)
	case "createworkspacev2":
		return workspaceMessage(KindWorkspaceAdded, data)
	case "destroyworkspacev2":
		return workspaceMessage(KindWorkspaceDeleted, data)
	case "renameworkspace":
		// The new name is reported as given, special prefix included.
		id, name, ok := splitID(data)
		if !ok {
			return source.Message{}, false
		}
		return source.Message{Kind: KindWorkspaceRenamed, Event: Workspace{ID: id, Name: name}}, true
	case "moveworkspacev2":
		rest, monitor, found := cutLast(data, ",")
		if !found {
			return source.Message{}, false
		}
		id, name, ok := splitID(rest)
		if !ok {
			return source.Message{}, false
		}
		return source.Message{Kind: KindWorkspaceMoved, Event: Workspace{
			ID:      id,
			Name:    workspaceName(name),
			Monitor: monitor,
		}}, true
	case "activewindow":
		class, title, _ := strings.Cut(data, ",")
		return source.Message{Kind: KindActiveWindow, Event: ActiveWindow{Title: title, Class: class}}, true
	case "fullscreen":
		switch data {
		case "0":
			return source.Message{Kind: KindFullscreenChanged, Event: source.Bool(false)}, true
		case "1":
			return source.Message{Kind: KindFullscreenChanged, Event: source.Bool(true)}, true
		}
		return source.Message{}, false
	case "focusedmon":
		monitor, workspace, _ := strings.Cut(data, ",")
		if monitor == "" {
			return source.Message{}, false
		}
		if workspace != "" {
			workspace = workspaceName(workspace)
		}
		return source.Message{Kind: KindActiveMonitorChanged, Event: ActiveMonitor{
			Monitor:   monitor,
			Workspace: workspace,
		}}, true
	}
	return source.Message{}, false
}

func workspaceMessage(kind, data string) (source.Message, bool) {
	id, name, ok := splitID(data)
	if !ok {
		return source.Message{}, false
	}
	return source.Message{Kind: kind, Event: Workspace{ID: id, Name: workspaceName(name)}}, true
}

// splitID splits "ID,NAME". Names may contain commas.
func splitID(data string) (int, string, bool) {
	rawID, name, found := strings.Cut(data, ",")
	if !found {
		return 0, "", false
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return 0, "", false
	}
	return id, name, true
}

// workspaceName strips the "special:" prefix of special workspaces. An
// unnamed special workspace is called "special".
func workspaceName(name string) string {
	if name == "special" {
		return name
	}
	if rest, ok := strings.CutPrefix(name, "special:"); ok {
		if rest == "" {
			return "special"
		}
		return rest
	}
	return name
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
