package widget

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/dynamic"
	"github.com/jmylchreest/wayglance/internal/script"
)

// Kind identifies a widget type.
type Kind int

const (
	KindLabel Kind = iota
	KindButton
	KindContainer

	kindCount
)

var kindNames = [kindCount]string{"label", "button", "container"}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf returns the Kind for a "type" field value.
func KindOf(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Widget is one node of the tree: *Label, *Button or *Container.
type Widget interface {
	Props() *Properties
}

// Properties are shared by every widget kind.
type Properties struct {
	Kind      Kind                    `yaml:"type"`
	ID        string                  `yaml:"id,omitempty"`
	ClassList dynamic.Value[[]string] `yaml:"class_list,omitempty"`
	HAlign    Align                   `yaml:"halign,omitempty"`
	VAlign    Align                   `yaml:"valign,omitempty"`
	HExpand   bool                    `yaml:"hexpand,omitempty"`
	VExpand   bool                    `yaml:"vexpand,omitempty"`
	Visible   dynamic.Value[bool]     `yaml:"visible"`
	Tooltip   *dynamic.Value[string]  `yaml:"tooltip,omitempty"`
}

// Props implements Widget.
func (p *Properties) Props() *Properties {
	return p
}

// Label displays text.
type Label struct {
	Properties `yaml:",inline"`
	Text       dynamic.Value[string] `yaml:"text"`
}

// Button runs OnClick when pressed and displays Child.
type Button struct {
	Properties `yaml:",inline"`
	OnClick    *script.Func `yaml:"-"`
	Child      Widget       `yaml:"child"`
}

// Container lays out Children along Orientation.
type Container struct {
	Properties  `yaml:",inline"`
	Orientation Orientation `yaml:"orientation"`
	Spacing     int         `yaml:"spacing,omitempty"`
	Children    []Widget    `yaml:"children,omitempty"`
}

type parser func(st *script.State, tbl *lua.LTable, props Properties) (Widget, error)

var parsers [kindCount]parser

func init() {
	parsers = [kindCount]parser{
		KindLabel:     parseLabel,
		KindButton:    parseButton,
		KindContainer: parseContainer,
	}
}

// Parse reads a widget table.
func Parse(st *script.State, lv lua.LValue) (Widget, error) {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return nil, &script.ConversionError{From: script.TypeName(lv), To: "Widget", Message: "expected a table"}
	}

	name, err := script.ToString(tbl.RawGetString("type"))
	if err != nil {
		return nil, script.Field("type", err)
	}
	kind, ok := KindOf(name)
	if !ok {
		return nil, &script.ConversionError{From: "table", To: "Widget", Message: fmt.Sprintf("unknown widget type %q", name)}
	}

	props, err := parseProperties(st, tbl)
	if err != nil {
		return nil, err
	}
	props.Kind = kind
	return parsers[kind](st, tbl, props)
}

// ParseField reads the widget in the named field of tbl.
func ParseField(st *script.State, tbl *lua.LTable, name string) (Widget, error) {
	w, err := Parse(st, tbl.RawGetString(name))
	if err != nil {
		return nil, script.Field(name, err)
	}
	return w, nil
}

func parseProperties(st *script.State, tbl *lua.LTable) (Properties, error) {
	p := Properties{
		Visible: dynamic.Static(true),
	}

	if lv := tbl.RawGetString("id"); !script.IsNil(lv) {
		id, err := script.ToString(lv)
		if err != nil {
			return p, script.Field("id", err)
		}
		p.ID = id
	}

	if v, ok, err := dynamic.ParseOptional(st, tbl, "class_list", script.ToStringList); err != nil {
		return p, err
	} else if ok {
		p.ClassList = v
	}

	for _, f := range []struct {
		name string
		dst  *Align
	}{{"halign", &p.HAlign}, {"valign", &p.VAlign}} {
		if lv := tbl.RawGetString(f.name); !script.IsNil(lv) {
			a, err := ParseAlign(lv)
			if err != nil {
				return p, script.Field(f.name, err)
			}
			*f.dst = a
		}
	}

	for _, f := range []struct {
		name string
		dst  *bool
	}{{"hexpand", &p.HExpand}, {"vexpand", &p.VExpand}} {
		if lv := tbl.RawGetString(f.name); !script.IsNil(lv) {
			b, err := script.ToBool(lv)
			if err != nil {
				return p, script.Field(f.name, err)
			}
			*f.dst = b
		}
	}

	if v, ok, err := dynamic.ParseOptional(st, tbl, "visible", script.ToBool); err != nil {
		return p, err
	} else if ok {
		p.Visible = v
	}

	if v, ok, err := dynamic.ParseOptional(st, tbl, "tooltip", script.ToString); err != nil {
		return p, err
	} else if ok {
		p.Tooltip = &v
	}

	return p, nil
}

func parseLabel(st *script.State, tbl *lua.LTable, props Properties) (Widget, error) {
	text, err := dynamic.ParseField(st, tbl, "text", script.ToString)
	if err != nil {
		return nil, err
	}
	return &Label{Properties: props, Text: text}, nil
}

func parseButton(st *script.State, tbl *lua.LTable, props Properties) (Widget, error) {
	fn, ok := tbl.RawGetString("on_click").(*lua.LFunction)
	if !ok {
		return nil, script.Field("on_click", &script.ConversionError{
			From:    script.TypeName(tbl.RawGetString("on_click")),
			To:      "Button on_click",
			Message: "expected a function for on_click",
		})
	}

	child, err := ParseField(st, tbl, "child")
	if err != nil {
		return nil, err
	}
	return &Button{Properties: props, OnClick: st.NewFunc(fn), Child: child}, nil
}

func parseContainer(st *script.State, tbl *lua.LTable, props Properties) (Widget, error) {
	orientation, err := ParseOrientation(tbl.RawGetString("orientation"))
	if err != nil {
		return nil, script.Field("orientation", err)
	}

	c := &Container{Properties: props, Orientation: orientation}

	if lv := tbl.RawGetString("spacing"); !script.IsNil(lv) {
		if c.Spacing, err = script.ToInt(lv); err != nil {
			return nil, script.Field("spacing", err)
		}
	}

	if lv := tbl.RawGetString("children"); !script.IsNil(lv) {
		children, err := script.ToSequence(lv, func(lv lua.LValue) (Widget, error) {
			return Parse(st, lv)
		})
		if err != nil {
			return nil, script.Field("children", err)
		}
		c.Children = children
	}
	return c, nil
}

// Walk calls fn for w and every widget below it, parents first.
func Walk(w Widget, fn func(Widget)) {
	fn(w)
	switch v := w.(type) {
	case *Button:
		Walk(v.Child, fn)
	case *Container:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	}
}
