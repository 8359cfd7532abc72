package shell

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/wayglance/internal/dynamic"
	"github.com/jmylchreest/wayglance/internal/widget"
)

// Builder turns widget descriptions into GTK widgets and binds their dynamic
// properties. Every built widget owns a Lifetime that is disposed when GTK
// destroys it, which cancels its bindings.
type Builder struct {
	binder *dynamic.Binder
	logger *slog.Logger
}

// NewBuilder creates a builder that binds through binder.
func NewBuilder(binder *dynamic.Binder, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{binder: binder, logger: logger}
}

type buildFunc func(b *Builder, w widget.Widget, lt *dynamic.Lifetime) (gtk.Widgetter, error)

var builders map[widget.Kind]buildFunc

func init() {
	builders = map[widget.Kind]buildFunc{
		widget.KindLabel:     buildLabel,
		widget.KindButton:    buildButton,
		widget.KindContainer: buildContainer,
	}
}

// kindClassPrefix prefixes the CSS class every widget gets for its kind, e.g.
// "wayglance-label".
const kindClassPrefix = "wayglance-"

// Build creates the GTK widget tree for w.
func (b *Builder) Build(w widget.Widget) (gtk.Widgetter, error) {
	return b.build(w, nil)
}

// build creates w. A non-nil parent disposes the new widget's lifetime along
// with its own, so a subtree that fails halfway releases its bindings.
func (b *Builder) build(w widget.Widget, parent *dynamic.Lifetime) (gtk.Widgetter, error) {
	props := w.Props()
	fn, ok := builders[props.Kind]
	if !ok {
		return nil, fmt.Errorf("no builder for widget type %s", props.Kind)
	}

	lt := &dynamic.Lifetime{}
	if parent != nil {
		parent.OnDispose(lt.Dispose)
	}
	gw, err := fn(b, w, lt)
	if err != nil {
		lt.Dispose()
		return nil, err
	}

	base := gtk.BaseWidget(gw)
	base.ConnectDestroy(lt.Dispose)
	base.AddCSSClass(kindClassPrefix + props.Kind.String())

	if err := b.applyProperties(base, props, lt); err != nil {
		lt.Dispose()
		return nil, err
	}
	return gw, nil
}

func (b *Builder) applyProperties(base *gtk.Widget, p *widget.Properties, lt *dynamic.Lifetime) error {
	if p.ID != "" {
		base.SetName(p.ID)
	}
	if p.HAlign != widget.AlignUnset {
		base.SetHAlign(gtkAlign(p.HAlign))
	}
	if p.VAlign != widget.AlignUnset {
		base.SetVAlign(gtkAlign(p.VAlign))
	}
	base.SetHExpand(p.HExpand)
	base.SetVExpand(p.VExpand)

	if !p.ClassList.IsZero() {
		if err := p.ClassList.Bind(b.binder, lt, "class_list", classSetter(base)); err != nil {
			return err
		}
	}
	if err := p.Visible.Bind(b.binder, lt, "visible", base.SetVisible); err != nil {
		return err
	}
	if p.Tooltip != nil {
		if err := p.Tooltip.Bind(b.binder, lt, "tooltip", base.SetTooltipText); err != nil {
			return err
		}
	}
	return nil
}

// classSetter replaces the classes it added last time, leaving classes GTK
// and other code added alone.
func classSetter(base *gtk.Widget) func([]string) {
	var applied []string
	return func(classes []string) {
		for _, c := range applied {
			if !slices.Contains(classes, c) {
				base.RemoveCSSClass(c)
			}
		}
		for _, c := range classes {
			base.AddCSSClass(c)
		}
		applied = slices.Clone(classes)
	}
}

func buildLabel(b *Builder, w widget.Widget, lt *dynamic.Lifetime) (gtk.Widgetter, error) {
	l := w.(*widget.Label)
	label := gtk.NewLabel("")
	if err := l.Text.Bind(b.binder, lt, "text", label.SetText); err != nil {
		return nil, err
	}
	return label, nil
}

func buildButton(b *Builder, w widget.Widget, lt *dynamic.Lifetime) (gtk.Widgetter, error) {
	bw := w.(*widget.Button)
	child, err := b.build(bw.Child, lt)
	if err != nil {
		return nil, fmt.Errorf("button child: %w", err)
	}

	button := gtk.NewButton()
	button.SetChild(child)

	onClick := bw.OnClick
	button.ConnectClicked(func() {
		if _, err := onClick.Call(); err != nil {
			b.logger.Error("on_click callback failed", "id", bw.ID, "error", err)
		}
	})
	return button, nil
}

func buildContainer(b *Builder, w widget.Widget, lt *dynamic.Lifetime) (gtk.Widgetter, error) {
	c := w.(*widget.Container)
	box := gtk.NewBox(gtkOrientation(c.Orientation), c.Spacing)
	for i, child := range c.Children {
		gw, err := b.build(child, lt)
		if err != nil {
			return nil, fmt.Errorf("container child %d: %w", i+1, err)
		}
		box.Append(gw)
	}
	return box, nil
}

func gtkAlign(a widget.Align) gtk.Align {
	switch a {
	case widget.AlignStart:
		return gtk.AlignStart
	case widget.AlignCenter:
		return gtk.AlignCenter
	case widget.AlignEnd:
		return gtk.AlignEnd
	case widget.AlignBaseline:
		return gtk.AlignBaseline
	default:
		return gtk.AlignFill
	}
}

func gtkOrientation(o widget.Orientation) gtk.Orientation {
	if o == widget.Vertical {
		return gtk.OrientationVertical
	}
	return gtk.OrientationHorizontal
}
