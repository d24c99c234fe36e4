package sim

import (
	"fmt"
	"slices"

	"github.com/KevinKickass/OpenCameraCore/internal/device"
)

// widget exposes a snapshot of a WidgetSpec through device.Widget.
type widget struct {
	spec WidgetSpec
}

func (w widget) fails(field string) error {
	if slices.Contains(w.spec.Unreadable, field) {
		return fmt.Errorf("%w: cannot read %s of %q", ErrInjected, field, w.spec.Name)
	}
	return nil
}

func (w widget) kind() (device.WidgetKind, error) {
	k, ok := device.ParseWidgetKind(w.spec.Type)
	if !ok {
		return 0, fmt.Errorf("unknown widget type %q", w.spec.Type)
	}
	return k, nil
}

func (w widget) expect(field string, kinds ...device.WidgetKind) error {
	if err := w.fails(field); err != nil {
		return err
	}
	k, err := w.kind()
	if err != nil {
		return err
	}
	if !slices.Contains(kinds, k) {
		return fmt.Errorf("widget %q is a %s", w.spec.Name, k)
	}
	return nil
}

func (w widget) ID() (int, error) {
	return w.spec.ID, w.fails("id")
}

func (w widget) Name() (string, error) {
	return w.spec.Name, w.fails("name")
}

func (w widget) Label() (string, error) {
	return w.spec.Label, w.fails("label")
}

func (w widget) ReadOnly() (bool, error) {
	return w.spec.ReadOnly, w.fails("readonly")
}

func (w widget) Kind() (device.WidgetKind, error) {
	if err := w.fails("type"); err != nil {
		return 0, err
	}
	return w.kind()
}

func (w widget) Children() ([]device.Widget, error) {
	if err := w.expect("children", device.KindWindow, device.KindSection); err != nil {
		return nil, err
	}
	out := make([]device.Widget, 0, len(w.spec.Children))
	for _, child := range w.spec.Children {
		out = append(out, widget{spec: child})
	}
	return out, nil
}

func (w widget) Text() (string, error) {
	if err := w.expect("value", device.KindText); err != nil {
		return "", err
	}
	return w.spec.Text, nil
}

func (w widget) Range() (float32, float32, float32, float32, error) {
	if err := w.expect("value", device.KindRange); err != nil {
		return 0, 0, 0, 0, err
	}
	return w.spec.Value, w.spec.Min, w.spec.Max, w.spec.Step, nil
}

func (w widget) Toggled() (*bool, error) {
	if err := w.expect("value", device.KindToggle); err != nil {
		return nil, err
	}
	if w.spec.Toggled == nil {
		return nil, nil
	}
	v := *w.spec.Toggled
	return &v, nil
}

func (w widget) Choices() ([]string, error) {
	if err := w.expect("choices", device.KindRadio, device.KindMenu); err != nil {
		return nil, err
	}
	return append([]string(nil), w.spec.Choices...), nil
}

func (w widget) Choice() (string, error) {
	if err := w.expect("value", device.KindRadio, device.KindMenu); err != nil {
		return "", err
	}
	return w.spec.Choice, nil
}

func (w widget) Timestamp() (int64, error) {
	if err := w.expect("value", device.KindDate); err != nil {
		return 0, err
	}
	return w.spec.Timestamp, nil
}

// NewWidget exposes a spec as a raw widget tree, e.g. for parser tests.
func NewWidget(spec WidgetSpec) device.Widget {
	return widget{spec: spec.clone()}
}
