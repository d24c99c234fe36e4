package settings

import (
	"errors"
	"fmt"
	"math"

	"github.com/KevinKickass/OpenCameraCore/internal/device"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

type parseOptions struct {
	strictNames bool
}

type ParseOption func(*parseOptions)

// WithStrictNames rejects groups whose children repeat a name.
func WithStrictNames() ParseOption {
	return func(o *parseOptions) {
		o.strictNames = true
	}
}

// Parse converts a raw widget tree into a ConfigNode tree. The first
// attribute that cannot be read, depth-first, aborts the parse.
func Parse(w device.Widget, opts ...ParseOption) (ConfigNode, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}
	return parseWidget(w, "", o)
}

func parseWidget(w device.Widget, parentPath string, o parseOptions) (ConfigNode, error) {
	path := parentPath + "/?"
	unreadable := func(field string, err error) error {
		return &types.ConfigError{
			Path:  path,
			Field: field,
			Err:   fmt.Errorf("%w: %v", types.ErrUnreadableField, err),
		}
	}

	id, err := w.ID()
	if err != nil {
		return ConfigNode{}, unreadable("id", err)
	}
	name, err := w.Name()
	if err != nil {
		return ConfigNode{}, unreadable("name", err)
	}
	path = parentPath + "/" + name

	label, err := w.Label()
	if err != nil {
		return ConfigNode{}, unreadable("label", err)
	}
	readOnly, err := w.ReadOnly()
	if err != nil {
		return ConfigNode{}, unreadable("readonly", err)
	}
	kind, err := w.Kind()
	if err != nil {
		return ConfigNode{}, unreadable("type", err)
	}

	node := ConfigNode{ID: id, Name: name, Label: label, ReadOnly: readOnly}

	switch kind {
	case device.KindWindow, device.KindSection:
		raw, err := w.Children()
		if err != nil {
			return ConfigNode{}, unreadable("children", err)
		}
		children := make([]ConfigNode, 0, len(raw))
		for _, child := range raw {
			parsed, err := parseWidget(child, path, o)
			if err != nil {
				return ConfigNode{}, err
			}
			children = append(children, parsed)
		}
		group, err := newGroup(children, o.strictNames)
		if err != nil {
			return ConfigNode{}, &types.ConfigError{Path: path, Err: err}
		}
		node.Payload = group

	case device.KindText:
		value, err := w.Text()
		if err != nil {
			return ConfigNode{}, unreadable("value", err)
		}
		node.Payload = Text{Value: value}

	case device.KindRange:
		value, lo, hi, step, err := w.Range()
		if err != nil {
			return ConfigNode{}, unreadable("value", err)
		}
		r, err := newRange(value, lo, hi, step)
		if err != nil {
			return ConfigNode{}, unreadable("range", err)
		}
		node.Payload = r

	case device.KindToggle:
		toggled, err := w.Toggled()
		if err != nil {
			return ConfigNode{}, unreadable("value", err)
		}
		if toggled == nil {
			node.Payload = Toggle{}
		} else {
			node.Payload = Toggle{Defined: true, Value: *toggled}
		}

	case device.KindRadio, device.KindMenu:
		choices, err := w.Choices()
		if err != nil {
			return ConfigNode{}, unreadable("choices", err)
		}
		choice, err := w.Choice()
		if err != nil {
			return ConfigNode{}, unreadable("value", err)
		}
		node.Payload = Radio{Choices: choices, Selection: selectionOf(choices, choice)}

	case device.KindDate:
		ts, err := w.Timestamp()
		if err != nil {
			return ConfigNode{}, unreadable("value", err)
		}
		node.Payload = Date{Timestamp: ts}

	case device.KindButton:
		node.Payload = Button{}

	default:
		return ConfigNode{}, unreadable("type", fmt.Errorf("unknown widget kind %d", kind))
	}

	return node, nil
}

// newRange keeps the bounds the device reports and pulls the value inside them.
// A non-positive step is replaced by a hundredth of the span.
func newRange(value, lo, hi, step float32) (Range, error) {
	for _, f := range []float32{value, lo, hi, step} {
		if !finite(f) {
			return Range{}, fmt.Errorf("non-finite value %v", f)
		}
	}
	if lo > hi {
		return Range{}, errors.New("min is greater than max")
	}
	if step <= 0 {
		step = (hi - lo) / 100
		if step <= 0 {
			step = 1
		}
	}
	return Range{Value: clamp(value, lo, hi), Min: lo, Max: hi, Step: step}, nil
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func selectionOf(choices []string, value string) Selection {
	for i, c := range choices {
		if c == value {
			return Indexed(i)
		}
	}
	return Other(value)
}
