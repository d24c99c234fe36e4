package settings

import (
	"fmt"
	"math"

	"github.com/KevinKickass/OpenCameraCore/internal/device"
)

// Edits return a modified copy of the node; the tree it came from is untouched.

func (n ConfigNode) SetText(value string) (ConfigNode, error) {
	if _, err := n.editable("text"); err != nil {
		return n, err
	}
	n.Payload = Text{Value: value}
	return n, nil
}

// SetRange clamps value into the node's bounds.
func (n ConfigNode) SetRange(value float32) (ConfigNode, error) {
	p, err := n.editable("range")
	if err != nil {
		return n, err
	}
	r := p.(Range)
	r.Value = clamp(value, r.Min, r.Max)
	n.Payload = r
	return n, nil
}

func (n ConfigNode) SetToggle(value bool) (ConfigNode, error) {
	if _, err := n.editable("toggle"); err != nil {
		return n, err
	}
	n.Payload = Toggle{Defined: true, Value: value}
	return n, nil
}

// SetChoice selects a listed choice, or records an unlisted value as Other.
func (n ConfigNode) SetChoice(choice string) (ConfigNode, error) {
	p, err := n.editable("radio")
	if err != nil {
		return n, err
	}
	r := p.(Radio)
	r.Selection = selectionOf(r.Choices, choice)
	n.Payload = r
	return n, nil
}

func (n ConfigNode) SetDate(timestamp int64) (ConfigNode, error) {
	if _, err := n.editable("date"); err != nil {
		return n, err
	}
	n.Payload = Date{Timestamp: timestamp}
	return n, nil
}

// Press marks a button for writing; buttons carry no value.
func (n ConfigNode) Press() (ConfigNode, error) {
	_, err := n.editable("button")
	return n, err
}

func (n ConfigNode) editable(kind string) (Payload, error) {
	if n.ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, n.Name)
	}
	if n.Kind() != kind {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrKindMismatch, n.Name, n.Kind(), kind)
	}
	return n.Payload, nil
}

// EditValue applies a loosely typed value, as decoded from JSON, to a leaf.
func EditValue(n ConfigNode, value any) (ConfigNode, error) {
	switch n.Payload.(type) {
	case Text:
		s, ok := value.(string)
		if !ok {
			return n, fmt.Errorf("%w: %s expects a string", ErrKindMismatch, n.Name)
		}
		return n.SetText(s)
	case Range:
		f, ok := toFloat(value)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return n, fmt.Errorf("%w: %s expects a number", ErrKindMismatch, n.Name)
		}
		return n.SetRange(float32(f))
	case Toggle:
		b, ok := value.(bool)
		if !ok {
			return n, fmt.Errorf("%w: %s expects a boolean", ErrKindMismatch, n.Name)
		}
		return n.SetToggle(b)
	case Radio:
		s, ok := value.(string)
		if !ok {
			return n, fmt.Errorf("%w: %s expects a string", ErrKindMismatch, n.Name)
		}
		return n.SetChoice(s)
	case Date:
		ts, ok := toTimestamp(value)
		if !ok {
			return n, fmt.Errorf("%w: %s expects a timestamp in whole seconds", ErrKindMismatch, n.Name)
		}
		return n.SetDate(ts)
	case Button:
		return n.Press()
	default:
		return n, fmt.Errorf("%w: %s is not a leaf", ErrKindMismatch, n.Name)
	}
}

// toTimestamp accepts integral values that fit an int64.
func toTimestamp(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// ToSetting converts a leaf into the value written to the device.
func (n ConfigNode) ToSetting() (device.Setting, error) {
	s := device.Setting{Name: n.Name}

	switch p := n.Payload.(type) {
	case Text:
		s.Kind = device.KindText
		s.Text = p.Value
	case Range:
		s.Kind = device.KindRange
		s.Value = p.Value
	case Toggle:
		s.Kind = device.KindToggle
		s.Toggled = p.Value
	case Radio:
		s.Kind = device.KindRadio
		s.Choice = p.Selected()
	case Date:
		s.Kind = device.KindDate
		s.Timestamp = p.Timestamp
	case Button:
		s.Kind = device.KindButton
	default:
		return device.Setting{}, fmt.Errorf("%w: %s is not a leaf", ErrKindMismatch, n.Name)
	}

	return s, nil
}
