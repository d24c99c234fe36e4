// Package device describes the native device-control library the worker drives.
//
// Implementations are not safe for concurrent use: a Session must only ever be
// called from the goroutine that owns it.
package device

import (
	"context"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// Library discovers and opens devices.
type Library interface {
	ListDevices(ctx context.Context) ([]types.DeviceDescriptor, error)
	Open(ctx context.Context, desc types.DeviceDescriptor) (Session, error)
}

// Session is an open, exclusive connection to one device.
type Session interface {
	ReadConfigTree(ctx context.Context) (Widget, error)
	WriteConfigNode(ctx context.Context, setting Setting) error
	// CapturePreview returns one encoded (JPEG) preview frame.
	CapturePreview(ctx context.Context) ([]byte, error)

	About(ctx context.Context) (string, error)
	Manual(ctx context.Context) (string, error)
	Summary(ctx context.Context) (string, error)
	Abilities(ctx context.Context) (types.Abilities, error)
	Storages(ctx context.Context) ([]types.StorageInfo, error)

	Close() error
}

type WidgetKind int

const (
	KindWindow WidgetKind = iota
	KindSection
	KindText
	KindRange
	KindToggle
	KindRadio
	KindMenu
	KindDate
	KindButton
)

func (k WidgetKind) String() string {
	switch k {
	case KindWindow:
		return "window"
	case KindSection:
		return "section"
	case KindText:
		return "text"
	case KindRange:
		return "range"
	case KindToggle:
		return "toggle"
	case KindRadio:
		return "radio"
	case KindMenu:
		return "menu"
	case KindDate:
		return "date"
	case KindButton:
		return "button"
	default:
		return "unknown"
	}
}

// ParseWidgetKind is the inverse of WidgetKind.String.
func ParseWidgetKind(s string) (WidgetKind, bool) {
	for k := KindWindow; k <= KindButton; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// IsGroup reports whether widgets of this kind carry children.
func (k WidgetKind) IsGroup() bool {
	return k == KindWindow || k == KindSection
}

// Widget is one node of the raw configuration tree reported by a device.
// Every accessor may fail; type-specific accessors fail for other kinds.
type Widget interface {
	ID() (int, error)
	Name() (string, error)
	Label() (string, error)
	ReadOnly() (bool, error)
	Kind() (WidgetKind, error)

	Children() ([]Widget, error)
	Text() (string, error)
	// Range returns value, min, max and step.
	Range() (float32, float32, float32, float32, error)
	// Toggled returns nil when the device reports an indeterminate state.
	Toggled() (*bool, error)
	Choices() ([]string, error)
	Choice() (string, error)
	Timestamp() (int64, error)
}

// Setting is a single value written back to the device, addressed by widget name.
type Setting struct {
	Name      string
	Kind      WidgetKind
	Text      string
	Value     float32
	Toggled   bool
	Choice    string
	Timestamp int64
}
