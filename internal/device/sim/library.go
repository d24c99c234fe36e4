// Package sim is an in-memory device backend driven by a YAML fixture. It
// stands in for the native camera library in tests and on machines without
// cameras attached.
package sim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/device"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

var (
	ErrInjected      = errors.New("injected failure")
	ErrUnknownDevice = errors.New("unknown device")
	ErrBusy          = errors.New("device is busy")
	ErrClosed        = errors.New("session is closed")
	ErrNoSuchSetting = errors.New("no such setting")
)

// Library implements device.Library over a fixture. Writes made through a
// session persist in the library and are visible to later sessions.
type Library struct {
	logger *zap.Logger

	mu       sync.Mutex
	failList bool
	devices  []*simDevice
}

type simDevice struct {
	fixture DeviceFixture
	config  WidgetSpec
	open    bool
	writes  []device.Setting
	frames  int
}

func NewLibrary(fixture *Fixture, logger *zap.Logger) *Library {
	l := &Library{
		logger:   logger,
		failList: fixture.FailList,
	}
	for _, d := range fixture.Devices {
		l.devices = append(l.devices, &simDevice{
			fixture: d,
			config:  d.Config.clone(),
		})
	}
	return l
}

func (l *Library) ListDevices(ctx context.Context) ([]types.DeviceDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failList {
		return nil, fmt.Errorf("%w: list devices", ErrInjected)
	}

	out := make([]types.DeviceDescriptor, 0, len(l.devices))
	for _, d := range l.devices {
		out = append(out, d.descriptor())
	}
	return out, nil
}

func (l *Library) Open(ctx context.Context, desc types.DeviceDescriptor) (device.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	d := l.find(desc)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, desc)
	}
	if d.fixture.Fail.Open {
		return nil, fmt.Errorf("%w: open %s", ErrInjected, desc)
	}
	if d.open {
		return nil, fmt.Errorf("%w: %s", ErrBusy, desc)
	}
	d.open = true

	l.logger.Info("Simulated device opened", zap.String("device", desc.String()))

	return &session{lib: l, dev: d}, nil
}

// SetFailList toggles the injected ListDevices failure.
func (l *Library) SetFailList(fail bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failList = fail
}

// Writes returns every setting written to desc so far, in order.
func (l *Library) Writes(desc types.DeviceDescriptor) []device.Setting {
	l.mu.Lock()
	defer l.mu.Unlock()

	d := l.find(desc)
	if d == nil {
		return nil
	}
	return slices.Clone(d.writes)
}

// IsOpen reports whether a session to desc is currently held.
func (l *Library) IsOpen(desc types.DeviceDescriptor) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	d := l.find(desc)
	return d != nil && d.open
}

func (l *Library) find(desc types.DeviceDescriptor) *simDevice {
	for _, d := range l.devices {
		if d.descriptor() == desc {
			return d
		}
	}
	return nil
}

func (d *simDevice) descriptor() types.DeviceDescriptor {
	return types.DeviceDescriptor{Name: d.fixture.Name, Port: d.fixture.Port}
}

type session struct {
	lib    *Library
	dev    *simDevice
	closed bool
}

// call runs fn under the library lock once the session is known to be usable.
func (s *session) call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return fn()
}

func (s *session) ReadConfigTree(ctx context.Context) (device.Widget, error) {
	var w device.Widget
	err := s.call(ctx, func() error {
		if s.dev.fixture.Fail.ReadConfig {
			return fmt.Errorf("%w: read config", ErrInjected)
		}
		w = widget{spec: s.dev.config.clone()}
		return nil
	})
	return w, err
}

func (s *session) WriteConfigNode(ctx context.Context, setting device.Setting) error {
	return s.call(ctx, func() error {
		if slices.Contains(s.dev.fixture.Fail.Write, setting.Name) {
			return fmt.Errorf("%w: write %s", ErrInjected, setting.Name)
		}

		w := s.dev.config.find(setting.Name)
		if w == nil {
			return fmt.Errorf("%w: %s", ErrNoSuchSetting, setting.Name)
		}
		if w.ReadOnly {
			return fmt.Errorf("setting %s is read-only", setting.Name)
		}
		if err := apply(w, setting); err != nil {
			return err
		}

		s.dev.writes = append(s.dev.writes, setting)
		s.lib.logger.Debug("Simulated setting written",
			zap.String("device", s.dev.descriptor().String()),
			zap.String("setting", setting.Name))
		return nil
	})
}

func apply(w *WidgetSpec, s device.Setting) error {
	kind, ok := device.ParseWidgetKind(w.Type)
	if !ok {
		return fmt.Errorf("setting %s has unknown type %q", s.Name, w.Type)
	}
	if kind == device.KindMenu {
		kind = device.KindRadio
	}
	if kind != s.Kind {
		return fmt.Errorf("setting %s is a %s, got a %s value", s.Name, kind, s.Kind)
	}

	switch kind {
	case device.KindText:
		w.Text = s.Text
	case device.KindRange:
		w.Value = min(max(s.Value, w.Min), w.Max)
	case device.KindToggle:
		v := s.Toggled
		w.Toggled = &v
	case device.KindRadio:
		w.Choice = s.Choice
	case device.KindDate:
		w.Timestamp = s.Timestamp
	}
	return nil
}

func (s *session) CapturePreview(ctx context.Context) ([]byte, error) {
	var (
		spec  PreviewSpec
		frame int
	)
	err := s.call(ctx, func() error {
		if s.dev.fixture.Fail.Capture {
			return fmt.Errorf("%w: capture preview", ErrInjected)
		}
		spec = s.dev.fixture.Preview
		s.dev.frames++
		frame = s.dev.frames
		return nil
	})
	if err != nil {
		return nil, err
	}

	if spec.Corrupt {
		return []byte("not a jpeg"), nil
	}
	return gradient(spec.Width, spec.Height, frame)
}

// gradient encodes a test pattern that shifts with every frame.
func gradient(width, height, frame int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x + frame) * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8(frame * 8),
				A: 0xff,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *session) About(ctx context.Context) (string, error) {
	var out string
	err := s.call(ctx, func() error { out = s.dev.fixture.About; return nil })
	return out, err
}

func (s *session) Manual(ctx context.Context) (string, error) {
	var out string
	err := s.call(ctx, func() error { out = s.dev.fixture.Manual; return nil })
	return out, err
}

func (s *session) Summary(ctx context.Context) (string, error) {
	var out string
	err := s.call(ctx, func() error { out = s.dev.fixture.Summary; return nil })
	return out, err
}

func (s *session) Abilities(ctx context.Context) (types.Abilities, error) {
	var out types.Abilities
	err := s.call(ctx, func() error { out = s.dev.fixture.Abilities; return nil })
	return out, err
}

func (s *session) Storages(ctx context.Context) ([]types.StorageInfo, error) {
	var out []types.StorageInfo
	err := s.call(ctx, func() error {
		out = slices.Clone(s.dev.fixture.Storages)
		return nil
	})
	return out, err
}

// Close releases the device. Closing twice is a no-op.
func (s *session) Close() error {
	s.lib.mu.Lock()
	defer s.lib.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.dev.open = false

	s.lib.logger.Info("Simulated device closed", zap.String("device", s.dev.descriptor().String()))
	return nil
}
