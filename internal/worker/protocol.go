// Package worker runs every device call on one dedicated goroutine.
//
// The frontend submits orders through a Handle and later drains results.
// Orders run on the worker with exclusive access to the device State; the
// Completion an order returns runs on the frontend with exclusive access to
// the frontend state F. Nothing else is shared between the two sides.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/device"
	"github.com/KevinKickass/OpenCameraCore/internal/preview"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// Completion mutates the frontend state. It runs exactly once, on the frontend.
type Completion[F any] func(*F)

// Order is one unit of device work.
type Order[F any] interface {
	Execute(s *State) (Completion[F], error)
}

// OrderFunc adapts a plain function to Order.
type OrderFunc[F any] func(s *State) (Completion[F], error)

func (f OrderFunc[F]) Execute(s *State) (Completion[F], error) { return f(s) }

// SetLiveView switches preview capture on or off. Handled by the loop itself.
type SetLiveView struct {
	Enabled bool
}

// Shutdown ends the loop; orders queued behind it are dropped.
type Shutdown struct{}

// Result is what the worker reports for one order or preview capture.
// Exactly one of Completion and Err is meaningful. OrderID is uuid.Nil for
// results that did not originate from an order.
type Result[F any] struct {
	OrderID    uuid.UUID
	Completion Completion[F]
	Err        error
}

// Apply runs the completion, if any, against the frontend state.
func (r Result[F]) Apply(f *F) {
	if r.Err == nil && r.Completion != nil {
		r.Completion(f)
	}
}

// PreviewSink builds the completions that hand preview state to the frontend.
type PreviewSink[F any] interface {
	Installed(frame *preview.Frame) Completion[F]
	// Stopped is emitted when live view turns itself off for lack of a device.
	Stopped() Completion[F]
}

type envelope struct {
	id  uuid.UUID
	msg any
}

// State is owned by the worker goroutine. Orders may mutate it freely.
type State struct {
	Library    device.Library
	Session    device.Session
	Descriptor *types.DeviceDescriptor
	LiveView   bool

	callTimeout time.Duration
	logger      *zap.Logger
}

// CallContext bounds one device call by the configured call timeout.
func (s *State) CallContext() (context.Context, context.CancelFunc) {
	if s.callTimeout > 0 {
		return context.WithTimeout(context.Background(), s.callTimeout)
	}
	return context.WithCancel(context.Background())
}

func (s *State) Logger() *zap.Logger { return s.logger }

// RequireSession returns the open session or a device error wrapping ErrNoDevice.
func (s *State) RequireSession(op string) (device.Session, error) {
	if s.Session == nil {
		return nil, types.NewDeviceError(op, types.ErrNoDevice)
	}
	return s.Session, nil
}

// CloseSession releases the open session, if any. The state forgets the
// session even when closing it fails.
func (s *State) CloseSession() error {
	if s.Session == nil {
		return nil
	}

	err := s.Session.Close()
	s.logger.Info("Device session closed", zap.Stringer("device", s.Descriptor))
	s.Session = nil
	s.Descriptor = nil

	return types.NewDeviceError("close", err)
}
