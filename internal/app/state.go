package app

import (
	"github.com/google/uuid"

	"github.com/KevinKickass/OpenCameraCore/internal/preview"
	"github.com/KevinKickass/OpenCameraCore/internal/settings"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// CameraState exists while a device is open.
type CameraState struct {
	Info     types.DeviceInfo
	Status   types.DeviceStatus
	Settings *settings.ConfigNode
	Modified *settings.ModifiedSet
}

// State is the frontend state. Completions from the worker mutate it; only
// the goroutine holding the App lock touches it.
type State struct {
	Devices     []types.DeviceDescriptor
	Current     *types.DeviceDescriptor
	Camera      *CameraState
	LiveView    bool
	LastPreview *preview.Frame
	Errors      []types.UIError

	listed       bool
	pendingApply uuid.UUID
	events       []Event
}

func (s *State) emit(t EventType, data any) {
	s.events = append(s.events, NewEvent(t, data))
}

// queueError records err for the user.
func (s *State) queueError(err error) types.UIError {
	uiErr := types.NewUIError(err)
	s.Errors = append(s.Errors, uiErr)
	s.emit(EventError, uiErr)
	return uiErr
}

func (s *State) takeEvents() []Event {
	out := s.events
	s.events = nil
	return out
}

// previewSink hands preview results from the worker to the State.
type previewSink struct{}

func (previewSink) Installed(frame *preview.Frame) Completion {
	return func(s *State) {
		s.LastPreview = frame
		s.emit(EventPreviewFrame, PreviewInfo{
			Seq:    frame.Seq,
			Width:  frame.Width(),
			Height: frame.Height(),
		})
	}
}

func (previewSink) Stopped() Completion {
	return func(s *State) {
		s.LiveView = false
		s.emit(EventLiveView, LiveViewInfo{Enabled: false})
	}
}
