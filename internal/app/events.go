package app

import (
	"time"

	"github.com/KevinKickass/OpenCameraCore/internal/settings"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

type EventType string

const (
	EventDeviceList    EventType = "device_list"
	EventDeviceOpened  EventType = "device_opened"
	EventDeviceClosed  EventType = "device_closed"
	EventConfigLoaded  EventType = "config_loaded"
	EventConfigApplied EventType = "config_applied"
	EventPreviewFrame  EventType = "preview_frame"
	EventLiveView      EventType = "live_view"
	EventError         EventType = "error"
)

// Event tells listeners that the frontend state changed.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

func NewEvent(t EventType, data any) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Listener is called after each tick for every event, outside the App lock.
// It must not block.
type Listener func(Event)

type DeviceListInfo struct {
	Devices []types.DeviceDescriptor `json:"devices"`
	First   bool                     `json:"first"`
}

type ConfigLoadedInfo struct {
	Changes []settings.Change `json:"-"`
	Count   int               `json:"changes"`
}

type ConfigAppliedInfo struct {
	Written int `json:"written"`
}

type PreviewInfo struct {
	Seq    uint64 `json:"seq"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type LiveViewInfo struct {
	Enabled bool `json:"enabled"`
}
