package websocket

import (
	"time"

	"github.com/KevinKickass/OpenCameraCore/internal/app"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Device-related messages
	MessageTypeDeviceList   MessageType = MessageType(app.EventDeviceList)
	MessageTypeDeviceOpened MessageType = MessageType(app.EventDeviceOpened)
	MessageTypeDeviceClosed MessageType = MessageType(app.EventDeviceClosed)

	// Settings messages
	MessageTypeConfigLoaded  MessageType = MessageType(app.EventConfigLoaded)
	MessageTypeConfigApplied MessageType = MessageType(app.EventConfigApplied)

	// Live view messages
	MessageTypePreviewFrame MessageType = MessageType(app.EventPreviewFrame)
	MessageTypeLiveView     MessageType = MessageType(app.EventLiveView)

	MessageTypeError MessageType = MessageType(app.EventError)

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"

	// Sent once to every client right after it connects
	MessageTypeSnapshot MessageType = "snapshot"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// FromEvent converts a frontend event into a message.
func FromEvent(e app.Event) Message {
	return Message{
		Type:      MessageType(e.Type),
		Timestamp: e.Timestamp,
		Data:      e.Data,
	}
}

// Command is a message sent by a client.
type Command struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled,omitempty"`
}

const (
	CommandRefreshDevices = "refresh_devices"
	CommandReloadSettings = "reload_settings"
	CommandSetLiveView    = "set_live_view"
)
