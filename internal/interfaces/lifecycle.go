package interfaces

import (
	"context"

	"github.com/KevinKickass/OpenCameraCore/internal/app"
	"github.com/KevinKickass/OpenCameraCore/internal/config"
	"github.com/KevinKickass/OpenCameraCore/internal/preview"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State      string `json:"state"`
	Devices    int    `json:"device_count"`
	CameraOpen bool   `json:"camera_open"`
	LiveView   bool   `json:"live_view"`
	Errors     int    `json:"error_count"`
	Clients    int    `json:"connected_clients"`
}

// Frontend is the set of camera operations served over the API.
type Frontend interface {
	Snapshot() app.Snapshot
	Preview() *preview.Frame

	RefreshDevices() error
	UseDevice(desc types.DeviceDescriptor) error
	CloseDevice() error

	ReloadSettings() error
	EditSetting(parentID, id int, value any) error
	DiscardSettings() error
	ApplySettings() error

	SetLiveView(enabled bool) error
	DismissError(i int) error
}

type LifecycleManager interface {
	Config() *config.Config
	Frontend() Frontend
	GetCurrentStatus() SystemStatus
	Shutdown(ctx context.Context) error
}
