package app

import (
	"slices"

	"github.com/KevinKickass/OpenCameraCore/internal/settings"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// Snapshot is a read-only copy of the State for display.
type Snapshot struct {
	Devices    []types.DeviceDescriptor `json:"devices"`
	Current    *types.DeviceDescriptor  `json:"current,omitempty"`
	Camera     *CameraSnapshot          `json:"camera,omitempty"`
	LiveView   bool                     `json:"live_view"`
	PreviewSeq uint64                   `json:"preview_seq"`
	Errors     []types.UIError          `json:"errors"`
}

type CameraSnapshot struct {
	Info       types.DeviceInfo     `json:"info"`
	Status     types.DeviceStatus   `json:"status"`
	Settings   *settings.ConfigNode `json:"settings,omitempty"`
	ApplyState string               `json:"apply_state"`
	Pending    []PendingEdit        `json:"pending"`
}

type PendingEdit struct {
	ParentID int                 `json:"parent_id"`
	Node     settings.ConfigNode `json:"node"`
}

// Snapshot copies the State. The settings tree is filtered through the
// configured exclusions.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.state
	snap := Snapshot{
		Devices:  slices.Clone(s.Devices),
		LiveView: s.LiveView,
		Errors:   slices.Clone(s.Errors),
	}
	if snap.Devices == nil {
		snap.Devices = []types.DeviceDescriptor{}
	}
	if snap.Errors == nil {
		snap.Errors = []types.UIError{}
	}
	if s.Current != nil {
		current := *s.Current
		snap.Current = &current
	}
	if s.LastPreview != nil {
		snap.PreviewSeq = s.LastPreview.Seq
	}

	if cam := s.Camera; cam != nil {
		cs := &CameraSnapshot{
			Info:       cam.Info,
			Status:     cam.Status,
			ApplyState: cam.Modified.State().String(),
			Pending:    []PendingEdit{},
		}
		if cam.Settings != nil {
			visible := settings.Visible(*cam.Settings, a.opts.Exclusions)
			cs.Settings = &visible
		}
		for _, e := range cam.Modified.Edits() {
			cs.Pending = append(cs.Pending, PendingEdit{ParentID: e.ParentID, Node: e.Node})
		}
		snap.Camera = cs
	}

	return snap
}
