// Package app is the frontend side of the device worker: it owns the
// frontend State, turns user intents into worker orders and applies the
// results on every tick.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/device"
	"github.com/KevinKickass/OpenCameraCore/internal/preview"
	"github.com/KevinKickass/OpenCameraCore/internal/settings"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
	"github.com/KevinKickass/OpenCameraCore/internal/worker"
)

var ErrNoSettings = errors.New("settings have not been read yet")

type Options struct {
	TickInterval    time.Duration
	AutoOpenFirst   bool
	StrictNames     bool
	Exclusions      settings.Exclusions
	PreviewInterval time.Duration
	CallTimeout     time.Duration
}

// App serialises every frontend operation behind one lock, so REST
// handlers and the tick loop see the State as if single threaded.
type App struct {
	mu     sync.Mutex
	state  State
	handle *worker.Handle[State]

	opts      Options
	logger    *zap.Logger
	listeners []Listener
}

// New starts the device worker. Nothing is submitted until the first operation.
func New(lib device.Library, opts Options, logger *zap.Logger) *App {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 100 * time.Millisecond
	}

	handle := worker.Start[State](lib, previewSink{},
		worker.WithLogger(logger.Named("worker")),
		worker.WithPreviewInterval(opts.PreviewInterval),
		worker.WithCallTimeout(opts.CallTimeout),
	)

	return &App{
		handle: handle,
		opts:   opts,
		logger: logger,
	}
}

// Subscribe registers a listener. Not safe to call while Run is active.
func (a *App) Subscribe(l Listener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, l)
}

// submit must be called with the lock held. A failed submit is queued for
// the user like any other error.
func (a *App) submit(order Order) (uuid.UUID, error) {
	id, err := a.handle.Submit(order)
	if err != nil {
		a.state.queueError(err)
		return uuid.Nil, err
	}
	return id, nil
}

func (a *App) RefreshDevices() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.submit(ListDevices{})
	return err
}

// UseDevice closes the current device, if any, and opens desc.
func (a *App) UseDevice(desc types.DeviceDescriptor) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.useDevice(desc)
}

func (a *App) useDevice(desc types.DeviceDescriptor) error {
	if a.state.Current != nil {
		if _, err := a.submit(CloseDevice{}); err != nil {
			return err
		}
	}
	a.state.Camera = nil
	a.state.LastPreview = nil

	if _, err := a.submit(OpenDevice{Descriptor: desc}); err != nil {
		return err
	}
	_, err := a.submit(ReadConfig{StrictNames: a.opts.StrictNames})
	return err
}

func (a *App) CloseDevice() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.submit(CloseDevice{})
	return err
}

func (a *App) ReloadSettings() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Camera == nil {
		return types.ErrNoDevice
	}
	_, err := a.submit(ReadConfig{StrictNames: a.opts.StrictNames})
	return err
}

// EditSetting records a new value for the leaf id of group parentID. Range
// values are clamped into the setting's bounds.
func (a *App) EditSetting(parentID, id int, value any) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cam := a.state.Camera
	if cam == nil {
		return types.ErrNoDevice
	}
	if cam.Settings == nil {
		return ErrNoSettings
	}
	if cam.Modified.Blocked() {
		return settings.ErrApplyInProgress
	}

	node, ok := cam.Settings.Find(parentID, id)
	if !ok {
		return fmt.Errorf("%w: %d/%d", settings.ErrSettingNotFound, parentID, id)
	}

	edited, err := settings.EditValue(node, value)
	if err != nil {
		return err
	}
	return cam.Modified.Record(parentID, edited)
}

// DiscardSettings drops pending edits without touching the device.
func (a *App) DiscardSettings() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.Camera == nil {
		return types.ErrNoDevice
	}
	return a.state.Camera.Modified.Discard()
}

// ApplySettings writes every pending edit. Edits are refused until the
// write result arrives, whatever its outcome.
func (a *App) ApplySettings() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cam := a.state.Camera
	if cam == nil {
		return types.ErrNoDevice
	}

	batch, err := cam.Modified.BeginApply()
	if err != nil {
		return err
	}

	id, err := a.submit(WriteBatch{Edits: batch})
	if err != nil {
		cam.Modified.FinishApply()
		return err
	}
	a.state.pendingApply = id

	a.logger.Info("Applying settings", zap.Int("count", len(batch)), zap.String("order_id", id.String()))
	return nil
}

func (a *App) SetLiveView(enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.handle.SetLiveView(enabled); err != nil {
		a.state.queueError(err)
		return err
	}
	a.state.LiveView = enabled
	a.state.emit(EventLiveView, LiveViewInfo{Enabled: enabled})
	return nil
}

// Tick applies every result received since the last tick, in arrival order,
// then notifies listeners.
func (a *App) Tick() {
	a.mu.Lock()
	for _, r := range a.handle.Drain() {
		a.apply(r)
	}
	events := a.state.takeEvents()
	events = append(events, a.react(events)...)
	listeners := a.listeners
	a.mu.Unlock()

	for _, e := range events {
		for _, l := range listeners {
			l(e)
		}
	}
}

func (a *App) apply(r Result) {
	applyDone := r.OrderID != uuid.Nil && r.OrderID == a.state.pendingApply
	if applyDone {
		a.state.pendingApply = uuid.Nil
	}

	if r.Err != nil {
		uiErr := a.state.queueError(r.Err)
		a.logger.Warn("Worker reported an error",
			zap.String("order_id", r.OrderID.String()),
			zap.String("title", uiErr.Title),
			zap.Error(r.Err))
		if applyDone && a.state.Camera != nil {
			a.state.Camera.Modified.FinishApply()
		}
		return
	}

	r.Apply(&a.state)
}

// react handles events that lead to further orders. Must hold the lock.
func (a *App) react(events []Event) []Event {
	for _, e := range events {
		switch e.Type {
		case EventDeviceList:
			info := e.Data.(DeviceListInfo)
			if info.First && a.opts.AutoOpenFirst && len(info.Devices) > 0 && a.state.Current == nil {
				a.logger.Info("Opening first device", zap.String("device", info.Devices[0].String()))
				_ = a.useDevice(info.Devices[0])
			}
		case EventConfigLoaded:
			info := e.Data.(ConfigLoadedInfo)
			for _, c := range info.Changes {
				a.logger.Debug("Setting changed", zap.String("path", c.Path), zap.String("name", c.Name))
			}
			a.logger.Info("Settings loaded", zap.Int("changes", info.Count))
		}
	}
	// Errors from the reactions above.
	return a.state.takeEvents()
}

// Run ticks until ctx is done or the worker exits.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.opts.TickInterval)
	defer ticker.Stop()

	a.logger.Info("Frontend loop started", zap.Duration("interval", a.opts.TickInterval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.handle.Done():
			a.Tick()
			return a.handle.Err()
		case <-ticker.C:
			a.Tick()
		}
	}
}

// DismissError removes the queued error at index i.
func (a *App) DismissError(i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i < 0 || i >= len(a.state.Errors) {
		return fmt.Errorf("no error at index %d", i)
	}
	a.state.Errors = append(a.state.Errors[:i], a.state.Errors[i+1:]...)
	return nil
}

// Preview returns the last installed preview frame, or nil.
func (a *App) Preview() *preview.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.LastPreview
}

// Shutdown stops the worker. Results still queued are dropped.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.handle.Shutdown(ctx)
	if err != nil {
		a.logger.Error("Worker shutdown failed", zap.Error(err))
	}
	return err
}
