package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/settings"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
	"github.com/KevinKickass/OpenCameraCore/internal/worker"
)

type (
	Completion = worker.Completion[State]
	Order      = worker.Order[State]
	Result     = worker.Result[State]
)

// ListDevices enumerates attached devices.
type ListDevices struct{}

func (ListDevices) Execute(s *worker.State) (Completion, error) {
	ctx, cancel := s.CallContext()
	defer cancel()

	devices, err := s.Library.ListDevices(ctx)
	if err != nil {
		return nil, types.NewDeviceError("list devices", err)
	}

	return func(st *State) {
		first := !st.listed
		st.listed = true
		st.Devices = devices
		st.emit(EventDeviceList, DeviceListInfo{Devices: devices, First: first})
	}, nil
}

// OpenDevice replaces any open session with one to Descriptor and reads the
// device's static information.
type OpenDevice struct {
	Descriptor types.DeviceDescriptor
}

func (o OpenDevice) Execute(s *worker.State) (Completion, error) {
	if err := s.CloseSession(); err != nil {
		s.Logger().Warn("Failed to close previous device", zap.Error(err))
	}

	ctx, cancel := s.CallContext()
	defer cancel()

	session, err := s.Library.Open(ctx, o.Descriptor)
	if err != nil {
		return nil, types.NewDeviceError("open "+o.Descriptor.String(), err)
	}

	info := types.DeviceInfo{Model: o.Descriptor.Name, Port: o.Descriptor.Port}

	info.Abilities, err = session.Abilities(ctx)
	if err != nil {
		_ = session.Close()
		return nil, types.NewDeviceError("abilities", err)
	}

	// Text and storage information is optional.
	optional := func(what string, err error) {
		if err != nil {
			s.Logger().Debug("Device information unavailable",
				zap.String("device", o.Descriptor.String()),
				zap.String("field", what),
				zap.Error(err))
		}
	}
	info.About, err = session.About(ctx)
	optional("about", err)
	info.Manual, err = session.Manual(ctx)
	optional("manual", err)
	info.Summary, err = session.Summary(ctx)
	optional("summary", err)
	info.Storages, err = session.Storages(ctx)
	optional("storages", err)

	desc := o.Descriptor
	s.Session = session
	s.Descriptor = &desc
	s.Logger().Info("Device opened", zap.String("device", desc.String()))

	return func(st *State) {
		st.Current = &desc
		st.Camera = &CameraState{
			Info:     info,
			Modified: settings.NewModifiedSet(),
		}
		st.emit(EventDeviceOpened, info)
	}, nil
}

// CloseDevice releases the open session.
type CloseDevice struct{}

func (CloseDevice) Execute(s *worker.State) (Completion, error) {
	if err := s.CloseSession(); err != nil {
		return nil, err
	}

	return func(st *State) {
		closed := st.Current
		st.Current = nil
		st.Camera = nil
		st.LastPreview = nil
		st.emit(EventDeviceClosed, closed)
	}, nil
}

// ReadConfig reads the full configuration tree back from the device.
type ReadConfig struct {
	StrictNames bool
}

func (o ReadConfig) Execute(s *worker.State) (Completion, error) {
	session, err := s.RequireSession("read config")
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.CallContext()
	defer cancel()

	raw, err := session.ReadConfigTree(ctx)
	if err != nil {
		return nil, types.NewDeviceError("read config", err)
	}

	var opts []settings.ParseOption
	if o.StrictNames {
		opts = append(opts, settings.WithStrictNames())
	}
	tree, err := settings.Parse(raw, opts...)
	if err != nil {
		return nil, err
	}

	return func(st *State) {
		if st.Camera == nil {
			return
		}

		var changes []settings.Change
		if prev := st.Camera.Settings; prev != nil {
			changes = settings.Diff(*prev, tree)
		}
		st.Camera.Settings = &tree

		status, err := settings.ReadStatus(tree)
		st.Camera.Status = status
		if err != nil {
			st.queueError(err)
		}

		st.emit(EventConfigLoaded, ConfigLoadedInfo{Changes: changes, Count: len(changes)})
	}, nil
}

// WriteBatch writes edits in order. The first failing write aborts the rest.
type WriteBatch struct {
	Edits []settings.Edit
}

func (o WriteBatch) Execute(s *worker.State) (Completion, error) {
	session, err := s.RequireSession("write config")
	if err != nil {
		return nil, err
	}

	for _, edit := range o.Edits {
		setting, err := edit.Node.ToSetting()
		if err != nil {
			return nil, err
		}

		ctx, cancel := s.CallContext()
		err = session.WriteConfigNode(ctx, setting)
		cancel()
		if err != nil {
			return nil, types.NewDeviceError(fmt.Sprintf("write %s", setting.Name), err)
		}
	}

	written := len(o.Edits)
	return func(st *State) {
		if st.Camera != nil {
			st.Camera.Modified.FinishApply()
		}
		st.emit(EventConfigApplied, ConfigAppliedInfo{Written: written})
	}, nil
}
