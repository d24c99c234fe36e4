package sim

import (
	"bytes"
	"context"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/device"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

var camX = types.DeviceDescriptor{Name: "CamX", Port: "usb:001,002"}

func demoLibrary(t *testing.T) *Library {
	t.Helper()
	fixture, err := Demo()
	require.NoError(t, err)
	return NewLibrary(fixture, zap.NewNop())
}

func TestDemoFixtureIsValid(t *testing.T) {
	fixture, err := Demo()
	require.NoError(t, err)
	require.Len(t, fixture.Devices, 2)
	assert.Equal(t, "CamX", fixture.Devices[0].Name)
	assert.Equal(t, 64, fixture.Devices[0].Preview.Width)
}

func TestParseRejectsInvalidFixture(t *testing.T) {
	_, err := Parse([]byte("devices:\n  - name: CamX\n"))
	assert.Error(t, err, "port is required")

	_, err = Parse([]byte("devices:\n  - name: A\n    port: p\n    config: {id: 0, name: main, type: dial}\n"))
	assert.Error(t, err, "unknown widget type")

	_, err = Parse([]byte("devices: ["))
	assert.Error(t, err)
}

func TestParseDefaultsPreviewSize(t *testing.T) {
	fixture, err := Parse([]byte("devices:\n  - name: A\n    port: p\n"))
	require.NoError(t, err)
	assert.Equal(t, 64, fixture.Devices[0].Preview.Width)
	assert.Equal(t, 48, fixture.Devices[0].Preview.Height)
}

func TestListDevices(t *testing.T) {
	lib := demoLibrary(t)

	devices, err := lib.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.DeviceDescriptor{
		camX,
		{Name: "CamY", Port: "usb:001,003"},
	}, devices)

	lib.SetFailList(true)
	_, err = lib.ListDevices(context.Background())
	assert.ErrorIs(t, err, ErrInjected)
}

func TestOpenIsExclusive(t *testing.T) {
	lib := demoLibrary(t)
	ctx := context.Background()

	s, err := lib.Open(ctx, camX)
	require.NoError(t, err)
	assert.True(t, lib.IsOpen(camX))

	_, err = lib.Open(ctx, camX)
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.False(t, lib.IsOpen(camX))

	_, err = s.About(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = lib.Open(ctx, types.DeviceDescriptor{Name: "CamX", Port: "usb:009,009"})
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestWriteConfigNode(t *testing.T) {
	lib := demoLibrary(t)
	ctx := context.Background()

	s, err := lib.Open(ctx, camX)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteConfigNode(ctx, device.Setting{Name: "iso", Kind: device.KindRadio, Choice: "400"}))
	require.NoError(t, s.WriteConfigNode(ctx, device.Setting{Name: "exposurecompensation", Kind: device.KindRange, Value: 9}))

	err = s.WriteConfigNode(ctx, device.Setting{Name: "serialnumber", Kind: device.KindText, Text: "x"})
	assert.Error(t, err, "read-only")
	err = s.WriteConfigNode(ctx, device.Setting{Name: "iso", Kind: device.KindText, Text: "x"})
	assert.Error(t, err, "kind mismatch")
	err = s.WriteConfigNode(ctx, device.Setting{Name: "nope", Kind: device.KindText})
	assert.ErrorIs(t, err, ErrNoSuchSetting)

	writes := lib.Writes(camX)
	require.Len(t, writes, 2)
	assert.Equal(t, "iso", writes[0].Name)

	root, err := s.ReadConfigTree(ctx)
	require.NoError(t, err)
	sections, err := root.Children()
	require.NoError(t, err)
	capture, err := sections[2].Children()
	require.NoError(t, err)

	choice, err := capture[0].Choice()
	require.NoError(t, err)
	assert.Equal(t, "400", choice)

	value, _, hi, _, err := capture[1].Range()
	require.NoError(t, err)
	assert.Equal(t, hi, value, "range writes are clamped")
}

func TestMenuAcceptsRadioSetting(t *testing.T) {
	lib := demoLibrary(t)
	ctx := context.Background()

	s, err := lib.Open(ctx, camX)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.WriteConfigNode(ctx, device.Setting{Name: "capturetarget", Kind: device.KindRadio, Choice: "Internal RAM"}))
}

func TestCapturePreview(t *testing.T) {
	lib := demoLibrary(t)
	ctx := context.Background()

	s, err := lib.Open(ctx, camX)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.CapturePreview(ctx)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestInjectedFailures(t *testing.T) {
	fixture, err := Parse([]byte(`
devices:
  - name: Broken
    port: "usb:1"
    preview: { corrupt: true }
    fail: { read_config: true, write: [iso] }
    config:
      id: 0
      name: main
      type: window
      children:
        - { id: 1, name: iso, type: radio, choices: ["100"], choice: "100" }
  - name: Dead
    port: "usb:2"
    fail: { open: true, capture: true }
`))
	require.NoError(t, err)
	lib := NewLibrary(fixture, zap.NewNop())
	ctx := context.Background()

	_, err = lib.Open(ctx, types.DeviceDescriptor{Name: "Dead", Port: "usb:2"})
	assert.ErrorIs(t, err, ErrInjected)

	s, err := lib.Open(ctx, types.DeviceDescriptor{Name: "Broken", Port: "usb:1"})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.ReadConfigTree(ctx)
	assert.ErrorIs(t, err, ErrInjected)

	err = s.WriteConfigNode(ctx, device.Setting{Name: "iso", Kind: device.KindRadio, Choice: "100"})
	assert.ErrorIs(t, err, ErrInjected)

	data, err := s.CapturePreview(ctx)
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestUnreadableWidgetField(t *testing.T) {
	w := NewWidget(WidgetSpec{ID: 3, Name: "iso", Type: "radio", Unreadable: []string{"choices"}})

	name, err := w.Name()
	require.NoError(t, err)
	assert.Equal(t, "iso", name)

	_, err = w.Choices()
	assert.ErrorIs(t, err, ErrInjected)

	_, err = w.Text()
	assert.Error(t, err, "text accessor on a radio")
}

func TestCanceledContext(t *testing.T) {
	lib := demoLibrary(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lib.ListDevices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
