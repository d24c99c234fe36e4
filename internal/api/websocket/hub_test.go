package websocket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/app"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

type staticSnapshot struct{}

func (staticSnapshot) Snapshot() app.Snapshot {
	return app.Snapshot{Devices: []types.DeviceDescriptor{{Name: "CamX", Port: "usb:001,002"}}}
}

func startHub(t *testing.T, handler CommandHandler) (*Hub, *websocket.Conn) {
	t.Helper()

	hub := NewHub(zap.NewNop())
	hub.SetSnapshotProvider(staticSnapshot{})
	hub.SetCommandHandler(handler)
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return hub, conn
}

type received struct {
	Type MessageType    `json:"type"`
	Data map[string]any `json:"data"`
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestClientReceivesSnapshotThenEvents(t *testing.T) {
	hub, conn := startHub(t, nil)

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.Len(t, msg.Data["devices"], 1)
	assert.Equal(t, 1, hub.GetClientCount())

	hub.Listener()(app.NewEvent(app.EventLiveView, app.LiveViewInfo{Enabled: true}))

	msg = readMessage(t, conn)
	assert.Equal(t, MessageTypeLiveView, msg.Type)
	assert.Equal(t, true, msg.Data["enabled"])
}

func TestClientCommands(t *testing.T) {
	commands := make(chan Command, 1)
	_, conn := startHub(t, func(cmd Command) error {
		if cmd.Type == "bogus" {
			return errors.New("unknown command")
		}
		commands <- cmd
		return nil
	})
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandSetLiveView, Enabled: true}))
	select {
	case cmd := <-commands:
		assert.Equal(t, CommandSetLiveView, cmd.Type)
		assert.True(t, cmd.Enabled)
	case <-time.After(2 * time.Second):
		t.Fatal("command not delivered")
	}

	require.NoError(t, conn.WriteJSON(Command{Type: "bogus"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, "unknown command", msg.Data["message"])
}

func TestStopDisconnectsClients(t *testing.T) {
	hub, conn := startHub(t, nil)
	readMessage(t, conn)

	hub.Stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
