package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

func TestMailboxTryRecv(t *testing.T) {
	m := newMailbox[int]()

	_, ok, err := m.tryRecv()
	assert.False(t, ok)
	assert.NoError(t, err, "empty but connected")

	require.NoError(t, m.send(1))
	require.NoError(t, m.send(2))
	m.close()

	v, ok, err := m.tryRecv()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, err = m.recv()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, _, err = m.tryRecv()
	assert.ErrorIs(t, err, types.ErrChannelClosed)
	_, err = m.recv()
	assert.ErrorIs(t, err, types.ErrChannelClosed)

	assert.ErrorIs(t, m.send(3), types.ErrSendFailed)
}

func TestMailboxRecvWakesOnSend(t *testing.T) {
	m := newMailbox[string]()
	got := make(chan string, 1)

	go func() {
		v, _ := m.recv()
		got <- v
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, m.send("hello"))

	select {
	case v := <-got:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("recv did not wake up")
	}
}

func TestMailboxDetach(t *testing.T) {
	m := newMailbox[int]()
	require.NoError(t, m.send(1))

	m.detach()
	assert.Empty(t, m.drain())
	assert.ErrorIs(t, m.send(2), types.ErrSendFailed)
}
