package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/device/sim"
	"github.com/KevinKickass/OpenCameraCore/internal/preview"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

type frontend struct {
	log      []int
	frames   []*preview.Frame
	errs     []error
	liveView bool
	stops    int
}

type testSink struct{}

func (testSink) Installed(frame *preview.Frame) Completion[frontend] {
	return func(f *frontend) { f.frames = append(f.frames, frame) }
}

func (testSink) Stopped() Completion[frontend] {
	return func(f *frontend) {
		f.liveView = false
		f.stops++
	}
}

var camX = types.DeviceDescriptor{Name: "CamX", Port: "usb:001,002"}

func start(t *testing.T, lib *sim.Library, opts ...Option) *Handle[frontend] {
	t.Helper()
	opts = append([]Option{WithLogger(zap.NewNop()), WithPreviewInterval(5 * time.Millisecond)}, opts...)
	h := Start[frontend](lib, testSink{}, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})
	return h
}

func demoLibrary(t *testing.T, mutate ...func(*sim.Fixture)) *sim.Library {
	t.Helper()
	fixture, err := sim.Demo()
	require.NoError(t, err)
	for _, m := range mutate {
		m(fixture)
	}
	return sim.NewLibrary(fixture, zap.NewNop())
}

// pump drains results into f until cond holds.
func pump(t *testing.T, h *Handle[frontend], f *frontend, results *[]Result[frontend], cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, r := range h.Drain() {
			*results = append(*results, r)
			if r.Err != nil {
				f.errs = append(f.errs, r.Err)
			}
			r.Apply(f)
		}
		return cond()
	}, 2*time.Second, 5*time.Millisecond)
}

func tagged(i int) Order[frontend] {
	return OrderFunc[frontend](func(*State) (Completion[frontend], error) {
		return func(f *frontend) { f.log = append(f.log, i) }, nil
	})
}

func openOrder(desc types.DeviceDescriptor) Order[frontend] {
	return OrderFunc[frontend](func(s *State) (Completion[frontend], error) {
		ctx, cancel := s.CallContext()
		defer cancel()
		session, err := s.Library.Open(ctx, desc)
		if err != nil {
			return nil, types.NewDeviceError("open", err)
		}
		s.Session = session
		s.Descriptor = &desc
		return nil, nil
	})
}

func TestOrdersCompleteInSubmissionOrder(t *testing.T) {
	h := start(t, demoLibrary(t))

	const n = 100
	var ids []uuid.UUID
	for i := 0; i < n; i++ {
		id, err := h.Submit(tagged(i))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	var (
		f       frontend
		results []Result[frontend]
	)
	pump(t, h, &f, &results, func() bool { return len(results) == n })

	expected := make([]int, n)
	for i := range expected {
		expected[i] = i
		assert.Equal(t, ids[i], results[i].OrderID)
	}
	assert.Equal(t, expected, f.log)
}

func TestFailingOrderDoesNotStopWorker(t *testing.T) {
	h := start(t, demoLibrary(t))
	boom := errors.New("boom")

	failID, err := h.Submit(OrderFunc[frontend](func(*State) (Completion[frontend], error) {
		return nil, boom
	}))
	require.NoError(t, err)
	_, err = h.Submit(OrderFunc[frontend](func(*State) (Completion[frontend], error) {
		panic("order bug")
	}))
	require.NoError(t, err)
	_, err = h.Submit(tagged(1))
	require.NoError(t, err)

	var (
		f       frontend
		results []Result[frontend]
	)
	pump(t, h, &f, &results, func() bool { return len(results) == 3 })

	assert.Equal(t, failID, results[0].OrderID)
	assert.ErrorIs(t, results[0].Err, boom)
	assert.ErrorContains(t, results[1].Err, "order bug")
	assert.NoError(t, results[2].Err)
	assert.Equal(t, []int{1}, f.log)
	assert.NoError(t, h.Err())
}

func TestLiveViewWithoutDeviceStopsOnce(t *testing.T) {
	h := start(t, demoLibrary(t))

	f := frontend{liveView: true}
	require.NoError(t, h.SetLiveView(true))

	var results []Result[frontend]
	pump(t, h, &f, &results, func() bool { return f.stops == 1 })

	// Give a runaway loop time to emit more.
	time.Sleep(50 * time.Millisecond)
	for _, r := range h.Drain() {
		r.Apply(&f)
	}

	assert.Equal(t, 1, f.stops)
	assert.False(t, f.liveView)
	assert.Empty(t, f.errs)

	_, err := h.Submit(tagged(7))
	require.NoError(t, err, "worker is still alive")
	pump(t, h, &f, &results, func() bool { return len(f.log) == 1 })
}

func TestLiveViewCapturesFrames(t *testing.T) {
	lib := demoLibrary(t)
	h := start(t, lib)

	_, err := h.Submit(openOrder(camX))
	require.NoError(t, err)
	require.NoError(t, h.SetLiveView(true))

	var (
		f       frontend
		results []Result[frontend]
	)
	pump(t, h, &f, &results, func() bool { return len(f.frames) >= 3 })

	assert.Empty(t, f.errs)
	assert.Equal(t, uint64(1), f.frames[0].Seq)
	assert.Less(t, f.frames[0].Seq, f.frames[2].Seq)
	assert.Equal(t, 64, f.frames[0].Width())

	// Orders still get through while previews stream.
	_, err = h.Submit(tagged(3))
	require.NoError(t, err)
	pump(t, h, &f, &results, func() bool { return len(f.log) == 1 })

	require.NoError(t, h.Shutdown(context.Background()))
	assert.False(t, lib.IsOpen(camX), "session is closed when the worker exits")
}

func TestPreviewFailuresKeepLiveViewOn(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*sim.Fixture)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "corrupt frame",
			mutate: func(fx *sim.Fixture) { fx.Devices[0].Preview.Corrupt = true },
			check: func(t *testing.T, err error) {
				var decodeErr *types.DecodeError
				assert.ErrorAs(t, err, &decodeErr)
			},
		},
		{
			name:   "capture failure",
			mutate: func(fx *sim.Fixture) { fx.Devices[0].Fail.Capture = true },
			check: func(t *testing.T, err error) {
				var devErr *types.DeviceError
				assert.ErrorAs(t, err, &devErr)
				assert.ErrorIs(t, err, sim.ErrInjected)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := start(t, demoLibrary(t, tt.mutate))

			_, err := h.Submit(openOrder(camX))
			require.NoError(t, err)
			require.NoError(t, h.SetLiveView(true))

			var (
				f       frontend
				results []Result[frontend]
			)
			pump(t, h, &f, &results, func() bool { return len(f.errs) >= 2 })

			tt.check(t, f.errs[0])
			assert.Equal(t, uuid.Nil, results[len(results)-1].OrderID)
			assert.Zero(t, f.stops)
		})
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	h := start(t, demoLibrary(t))

	require.NoError(t, h.Shutdown(context.Background()))
	require.NoError(t, h.Shutdown(context.Background()))

	select {
	case <-h.Done():
	default:
		t.Fatal("worker still running after shutdown")
	}
	assert.NoError(t, h.Err())

	_, err := h.Submit(tagged(1))
	assert.ErrorIs(t, err, types.ErrSendFailed)
	assert.ErrorIs(t, h.SetLiveView(true), types.ErrSendFailed)
	assert.Equal(t, "Threading Error", types.Title(err))
}

func TestConcurrentShutdown(t *testing.T) {
	h := start(t, demoLibrary(t))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.Shutdown(context.Background()))
		}()
	}
	wg.Wait()
}

func TestShutdownTimesOut(t *testing.T) {
	h := start(t, demoLibrary(t))

	release := make(chan struct{})
	_, err := h.Submit(OrderFunc[frontend](func(*State) (Completion[frontend], error) {
		<-release
		return nil, nil
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = h.Shutdown(ctx)
	var joinErr *types.JoinError
	require.ErrorAs(t, err, &joinErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-h.Done()
	assert.Same(t, err, h.Shutdown(context.Background()), "later calls return the first result")
}

func TestCallTimeout(t *testing.T) {
	h := start(t, demoLibrary(t), WithCallTimeout(time.Minute))

	var hasDeadline bool
	_, err := h.Submit(OrderFunc[frontend](func(s *State) (Completion[frontend], error) {
		ctx, cancel := s.CallContext()
		defer cancel()
		_, hasDeadline = ctx.Deadline()
		return nil, nil
	}))
	require.NoError(t, err)

	var (
		f       frontend
		results []Result[frontend]
	)
	pump(t, h, &f, &results, func() bool { return len(results) == 1 })
	assert.True(t, hasDeadline)
}

func TestClosedInputEndsWorker(t *testing.T) {
	w := &worker[frontend]{
		in:       newMailbox[envelope](),
		out:      newMailbox[Result[frontend]](),
		sink:     testSink{},
		interval: time.Millisecond,
		logger:   zap.NewNop(),
	}
	w.state.logger = w.logger

	require.NoError(t, w.in.send(envelope{msg: Order[frontend](tagged(1))}))
	w.in.close()

	var err error
	require.NotPanics(t, func() { err = w.run() })
	assert.ErrorIs(t, err, types.ErrChannelClosed)

	results := w.out.drain()
	require.Len(t, results, 2, "queued order still runs, then the fatal error is reported")
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, types.ErrChannelClosed)
}

func TestClosedInputDuringLiveView(t *testing.T) {
	w := &worker[frontend]{
		in:       newMailbox[envelope](),
		out:      newMailbox[Result[frontend]](),
		sink:     testSink{},
		interval: time.Millisecond,
		logger:   zap.NewNop(),
	}
	w.state.logger = w.logger
	w.state.LiveView = true
	w.in.close()

	assert.ErrorIs(t, w.run(), types.ErrChannelClosed)
}
