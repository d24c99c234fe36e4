package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/device"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

type options struct {
	logger          *zap.Logger
	previewInterval time.Duration
	callTimeout     time.Duration
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPreviewInterval sets the pause after each live-view capture.
func WithPreviewInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.previewInterval = d
		}
	}
}

// WithCallTimeout bounds each device call made through State.CallContext.
// Zero means no timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) { o.callTimeout = d }
}

// Handle is the frontend side of a running worker. Submit, SetLiveView and
// Drain never block.
type Handle[F any] struct {
	in     *mailbox[envelope]
	out    *mailbox[Result[F]]
	logger *zap.Logger

	done chan struct{}
	err  error

	shutdownOnce sync.Once
	shutdownErr  error
}

// Start spawns the worker goroutine. sink must not be nil.
func Start[F any](lib device.Library, sink PreviewSink[F], opts ...Option) *Handle[F] {
	o := options{
		logger:          zap.NewNop(),
		previewInterval: DefaultPreviewInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Handle[F]{
		in:     newMailbox[envelope](),
		out:    newMailbox[Result[F]](),
		logger: o.logger,
		done:   make(chan struct{}),
	}

	w := &worker[F]{
		state: State{
			Library:     lib,
			callTimeout: o.callTimeout,
			logger:      o.logger,
		},
		in:       h.in,
		out:      h.out,
		sink:     sink,
		interval: o.previewInterval,
		logger:   o.logger,
	}

	go h.supervise(w)

	return h
}

func (h *Handle[F]) supervise(w *worker[F]) {
	defer close(h.done)
	defer h.in.detach()
	defer func() {
		if r := recover(); r != nil {
			h.err = &types.JoinError{Err: fmt.Errorf("worker panicked: %v", r)}
			h.logger.Error("Worker panicked", zap.Any("panic", r))
		}
	}()

	h.err = w.run()
}

// Submit queues an order and returns its id. Results for the order carry
// the same id.
func (h *Handle[F]) Submit(order Order[F]) (uuid.UUID, error) {
	id := uuid.New()
	if err := h.in.send(envelope{id: id, msg: order}); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (h *Handle[F]) SetLiveView(enabled bool) error {
	return h.in.send(envelope{msg: SetLiveView{Enabled: enabled}})
}

// Drain returns every result received so far, in arrival order.
func (h *Handle[F]) Drain() []Result[F] {
	return h.out.drain()
}

// Shutdown stops the worker and waits for it to exit. Queued orders are
// dropped. Only the first call does any work; later calls return its result.
func (h *Handle[F]) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		if err := h.in.send(envelope{msg: Shutdown{}}); err != nil {
			h.logger.Debug("Worker already terminated")
		}
		h.in.close()

		select {
		case <-h.done:
			if joinErr, ok := h.err.(*types.JoinError); ok {
				h.shutdownErr = joinErr
			}
		case <-ctx.Done():
			h.shutdownErr = &types.JoinError{Err: ctx.Err()}
		}
	})
	return h.shutdownErr
}

// Done is closed once the worker goroutine has exited.
func (h *Handle[F]) Done() <-chan struct{} {
	return h.done
}

// Err returns why the worker exited, or nil while it runs or after a clean shutdown.
func (h *Handle[F]) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}
