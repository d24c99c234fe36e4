package worker

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// DefaultPreviewInterval is the pause after each preview capture.
const DefaultPreviewInterval = 20 * time.Millisecond

type worker[F any] struct {
	state    State
	in       *mailbox[envelope]
	out      *mailbox[Result[F]]
	sink     PreviewSink[F]
	interval time.Duration
	logger   *zap.Logger
	frames   uint64
}

// run is the worker loop. It returns nil after a Shutdown and
// ErrChannelClosed when the frontend disappeared without one.
func (w *worker[F]) run() error {
	defer w.out.close()
	defer func() {
		if err := w.state.CloseSession(); err != nil {
			w.logger.Warn("Failed to close device on exit", zap.Error(err))
		}
	}()

	w.logger.Info("Worker started", zap.Duration("preview_interval", w.interval))

	for {
		env, err := w.next()
		if err != nil {
			return w.fatal(err)
		}
		if env == nil {
			continue
		}

		switch msg := env.msg.(type) {
		case Shutdown:
			w.logger.Info("Worker stopped")
			return nil

		case SetLiveView:
			w.state.LiveView = msg.Enabled
			w.logger.Debug("Live view switched", zap.Bool("enabled", msg.Enabled))

		case Order[F]:
			if err := w.out.send(w.execute(env.id, msg)); err != nil {
				return w.fatal(types.ErrChannelClosed)
			}

		default:
			w.logger.Error("Dropping unknown message",
				zap.String("order_id", env.id.String()),
				zap.String("type", fmt.Sprintf("%T", msg)))
		}
	}
}

// next blocks for an order while live view is off. With live view on it
// captures a preview whenever no order is waiting and returns nil.
func (w *worker[F]) next() (*envelope, error) {
	if !w.state.LiveView {
		env, err := w.in.recv()
		if err != nil {
			return nil, err
		}
		return &env, nil
	}

	env, ok, err := w.in.tryRecv()
	if err != nil {
		return nil, err
	}
	if ok {
		return &env, nil
	}

	if err := w.capturePreview(); err != nil {
		return nil, err
	}
	time.Sleep(w.interval)
	return nil, nil
}

// execute runs one order. Failures and panics become an error result.
func (w *worker[F]) execute(id uuid.UUID, order Order[F]) (res Result[F]) {
	res.OrderID = id
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Completion = nil
			res.Err = fmt.Errorf("order panicked: %v", r)
		}
		if res.Err != nil {
			w.logger.Warn("Order failed",
				zap.String("order_id", id.String()),
				zap.String("title", types.Title(res.Err)),
				zap.Error(res.Err))
			return
		}
		w.logger.Debug("Order executed",
			zap.String("order_id", id.String()),
			zap.Duration("took", time.Since(start)))
	}()

	completion, err := order.Execute(&w.state)
	if err != nil {
		return Result[F]{OrderID: id, Err: err}
	}
	return Result[F]{OrderID: id, Completion: completion}
}

func (w *worker[F]) fatal(err error) error {
	if !errors.Is(err, types.ErrChannelClosed) {
		err = fmt.Errorf("%w: %v", types.ErrChannelClosed, err)
	}
	// The frontend may still be listening even though it stopped sending.
	_ = w.out.send(Result[F]{Err: err})
	w.logger.Error("Worker channel closed", zap.Error(err))
	return err
}
