package worker

import (
	"go.uber.org/zap"

	"github.com/KevinKickass/OpenCameraCore/internal/preview"
	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// capturePreview grabs and decodes one frame. Without a device it turns live
// view off. Capture and decode failures are reported and live view stays on.
// Only a failed send to the frontend is returned.
func (w *worker[F]) capturePreview() error {
	if w.state.Session == nil {
		w.state.LiveView = false
		w.logger.Info("Live view stopped, no device open")
		return w.out.send(Result[F]{Completion: w.sink.Stopped()})
	}

	ctx, cancel := w.state.CallContext()
	defer cancel()

	data, err := w.state.Session.CapturePreview(ctx)
	if err != nil {
		return w.out.send(Result[F]{Err: types.NewDeviceError("capture preview", err)})
	}

	frame, err := preview.Decode(data)
	if err != nil {
		return w.out.send(Result[F]{Err: err})
	}

	w.frames++
	frame.Seq = w.frames
	w.logger.Debug("Preview captured",
		zap.Uint64("seq", frame.Seq),
		zap.Int("bytes", len(data)))

	return w.out.send(Result[F]{Completion: w.sink.Installed(frame)})
}
