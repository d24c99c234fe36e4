package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/KevinKickass/OpenCameraCore/internal/api/rest"
	"github.com/KevinKickass/OpenCameraCore/internal/api/websocket"
	"github.com/KevinKickass/OpenCameraCore/internal/app"
	"github.com/KevinKickass/OpenCameraCore/internal/config"
	"github.com/KevinKickass/OpenCameraCore/internal/device"
	"github.com/KevinKickass/OpenCameraCore/internal/interfaces"
	"github.com/KevinKickass/OpenCameraCore/internal/settings"
)

// HealthService is the service name reported by the gRPC health server,
// next to the empty name for the whole process.
const HealthService = "opencameracore.Camera"

type LifecycleManager struct {
	config *config.Config
	logger *zap.Logger

	frontend   *app.App
	wsHub      *websocket.Hub
	restServer *rest.Server

	grpcServer   *grpc.Server
	healthServer *health.Server
	grpcAddr     net.Addr

	runCancel context.CancelFunc
	runDone   chan struct{}

	stateMu      sync.RWMutex
	currentState SystemState
	lastError    error

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error
}

func NewLifecycleManager(cfg *config.Config, lib device.Library, logger *zap.Logger) *LifecycleManager {
	frontend := app.New(lib, app.Options{
		TickInterval:    cfg.Frontend.TickInterval,
		AutoOpenFirst:   cfg.Frontend.AutoOpenFirst,
		StrictNames:     cfg.Settings.StrictNames,
		Exclusions:      settings.NewExclusions(cfg.Settings.Exclude),
		PreviewInterval: cfg.Worker.PreviewInterval,
		CallTimeout:     cfg.Worker.CallTimeout,
	}, logger.Named("frontend"))

	lm := &LifecycleManager{
		config:       cfg,
		logger:       logger,
		frontend:     frontend,
		wsHub:        websocket.NewHub(logger.Named("ws")),
		healthServer: health.NewServer(),
		currentState: StateInitializing,
		runDone:      make(chan struct{}),
		shutdownChan: make(chan struct{}),
	}

	lm.wsHub.SetSnapshotProvider(frontend)
	lm.wsHub.SetCommandHandler(lm.handleCommand)
	frontend.Subscribe(lm.wsHub.Listener())
	lm.setHealth(StateInitializing)

	return lm
}

func (lm *LifecycleManager) Config() *config.Config { return lm.config }

func (lm *LifecycleManager) Frontend() interfaces.Frontend { return lm.frontend }

// Done is closed once Shutdown has finished.
func (lm *LifecycleManager) Done() <-chan struct{} { return lm.shutdownChan }

// Start starts the entire system
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting OpenCameraCore")

	go lm.wsHub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	lm.runCancel = cancel
	go lm.runFrontend(ctx)

	if err := lm.startGRPCServer(); err != nil {
		lm.setError(fmt.Errorf("failed to start gRPC server: %w", err))
		return err
	}

	if err := lm.startRESTServer(); err != nil {
		lm.setError(fmt.Errorf("failed to start REST API: %w", err))
		return err
	}

	// Discover devices; the first one is opened if configured
	if err := lm.frontend.RefreshDevices(); err != nil {
		lm.setError(err)
		return fmt.Errorf("failed to start device discovery: %w", err)
	}

	lm.setState(StateRunning)
	lm.broadcastStatus()

	lm.logger.Info("System started successfully",
		zap.Int("http_port", lm.config.Server.HTTPPort),
		zap.String("device_backend", lm.config.Device.Backend))

	return nil
}

func (lm *LifecycleManager) runFrontend(ctx context.Context) {
	defer close(lm.runDone)

	if err := lm.frontend.Run(ctx); err != nil {
		lm.logger.Error("Device worker terminated", zap.Error(err))
		lm.setError(err)
		lm.broadcastStatus()
	}
}

func (lm *LifecycleManager) startGRPCServer() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", lm.config.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	lm.grpcAddr = lis.Addr()

	lm.grpcServer = grpc.NewServer()

	// Register Health Service
	healthpb.RegisterHealthServer(lm.grpcServer, lm.healthServer)

	go func() {
		lm.logger.Info("gRPC server listening",
			zap.String("address", lis.Addr().String()),
			zap.String("services", "grpc.health.v1.Health"))
		if err := lm.grpcServer.Serve(lis); err != nil {
			lm.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()

	return nil
}

// GRPCAddr is the address the health server listens on, nil before Start.
func (lm *LifecycleManager) GRPCAddr() net.Addr { return lm.grpcAddr }

func (lm *LifecycleManager) startRESTServer() error {
	lm.restServer = rest.NewServer(lm.config, lm, lm.logger.Named("rest"), lm.wsHub)
	return lm.restServer.Start()
}

// handleCommand runs commands sent by websocket clients.
func (lm *LifecycleManager) handleCommand(cmd websocket.Command) error {
	switch cmd.Type {
	case websocket.CommandRefreshDevices:
		return lm.frontend.RefreshDevices()
	case websocket.CommandReloadSettings:
		return lm.frontend.ReloadSettings()
	case websocket.CommandSetLiveView:
		return lm.frontend.SetLiveView(cmd.Enabled)
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")

		lm.setState(StateStopping)
		lm.broadcastStatus()

		lm.shutdownErr = lm.gracefulShutdown(ctx)

		lm.setState(StateStopped)
		close(lm.shutdownChan)
	})

	return lm.shutdownErr
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	var errs []error

	// 1. REST API first, no new requests reach the frontend
	if lm.restServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("rest api shutdown failed: %w", err))
		}
		cancel()
	}

	// 2. Frontend loop
	if lm.runCancel != nil {
		lm.runCancel()
		select {
		case <-lm.runDone:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("frontend loop did not stop: %w", ctx.Err()))
		}
	}

	// 3. Device worker, closes the open device
	if err := lm.frontend.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("device worker shutdown failed: %w", err))
	}

	// 4. WebSocket clients
	lm.wsHub.Stop()

	// 5. gRPC, health watchers see NOT_SERVING before the stream ends
	if lm.grpcServer != nil {
		lm.healthServer.Shutdown()
		stopped := make(chan struct{})
		go func() {
			lm.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			lm.grpcServer.Stop()
			errs = append(errs, fmt.Errorf("grpc shutdown failed: %w", ctx.Err()))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	lm.logger.Info("Graceful shutdown completed")
	return nil
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	lm.currentState = state
	lm.stateMu.Unlock()

	lm.setHealth(state)
}

func (lm *LifecycleManager) setError(err error) {
	lm.stateMu.Lock()
	lm.currentState = StateError
	lm.lastError = err
	lm.stateMu.Unlock()

	lm.setHealth(StateError)
}

// setHealth publishes the state to gRPC health checks. Only RUNNING serves.
func (lm *LifecycleManager) setHealth(state SystemState) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if state == StateRunning {
		status = healthpb.HealthCheckResponse_SERVING
	}
	lm.healthServer.SetServingStatus("", status)
	lm.healthServer.SetServingStatus(HealthService, status)
}

func (lm *LifecycleManager) broadcastStatus() {
	lm.wsHub.Broadcast(websocket.NewMessage(websocket.MessageTypeSystemStatus, lm.GetCurrentStatus()))
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	snap := lm.frontend.Snapshot()

	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()

	return interfaces.SystemStatus{
		State:      lm.currentState.String(),
		Devices:    len(snap.Devices),
		CameraOpen: snap.Camera != nil,
		LiveView:   snap.LiveView,
		Errors:     len(snap.Errors),
		Clients:    lm.wsHub.GetClientCount(),
	}
}
