// internal/transport/service.go
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"print-service/internal/receipt"
)

// Config selects and parametrizes the active connection type.
type Config struct {
	ConnectionType ConnectionType
	Serial         SerialConfig
	USB            USBConfig
	Network        NetworkConfig
}

// StatusInfo is a state-transition snapshot for status consumers.
type StatusInfo struct {
	State          string    `json:"state"`
	ConnectionType string    `json:"connection_type"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

// StateListener receives state transitions. Listeners run on the
// calling goroutine and must not call back into the service.
type StateListener func(StatusInfo)

// ConnectionFactory builds the adapter for a connection type.
// Overridable for tests.
type ConnectionFactory func(cfg *Config, logger *zap.Logger) (Connection, error)

// Service owns the printer connection lifecycle and dispatches built
// receipt buffers to the active adapter. One Service holds at most one
// handle; switching connection types requires an explicit Disconnect
// first (caller responsibility, not enforced).
type Service struct {
	config   *Config
	logger   *zap.Logger
	probe    CapabilityProbe
	renderer Renderer
	factory  ConnectionFactory

	mutex    sync.Mutex
	conn     Connection
	state    State
	listener StateListener
}

// NewService creates a transport service with host-backed probe,
// renderer and adapter factory.
func NewService(config *Config, logger *zap.Logger) *Service {
	return &Service{
		config:   config,
		logger:   logger.With(zap.String("component", "transport")),
		probe:    hostProbe{},
		renderer: NewSpoolRenderer(logger),
		factory:  defaultFactory,
		state:    StateDisconnected,
	}
}

// SetProbe replaces the capability probe.
func (s *Service) SetProbe(probe CapabilityProbe) {
	s.probe = probe
}

// SetRenderer replaces the fallback renderer.
func (s *Service) SetRenderer(renderer Renderer) {
	s.renderer = renderer
}

// SetFactory replaces the connection factory.
func (s *Service) SetFactory(factory ConnectionFactory) {
	s.factory = factory
}

// SetStateListener registers the state-transition listener.
func (s *Service) SetStateListener(listener StateListener) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.listener = listener
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Status returns a snapshot for the API surface.
func (s *Service) Status() StatusInfo {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.statusLocked("")
}

func (s *Service) statusLocked(message string) StatusInfo {
	return StatusInfo{
		State:          s.state.String(),
		ConnectionType: string(s.config.ConnectionType),
		Message:        message,
		Timestamp:      time.Now(),
	}
}

func (s *Service) setStateLocked(state State, message string) {
	s.state = state
	if s.listener != nil {
		s.listener(s.statusLocked(message))
	}
}

// Connect acquires the hardware handle for the configured connection
// type. On failure the service returns to Disconnected and the result
// carries the failure category.
func (s *Service) Connect(ctx context.Context) *PrintResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.config.ConnectionType == ConnectionFallback {
		return successResult("fallback rendering needs no connection")
	}

	if s.conn != nil && s.conn.IsOpen() {
		return successResult("printer already connected")
	}

	s.setStateLocked(StateConnecting, "connecting to printer")

	if result := s.checkCapability(); result != nil {
		s.setStateLocked(StateDisconnected, result.Message)
		return result
	}

	conn, err := s.factory(s.config, s.logger)
	if err != nil {
		s.setStateLocked(StateDisconnected, err.Error())
		return resultFromError(err, "failed to create printer connection")
	}

	if err := conn.Open(ctx); err != nil {
		s.logger.Error("Printer connection failed",
			zap.String("connection_type", string(s.config.ConnectionType)),
			zap.Error(err),
		)
		s.setStateLocked(StateDisconnected, err.Error())
		return resultFromError(err, "failed to open printer connection")
	}

	s.conn = conn
	s.setStateLocked(StateConnected, "printer connected")

	s.logger.Info("Printer connected",
		zap.String("connection_type", string(s.config.ConnectionType)),
	)
	return successResult("printer connected over " + string(s.config.ConnectionType))
}

// checkCapability consults the probe for the configured type; nil means
// the capability is present.
func (s *Service) checkCapability() *PrintResult {
	switch s.config.ConnectionType {
	case ConnectionSerial:
		if !s.probe.HasSerial() {
			return failureResult(ErrCapabilityUnavailable, "serial hardware API is not available on this host", nil)
		}
	case ConnectionUSB:
		if !s.probe.HasUSB() {
			return failureResult(ErrCapabilityUnavailable, "USB hardware API is not available on this host", nil)
		}
	}
	return nil
}

// Disconnect releases the handle. Idempotent: disconnecting an already
// disconnected service succeeds without error.
func (s *Service) Disconnect() *PrintResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.conn == nil {
		if s.state != StateDisconnected {
			s.setStateLocked(StateDisconnected, "disconnected")
		}
		return successResult("printer already disconnected")
	}

	if err := s.conn.Close(); err != nil {
		s.logger.Error("Error while closing printer connection", zap.Error(err))
	}

	s.conn = nil
	s.setStateLocked(StateDisconnected, "disconnected")

	s.logger.Info("Printer disconnected")
	return successResult("printer disconnected")
}

// Print writes a built buffer to the active connection. A write failure
// leaves the connection open: one failed transfer does not mean the
// handle is dead.
func (s *Service) Print(ctx context.Context, data []byte) *PrintResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.config.ConnectionType == ConnectionFallback {
		return failureResult(ErrNotImplemented, "the fallback transport prints from sale records, not raw bytes", nil)
	}

	if s.conn == nil || !s.conn.IsOpen() {
		return failureResult(ErrNoDevice, "printer is not connected", nil)
	}

	s.setStateLocked(StatePrinting, fmt.Sprintf("printing %d bytes", len(data)))

	err := s.conn.Write(ctx, data)
	s.setStateLocked(StateConnected, "print finished")

	if err != nil {
		s.logger.Error("Print failed", zap.Int("bytes", len(data)), zap.Error(err))
		return resultFromError(err, "failed to write to printer")
	}

	s.logger.Info("Print completed", zap.Int("bytes", len(data)))
	return successResult(fmt.Sprintf("sent %d bytes to printer", len(data)))
}

// PrintReceipt is the one externally callable print operation: it
// builds the receipt buffer for a sale and delivers it. The fallback
// type skips the byte path and hands the sale to the host renderer.
// For hardware types the service auto-connects when no handle exists;
// a connection failure is propagated without attempting to print.
func (s *Service) PrintReceipt(ctx context.Context, sale *receipt.Sale, opts *receipt.Options) *PrintResult {
	if s.config.ConnectionType == ConnectionFallback {
		if err := s.renderer.Print(ctx, sale, opts); err != nil {
			return resultFromError(err, "fallback rendering failed")
		}
		// The host print facility's own outcome is not observable
		return successResult("receipt handed to host print facility")
	}

	if s.needsConnect() {
		if result := s.Connect(ctx); !result.Success {
			return result
		}
	}

	data := receipt.FromSale(sale, opts).Build()
	return s.Print(ctx, data)
}

func (s *Service) needsConnect() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.conn == nil || !s.conn.IsOpen()
}

// Close tears the service down, releasing any held handle.
func (s *Service) Close() error {
	result := s.Disconnect()
	if !result.Success {
		return fmt.Errorf("disconnect failed: %s", result.Message)
	}
	return nil
}

// defaultFactory builds the real hardware adapters.
func defaultFactory(cfg *Config, logger *zap.Logger) (Connection, error) {
	switch cfg.ConnectionType {
	case ConnectionSerial:
		return NewSerialConnection(&cfg.Serial, logger), nil
	case ConnectionUSB:
		return NewUSBConnection(&cfg.USB, logger), nil
	case ConnectionNetwork:
		return NewNetworkConnection(&cfg.Network, logger), nil
	default:
		return nil, fmt.Errorf("unsupported connection type: %s", cfg.ConnectionType)
	}
}
