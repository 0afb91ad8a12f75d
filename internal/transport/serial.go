// internal/transport/serial.go
package transport

import (
	"context"
	"sync"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// SerialConfig configures the serial adapter. Framing is fixed at
// 8 data bits, 1 stop bit, no parity; only the baud rate varies.
type SerialConfig struct {
	Port     string
	BaudRate int
}

// SerialConnection implements Connection over an RS232/ttyUSB line.
type SerialConnection struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// NewSerialConnection creates a serial connection adapter.
func NewSerialConnection(config *SerialConfig, logger *zap.Logger) *SerialConnection {
	cfg := *config
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 9600
	}

	return &SerialConnection{
		config: &cfg,
		logger: logger.With(zap.String("transport", "serial")),
	}
}

// Open opens the configured port, or the first enumerated port when
// none is configured.
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.isOpen {
		return nil
	}

	portName := sc.config.Port
	if portName == "" {
		ports, err := serial.GetPortsList()
		if err != nil {
			return newError(ErrCapabilityUnavailable, "serial port enumeration is not available on this host", err)
		}
		if len(ports) == 0 {
			return newError(ErrNoDevice, "no serial port found", nil)
		}
		portName = ports[0]
	}

	sc.logger.Info("Opening serial port",
		zap.String("port", portName),
		zap.Int("baud_rate", sc.config.BaudRate),
	)

	mode := &serial.Mode{
		BaudRate: sc.config.BaudRate,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		sc.logger.Error("Failed to open serial port", zap.Error(err))
		return newError(ErrOpenFailed, "failed to open serial port "+portName, err)
	}

	sc.port = port
	sc.isOpen = true

	sc.logger.Info("Serial port opened", zap.String("port", portName))
	return nil
}

// Close releases the port handle. Safe to call when already closed.
func (sc *SerialConnection) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil
	}

	err := sc.port.Close()
	sc.port = nil
	sc.isOpen = false

	if err != nil {
		sc.logger.Error("Failed to close serial port", zap.Error(err))
		return newError(ErrOpenFailed, "failed to close serial port", err)
	}

	sc.logger.Info("Serial port closed")
	return nil
}

// IsOpen returns whether the port handle is held.
func (sc *SerialConnection) IsOpen() bool {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.isOpen && sc.port != nil
}

// Write sends data to the printer. The mutex makes the port an
// exclusively held writer for the duration of one write; concurrent
// writes to the same handle are unsafe.
func (sc *SerialConnection) Write(ctx context.Context, data []byte) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return newError(ErrOpenFailed, "serial port not open", nil)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := sc.port.Write(data)
	if err != nil {
		sc.logger.Error("Serial write failed", zap.Error(err))
		return newError(ErrWriteFailed, "serial write failed", err)
	}
	if n != len(data) {
		return newError(ErrWriteFailed, "incomplete serial write", nil)
	}

	sc.logger.Debug("Serial write completed", zap.Int("bytes", n))
	return nil
}

// Type returns the connection type.
func (sc *SerialConnection) Type() ConnectionType {
	return ConnectionSerial
}
