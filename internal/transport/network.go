// internal/transport/network.go
package transport

import (
	"context"

	"go.uber.org/zap"
)

// NetworkConfig configures the network adapter placeholder.
type NetworkConfig struct {
	Host string
	Port int
}

// NetworkConnection is a declared but unimplemented placeholder for
// TCP/IP printing. Direct socket access to LAN printers needs a backend
// proxy the deployment does not ship yet; every operation reports that
// explicitly instead of half-working. Filling it in as a JetDirect
// (port 9100) client is the obvious extension point.
type NetworkConnection struct {
	config *NetworkConfig
	logger *zap.Logger
}

// NewNetworkConnection creates the placeholder adapter.
func NewNetworkConnection(config *NetworkConfig, logger *zap.Logger) *NetworkConnection {
	return &NetworkConnection{
		config: config,
		logger: logger.With(zap.String("transport", "network")),
	}
}

// Open always fails: network printing is intentionally out of scope.
func (nc *NetworkConnection) Open(ctx context.Context) error {
	nc.logger.Warn("Network printing requested but not implemented")
	return newError(ErrNotImplemented, "network printing requires a backend proxy", nil)
}

// Close is a no-op; no handle is ever acquired.
func (nc *NetworkConnection) Close() error {
	return nil
}

// IsOpen always reports false.
func (nc *NetworkConnection) IsOpen() bool {
	return false
}

// Write always fails; see Open.
func (nc *NetworkConnection) Write(ctx context.Context, data []byte) error {
	return newError(ErrNotImplemented, "network printing requires a backend proxy", nil)
}

// Type returns the connection type.
func (nc *NetworkConnection) Type() ConnectionType {
	return ConnectionNetwork
}
