// internal/transport/usb.go
package transport

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/gousb"
	"go.uber.org/zap"
)

// DefaultVendorAllowList covers the thermal printer vendors the service
// recognizes out of the box. It is data, not branching: deployments can
// extend it through configuration.
var DefaultVendorAllowList = []uint16{
	0x04B8, // Seiko Epson
	0x0519, // Star Micronics
	0x1504, // Bixolon
	0x0DD4, // Custom Engineering
	0x1D90, // Citizen
	0x0416, // Winbond (generic 58mm printers)
	0x0483, // STMicroelectronics (generic boards)
	0x20D1, // Rongta
}

// USBConfig configures the USB adapter.
type USBConfig struct {
	// VendorAllowList filters device enumeration; empty means the
	// default thermal-printer vendor list.
	VendorAllowList []uint16
	// Endpoint forces a bulk OUT endpoint number; 0 means autodetect.
	Endpoint int
}

// USBConnection implements Connection over a USB bulk OUT endpoint.
type USBConnection struct {
	config   *USBConfig
	ctx      *gousb.Context
	device   *gousb.Device
	cfg      *gousb.Config
	intf     *gousb.Interface
	outEndpt *gousb.OutEndpoint
	logger   *zap.Logger
	mutex    sync.Mutex
	isOpen   bool
}

// NewUSBConnection creates a USB connection adapter.
func NewUSBConnection(config *USBConfig, logger *zap.Logger) *USBConnection {
	cfg := *config
	if len(cfg.VendorAllowList) == 0 {
		cfg.VendorAllowList = DefaultVendorAllowList
	}

	return &USBConnection{
		config: &cfg,
		logger: logger.With(zap.String("transport", "usb")),
	}
}

// Open finds the first allow-listed device, claims interface 0 and
// resolves the bulk OUT endpoint.
func (uc *USBConnection) Open(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.isOpen {
		return nil
	}

	uc.ctx = gousb.NewContext()

	device, err := uc.findDevice()
	if err != nil {
		uc.ctx.Close()
		uc.ctx = nil
		return err
	}

	if runtime.GOOS == "linux" {
		if err := device.SetAutoDetach(true); err != nil {
			uc.logger.Warn("Failed to enable kernel driver auto-detach, claim may fail",
				zap.Error(err),
			)
		}
	}

	if err := uc.claimEndpoint(device); err != nil {
		device.Close()
		uc.ctx.Close()
		uc.ctx = nil
		return err
	}

	uc.device = device
	uc.isOpen = true

	uc.logger.Info("USB printer opened",
		zap.String("vendor", uc.device.Desc.Vendor.String()),
		zap.String("product", uc.device.Desc.Product.String()),
	)
	return nil
}

// findDevice opens the first device whose vendor ID is allow-listed.
func (uc *USBConnection) findDevice() (*gousb.Device, error) {
	allowed := make(map[gousb.ID]bool, len(uc.config.VendorAllowList))
	for _, vid := range uc.config.VendorAllowList {
		allowed[gousb.ID(vid)] = true
	}

	devices, err := uc.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return allowed[desc.Vendor]
	})
	if err != nil && len(devices) == 0 {
		return nil, newError(ErrCapabilityUnavailable, "USB enumeration failed on this host", err)
	}

	if len(devices) == 0 {
		return nil, newError(ErrNoDevice, "no thermal printer matched the USB vendor allow-list", nil)
	}

	if len(devices) > 1 {
		for _, extra := range devices[1:] {
			extra.Close()
		}
		uc.logger.Warn("Multiple matching USB printers found, using first one")
	}

	return devices[0], nil
}

// claimEndpoint selects the first configuration when the device has
// none active, claims interface 0 and locates the first bulk OUT
// endpoint across all interfaces and alternates. Endpoint 1 is the
// documented fallback when no bulk OUT descriptor is found.
func (uc *USBConnection) claimEndpoint(device *gousb.Device) error {
	cfgNum, err := device.ActiveConfigNum()
	if err != nil || cfgNum == 0 {
		cfgNum = 1
	}

	cfg, err := device.Config(cfgNum)
	if err != nil {
		return newError(ErrOpenFailed, "failed to select USB configuration", err)
	}

	ifaceNum, altNum, epNum := 0, 0, 0
	for _, iface := range cfg.Desc.Interfaces {
		for _, alt := range iface.AltSettings {
			for _, ep := range alt.Endpoints {
				if ep.Direction == gousb.EndpointDirectionOut && ep.TransferType == gousb.TransferTypeBulk {
					ifaceNum, altNum, epNum = iface.Number, alt.Alternate, ep.Number
					break
				}
			}
			if epNum != 0 {
				break
			}
		}
		if epNum != 0 {
			break
		}
	}

	if epNum == 0 {
		if uc.config.Endpoint != 0 {
			epNum = uc.config.Endpoint
		} else {
			epNum = 1
		}
		ifaceNum, altNum = 0, 0
		uc.logger.Warn("No bulk OUT endpoint descriptor found, falling back",
			zap.Int("endpoint", epNum),
		)
	}

	intf, err := cfg.Interface(ifaceNum, altNum)
	if err != nil {
		cfg.Close()
		return newError(ErrOpenFailed, "failed to claim USB interface", err)
	}

	outEndpt, err := intf.OutEndpoint(epNum)
	if err != nil {
		intf.Close()
		cfg.Close()
		return newError(ErrOpenFailed, "failed to open bulk OUT endpoint", err)
	}

	uc.cfg = cfg
	uc.intf = intf
	uc.outEndpt = outEndpt
	return nil
}

// Close releases interface, configuration, device and context.
// Safe to call when already closed.
func (uc *USBConnection) Close() error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen {
		return nil
	}

	if uc.intf != nil {
		uc.intf.Close()
		uc.intf = nil
	}
	if uc.cfg != nil {
		uc.cfg.Close()
		uc.cfg = nil
	}
	if uc.device != nil {
		uc.device.Close()
		uc.device = nil
	}
	if uc.ctx != nil {
		uc.ctx.Close()
		uc.ctx = nil
	}

	uc.outEndpt = nil
	uc.isOpen = false

	uc.logger.Info("USB printer closed")
	return nil
}

// IsOpen returns whether the device handle is held.
func (uc *USBConnection) IsOpen() bool {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()
	return uc.isOpen && uc.outEndpt != nil
}

// Write transfers data over the bulk OUT endpoint. The mutex keeps the
// endpoint exclusively held for the duration of one transfer.
func (uc *USBConnection) Write(ctx context.Context, data []byte) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen || uc.outEndpt == nil {
		return newError(ErrOpenFailed, "USB device not open", nil)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := uc.outEndpt.Write(data)
	if err != nil {
		uc.logger.Error("USB bulk transfer failed", zap.Error(err))
		return newError(ErrWriteFailed, "USB bulk transfer failed", err)
	}
	if n != len(data) {
		return newError(ErrWriteFailed, "incomplete USB transfer", nil)
	}

	uc.logger.Debug("USB transfer completed", zap.Int("bytes", n))
	return nil
}

// Type returns the connection type.
func (uc *USBConnection) Type() ConnectionType {
	return ConnectionUSB
}
