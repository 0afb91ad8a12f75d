// internal/config/config.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"print-service/internal/escpos"
	"print-service/internal/transport"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Printer  PrinterConfig  `mapstructure:"printer"`
	Receipt  ReceiptConfig  `mapstructure:"receipt"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig represents the optional print-job history store.
// An empty DSN disables history entirely.
type DatabaseConfig struct {
	DSN            string `mapstructure:"dsn"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PrinterConfig selects and parametrizes the printer transport
type PrinterConfig struct {
	ConnectionType string              `mapstructure:"connection_type"`
	PaperSize      string              `mapstructure:"paper_size"`
	Serial         SerialPortConfig    `mapstructure:"serial"`
	USB            USBPortConfig       `mapstructure:"usb"`
	Network        NetworkTargetConfig `mapstructure:"network"`
}

// SerialPortConfig represents serial line settings (framing is fixed 8N1)
type SerialPortConfig struct {
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baud_rate"`
}

// USBPortConfig represents USB settings. Vendor IDs are hex strings
// ("0x04b8" or "04b8") so the allow-list stays readable in yaml.
type USBPortConfig struct {
	VendorAllowList []string `mapstructure:"vendor_allow_list"`
	Endpoint        int      `mapstructure:"endpoint"`
}

// NetworkTargetConfig represents the (not yet implemented) network target
type NetworkTargetConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ReceiptConfig carries the store identity and trailing hardware flags
type ReceiptConfig struct {
	StoreName     string `mapstructure:"store_name"`
	StoreSubtitle string `mapstructure:"store_subtitle"`
	FooterMessage string `mapstructure:"footer_message"`
	PrintBarcode  bool   `mapstructure:"print_barcode"`
	CutPaper      bool   `mapstructure:"cut_paper"`
	OpenDrawer    bool   `mapstructure:"open_drawer"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// Load loads configuration from file and environment variables. A
// missing config file is fine; defaults and env vars carry the service.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/print-service")

	viper.SetEnvPrefix("PRINT_SERVICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8090")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.migrations_path", "./migrations")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 2)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 28)
	viper.SetDefault("logging.compress", true)

	viper.SetDefault("printer.connection_type", "usb")
	viper.SetDefault("printer.paper_size", "80mm")
	viper.SetDefault("printer.serial.baud_rate", 9600)
	viper.SetDefault("printer.network.port", 9100)

	viper.SetDefault("receipt.store_name", "PHARMACY")
	viper.SetDefault("receipt.footer_message", "Thank you for your visit")
	viper.SetDefault("receipt.print_barcode", true)
	viper.SetDefault("receipt.cut_paper", true)
	viper.SetDefault("receipt.open_drawer", false)

	viper.SetDefault("app.name", "print-service")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
}

// validate checks configuration values that would only fail at runtime
func validate(config *Config) error {
	switch transport.ConnectionType(config.Printer.ConnectionType) {
	case transport.ConnectionSerial, transport.ConnectionUSB,
		transport.ConnectionNetwork, transport.ConnectionFallback:
	default:
		return fmt.Errorf("unknown printer connection_type: %q", config.Printer.ConnectionType)
	}

	if _, ok := escpos.PaperWidths[escpos.PaperSize(config.Printer.PaperSize)]; !ok {
		return fmt.Errorf("unknown paper_size: %q (expected 58mm, 79mm or 80mm)", config.Printer.PaperSize)
	}

	if _, err := config.Printer.USB.VendorIDs(); err != nil {
		return err
	}

	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetServerAddr returns the listen address for the HTTP server
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// HistoryEnabled reports whether the print-job history store is
// configured.
func (c *Config) HistoryEnabled() bool {
	return c.Database.DSN != ""
}

// VendorIDs parses the configured hex vendor strings.
func (u *USBPortConfig) VendorIDs() ([]uint16, error) {
	ids := make([]uint16, 0, len(u.VendorAllowList))
	for _, raw := range u.VendorAllowList {
		s := strings.TrimPrefix(strings.ToLower(raw), "0x")
		id, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid USB vendor id %q: %w", raw, err)
		}
		ids = append(ids, uint16(id))
	}
	return ids, nil
}

// TransportConfig builds the transport-layer configuration.
func (p *PrinterConfig) TransportConfig() (*transport.Config, error) {
	vendorIDs, err := p.USB.VendorIDs()
	if err != nil {
		return nil, err
	}

	return &transport.Config{
		ConnectionType: transport.ConnectionType(p.ConnectionType),
		Serial: transport.SerialConfig{
			Port:     p.Serial.Port,
			BaudRate: p.Serial.BaudRate,
		},
		USB: transport.USBConfig{
			VendorAllowList: vendorIDs,
			Endpoint:        p.USB.Endpoint,
		},
		Network: transport.NetworkConfig{
			Host: p.Network.Host,
			Port: p.Network.Port,
		},
	}, nil
}

// ReceiptOptions builds the default receipt options from configuration.
func (c *Config) ReceiptOptions() *ReceiptOptions {
	return &ReceiptOptions{
		PaperSize:     c.Printer.PaperSize,
		StoreName:     c.Receipt.StoreName,
		StoreSubtitle: c.Receipt.StoreSubtitle,
		FooterMessage: c.Receipt.FooterMessage,
		PrintBarcode:  c.Receipt.PrintBarcode,
		CutPaper:      c.Receipt.CutPaper,
		OpenDrawer:    c.Receipt.OpenDrawer,
	}
}

// ReceiptOptions mirrors receipt.Options at the config boundary so the
// config package does not leak builder types into yaml parsing.
type ReceiptOptions struct {
	PaperSize     string
	StoreName     string
	StoreSubtitle string
	FooterMessage string
	PrintBarcode  bool
	CutPaper      bool
	OpenDrawer    bool
}
