package transport

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"print-service/internal/escpos"
	"print-service/internal/receipt"
)

type fakeConnection struct {
	connType ConnectionType
	openErr  error
	writeErr error
	isOpen   bool
	writes   [][]byte
	closes   int
}

func (f *fakeConnection) Open(ctx context.Context) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.isOpen = true
	return nil
}

func (f *fakeConnection) Close() error {
	f.closes++
	f.isOpen = false
	return nil
}

func (f *fakeConnection) IsOpen() bool { return f.isOpen }

func (f *fakeConnection) Write(ctx context.Context, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	f.writes = append(f.writes, buf)
	return nil
}

func (f *fakeConnection) Type() ConnectionType { return f.connType }

type fakeProbe struct {
	serial bool
	usb    bool
}

func (p fakeProbe) HasSerial() bool { return p.serial }
func (p fakeProbe) HasUSB() bool    { return p.usb }

type fakeRenderer struct {
	calls int
	err   error
}

func (r *fakeRenderer) Print(ctx context.Context, sale *receipt.Sale, opts *receipt.Options) error {
	r.calls++
	return r.err
}

func newTestService(connType ConnectionType, conn *fakeConnection) *Service {
	svc := NewService(&Config{ConnectionType: connType}, zap.NewNop())
	svc.SetProbe(fakeProbe{serial: true, usb: true})
	if conn != nil {
		svc.SetFactory(func(cfg *Config, logger *zap.Logger) (Connection, error) {
			return conn, nil
		})
	}
	return svc
}

func deliverySale() *receipt.Sale {
	return &receipt.Sale{
		ID:              uuid.New(),
		OrderNumber:     12,
		SaleType:        receipt.SaleTypeDelivery,
		CustomerPhone:   "+20 100 555 0147",
		CustomerAddress: "22 Corniche Rd",
		PaymentMethod:   receipt.PaymentCash,
		CreatedAt:       time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
		Items: []receipt.SaleItem{
			{Name: "Ibuprofen", Quantity: 1, Price: decimal.NewFromInt(20)},
		},
	}
}

func TestConnectSuccess(t *testing.T) {
	conn := &fakeConnection{connType: ConnectionSerial}
	svc := newTestService(ConnectionSerial, conn)

	result := svc.Connect(context.Background())

	require.True(t, result.Success)
	assert.Equal(t, StateConnected, svc.State())
	assert.True(t, conn.isOpen)
}

func TestConnectFailureLeavesDisconnected(t *testing.T) {
	conn := &fakeConnection{
		connType: ConnectionSerial,
		openErr:  newError(ErrNoDevice, "no serial port found", nil),
	}
	svc := newTestService(ConnectionSerial, conn)

	result := svc.Connect(context.Background())

	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrNoDevice, result.Error.Code)
	assert.Equal(t, StateDisconnected, svc.State(), "failed connect must not leave the service connected")
}

func TestConnectCapabilityUnavailable(t *testing.T) {
	svc := NewService(&Config{ConnectionType: ConnectionSerial}, zap.NewNop())
	svc.SetProbe(fakeProbe{serial: false, usb: false})
	svc.SetFactory(func(cfg *Config, logger *zap.Logger) (Connection, error) {
		t.Fatal("factory must not run when the capability is absent")
		return nil, nil
	})

	result := svc.Connect(context.Background())

	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrCapabilityUnavailable, result.Error.Code)
	assert.Equal(t, StateDisconnected, svc.State())
}

func TestDisconnectIdempotent(t *testing.T) {
	conn := &fakeConnection{connType: ConnectionSerial}
	svc := newTestService(ConnectionSerial, conn)

	// Disconnecting a never-connected service is a no-op
	assert.True(t, svc.Disconnect().Success)
	assert.True(t, svc.Disconnect().Success)

	require.True(t, svc.Connect(context.Background()).Success)
	assert.True(t, svc.Disconnect().Success)
	assert.Equal(t, 1, conn.closes)
	assert.Equal(t, StateDisconnected, svc.State())

	assert.True(t, svc.Disconnect().Success)
	assert.Equal(t, 1, conn.closes, "second disconnect must not close again")
}

func TestPrintNotConnected(t *testing.T) {
	svc := newTestService(ConnectionSerial, &fakeConnection{connType: ConnectionSerial})

	result := svc.Print(context.Background(), []byte{0x1B, 0x40})

	require.False(t, result.Success)
	assert.Equal(t, ErrNoDevice, result.Error.Code)
}

func TestPrintWriteFailureStaysConnected(t *testing.T) {
	conn := &fakeConnection{
		connType: ConnectionSerial,
		writeErr: newError(ErrWriteFailed, "serial write failed", nil),
	}
	svc := newTestService(ConnectionSerial, conn)
	require.True(t, svc.Connect(context.Background()).Success)

	result := svc.Print(context.Background(), []byte("data"))

	require.False(t, result.Success)
	assert.Equal(t, ErrWriteFailed, result.Error.Code)
	assert.Equal(t, StateConnected, svc.State(), "one failed write does not kill the connection")
}

func TestPrintReceiptAutoConnects(t *testing.T) {
	conn := &fakeConnection{connType: ConnectionUSB}
	svc := newTestService(ConnectionUSB, conn)

	sale := deliverySale()
	opts := &receipt.Options{PaperSize: escpos.Paper58mm}

	result := svc.PrintReceipt(context.Background(), sale, opts)

	require.True(t, result.Success)
	require.Len(t, conn.writes, 1)
	assert.Equal(t, receipt.FromSale(sale, opts).Build(), conn.writes[0])
	assert.Equal(t, StateConnected, svc.State())
}

func TestPrintReceiptPropagatesConnectFailure(t *testing.T) {
	conn := &fakeConnection{
		connType: ConnectionUSB,
		openErr:  newError(ErrOpenFailed, "failed to claim USB interface", nil),
	}
	svc := newTestService(ConnectionUSB, conn)

	result := svc.PrintReceipt(context.Background(), deliverySale(), nil)

	require.False(t, result.Success)
	assert.Equal(t, ErrOpenFailed, result.Error.Code)
	assert.Empty(t, conn.writes, "must not attempt to print after a failed connect")
}

func TestNetworkPlaceholder(t *testing.T) {
	svc := NewService(&Config{ConnectionType: ConnectionNetwork}, zap.NewNop())

	result := svc.Connect(context.Background())

	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrNotImplemented, result.Error.Code)
	assert.Contains(t, result.Message, "backend proxy")
	assert.Equal(t, StateDisconnected, svc.State())
}

func TestFallbackPrintReceipt(t *testing.T) {
	svc := NewService(&Config{ConnectionType: ConnectionFallback}, zap.NewNop())
	renderer := &fakeRenderer{}
	svc.SetRenderer(renderer)

	result := svc.PrintReceipt(context.Background(), deliverySale(), nil)

	require.True(t, result.Success)
	assert.Equal(t, 1, renderer.calls)
}

func TestFallbackRejectsRawBytes(t *testing.T) {
	svc := NewService(&Config{ConnectionType: ConnectionFallback}, zap.NewNop())

	result := svc.Print(context.Background(), []byte("raw"))

	require.False(t, result.Success)
	assert.Equal(t, ErrNotImplemented, result.Error.Code)
}

func TestFallbackConnectNeedsNoHandle(t *testing.T) {
	svc := NewService(&Config{ConnectionType: ConnectionFallback}, zap.NewNop())

	assert.True(t, svc.Connect(context.Background()).Success)
	assert.Equal(t, StateDisconnected, svc.State())
}

func TestStateListenerSeesTransitions(t *testing.T) {
	conn := &fakeConnection{connType: ConnectionSerial}
	svc := newTestService(ConnectionSerial, conn)

	var states []string
	svc.SetStateListener(func(info StatusInfo) {
		states = append(states, info.State)
	})

	require.True(t, svc.Connect(context.Background()).Success)
	require.True(t, svc.Print(context.Background(), []byte("x")).Success)
	svc.Disconnect()

	assert.Equal(t, []string{"CONNECTING", "CONNECTED", "PRINTING", "CONNECTED", "DISCONNECTED"}, states)
}

func TestRenderText(t *testing.T) {
	sale := deliverySale()
	opts := &receipt.Options{
		PaperSize: escpos.Paper58mm,
		StoreName: "Green Cross",
	}

	text := RenderText(sale, opts)
	lines := strings.Split(text, "\n")

	assert.Contains(t, text, "Green Cross")
	assert.Contains(t, text, "DELIVERY")
	assert.Contains(t, text, "Phone: +20 100 555 0147")
	assert.Contains(t, text, "Order #12")
	assert.NotContains(t, text, "\x1b", "plain-text view carries no control codes")

	width := escpos.PaperWidths[escpos.Paper58mm]
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), width)
	}
}
