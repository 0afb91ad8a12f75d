package escpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedFrames(t *testing.T) {
	assert.Equal(t, []byte{0x1B, 0x40}, Commands.Initialize)
	assert.Equal(t, []byte{0x1B, 0x45, 0x01}, Commands.BoldOn)
	assert.Equal(t, []byte{0x1B, 0x45, 0x00}, Commands.BoldOff)
	assert.Equal(t, []byte{0x1B, 0x61, 0x00}, Commands.AlignLeft)
	assert.Equal(t, []byte{0x1B, 0x61, 0x01}, Commands.AlignCenter)
	assert.Equal(t, []byte{0x1B, 0x61, 0x02}, Commands.AlignRight)
	assert.Equal(t, []byte{0x1B, 0x21, 0x30}, Commands.SizeDouble)
	assert.Equal(t, []byte{0x1B, 0x21, 0x00}, Commands.SizeNormal)
	assert.Equal(t, []byte{0x1D, 0x56, 0x01}, Commands.CutPartial)
	assert.Equal(t, []byte{0x1D, 0x56, 0x00}, Commands.CutFull)
	assert.Equal(t, []byte{0x1B, 0x70, 0x00, 0x19, 0xFA}, Commands.DrawerKick)
}

func TestBarcodeCODE128(t *testing.T) {
	testCases := []string{"A", "12345", "SALE-2024-000981", "X"}

	for _, data := range testCases {
		t.Run(data, func(t *testing.T) {
			frame := BarcodeCODE128(data)

			require.GreaterOrEqual(t, len(frame), 6)
			assert.Equal(t, []byte{0x1D, 0x6B, 0x49}, frame[:3])
			assert.Equal(t, byte(len(data)+2), frame[3], "length prefix must be len(data)+2")
			assert.Equal(t, byte(0x7B), frame[4])
			assert.Equal(t, byte(0x42), frame[5])
			assert.Equal(t, []byte(data), frame[6:])
		})
	}
}

func TestBarcodeNULTerminated(t *testing.T) {
	code39 := BarcodeCODE39("ABC-123")
	assert.Equal(t, []byte{0x1D, 0x6B, 0x04}, code39[:3])
	assert.Equal(t, byte(0x00), code39[len(code39)-1])
	assert.Equal(t, []byte("ABC-123"), code39[3:len(code39)-1])

	ean := BarcodeEAN13("4006381333931")
	assert.Equal(t, []byte{0x1D, 0x6B, 0x02}, ean[:3])
	assert.Equal(t, byte(0x00), ean[len(ean)-1])
}

func TestQRStoreLengthField(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"Short", "hi"},
		{"URL", "https://example.com/sale/42"},
		{"Long", string(make([]byte, 300))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frame := QRStore(tc.data)
			length := len(tc.data) + 3

			require.GreaterOrEqual(t, len(frame), 8)
			assert.Equal(t, []byte{0x1D, 0x28, 0x6B}, frame[:3])
			assert.Equal(t, byte(length&0xFF), frame[3], "low byte first")
			assert.Equal(t, byte(length>>8), frame[4])
			assert.Equal(t, []byte{0x31, 0x50, 0x30}, frame[5:8])
			assert.Equal(t, []byte(tc.data), frame[8:])
		})
	}
}

func TestQRErrorLevel(t *testing.T) {
	assert.Equal(t, byte(48), QRErrorLevel("L")[7])
	assert.Equal(t, byte(49), QRErrorLevel("M")[7])
	assert.Equal(t, byte(50), QRErrorLevel("Q")[7])
	assert.Equal(t, byte(51), QRErrorLevel("H")[7])
	assert.Equal(t, byte(49), QRErrorLevel("bogus")[7], "unknown level falls back to M")
}

func TestPaperWidths(t *testing.T) {
	require.Len(t, PaperWidths, 3)
	assert.Equal(t, 32, PaperWidths[Paper58mm])
	assert.Equal(t, 42, PaperWidths[Paper79mm])
	assert.Equal(t, 48, PaperWidths[Paper80mm])
}

func TestCodepages(t *testing.T) {
	require.Len(t, Codepages, 12)
	for name, frame := range Codepages {
		require.Len(t, frame, 3, name)
		assert.Equal(t, []byte{0x1B, 0x74}, frame[:2], name)
	}
}

func TestBarcodeSetters(t *testing.T) {
	assert.Equal(t, []byte{0x1D, 0x68, 0x50}, BarcodeHeight(80))
	assert.Equal(t, []byte{0x1D, 0x77, 0x02}, BarcodeWidth(2))
	assert.Equal(t, []byte{0x1D, 0x48, 0x02}, BarcodeTextPosition(2))
	assert.Equal(t, []byte{0x1B, 0x64, 0x03}, FeedLines(3))
}
