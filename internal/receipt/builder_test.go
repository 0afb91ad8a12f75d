package receipt

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"print-service/internal/escpos"
)

var allPaperSizes = []escpos.PaperSize{escpos.Paper58mm, escpos.Paper79mm, escpos.Paper80mm}

// lineText returns the printable text a single layout call appended,
// stripping the initialize preamble and the trailing line feed.
func lineText(t *testing.T, b *Builder) string {
	t.Helper()

	buf := b.Build()
	require.True(t, bytes.HasPrefix(buf, escpos.Commands.Initialize))
	require.Equal(t, byte(0x0A), buf[len(buf)-1])

	return string(buf[len(escpos.Commands.Initialize) : len(buf)-1])
}

func TestDividerWidth(t *testing.T) {
	for _, size := range allPaperSizes {
		t.Run(string(size), func(t *testing.T) {
			b := NewBuilder(&Options{PaperSize: size}).Divider('-')

			line := lineText(t, b)
			assert.Len(t, line, escpos.PaperWidths[size])
			assert.Equal(t, strings.Repeat("-", escpos.PaperWidths[size]), line)
		})
	}
}

func TestRowPadsToWidth(t *testing.T) {
	testCases := []struct {
		name  string
		left  string
		right string
	}{
		{"Short", "Subtotal", "12.50"},
		{"Empty left", "", "0.00"},
		{"Empty right", "Tax", ""},
		{"Near limit", strings.Repeat("a", 25), "9.99"},
	}

	for _, size := range allPaperSizes {
		width := escpos.PaperWidths[size]
		for _, tc := range testCases {
			t.Run(string(size)+"/"+tc.name, func(t *testing.T) {
				b := NewBuilder(&Options{PaperSize: size}).Row(tc.left, tc.right)

				line := lineText(t, b)
				assert.Len(t, line, width)
				assert.True(t, strings.HasSuffix(line, tc.right))
				assert.True(t, strings.HasPrefix(line, tc.left))
			})
		}
	}
}

func TestRowTruncatesLeft(t *testing.T) {
	for _, size := range allPaperSizes {
		t.Run(string(size), func(t *testing.T) {
			width := escpos.PaperWidths[size]
			left := strings.Repeat("x", width+10)
			right := "123.45"

			b := NewBuilder(&Options{PaperSize: size}).Row(left, right)

			line := lineText(t, b)
			assert.Len(t, line, width)
			assert.True(t, strings.HasSuffix(line, right))
			// A single space always separates the columns
			assert.Equal(t, " "+right, line[width-len(right)-1:])
		})
	}
}

func TestRowExactBoundary(t *testing.T) {
	width := escpos.PaperWidths[escpos.Paper58mm]
	left := strings.Repeat("l", width-6)
	right := "999.99"

	// left+right == width exactly still truncates to keep one space
	b := NewBuilder(&Options{PaperSize: escpos.Paper58mm}).Row(left, right)

	line := lineText(t, b)
	assert.Len(t, line, width)
	assert.True(t, strings.HasSuffix(line, " "+right))
}

func TestBase64RoundTrip(t *testing.T) {
	b := NewBuilder(nil).
		Bold(true).
		Text("PHARMACY").
		NewLine(1).
		Bold(false).
		Divider('=').
		Row("Item", "9.99").
		QRCode("https://example.com", 6).
		Cut(true)

	built := b.Build()
	decoded, err := base64.StdEncoding.DecodeString(b.ToBase64())
	require.NoError(t, err)
	assert.Equal(t, built, decoded)
}

func TestBuildReturnsSnapshot(t *testing.T) {
	b := NewBuilder(nil).Text("one")
	first := b.Build()

	b.Text("two")
	second := b.Build()

	assert.Len(t, first, len(escpos.Commands.Initialize)+3)
	assert.Greater(t, len(second), len(first))
	assert.Equal(t, first, second[:len(first)], "earlier snapshot must not change")
}

func TestTextSingleBytePerCharacter(t *testing.T) {
	b := NewBuilder(nil).Text("abc")
	buf := b.Build()
	assert.Equal(t, []byte("abc"), buf[len(escpos.Commands.Initialize):])

	// Character codes above 255 truncate to their low byte; this mirrors
	// the raw charCode pass-through and is asserted here so any future
	// encoding change is a deliberate one.
	b2 := NewBuilder(nil).Text("١") // ARABIC-INDIC DIGIT ONE (0x0661)
	buf2 := b2.Build()
	assert.Equal(t, []byte{0x61}, buf2[len(escpos.Commands.Initialize):])
}

func TestBarcodeSequence(t *testing.T) {
	b := NewBuilder(nil).Barcode("12345", escpos.BarcodeCODE128Type)
	buf := b.Build()

	center := bytes.Index(buf, escpos.Commands.AlignCenter)
	height := bytes.Index(buf, escpos.BarcodeHeight(80))
	frame := bytes.Index(buf, escpos.BarcodeCODE128("12345"))
	left := bytes.LastIndex(buf, escpos.Commands.AlignLeft)

	require.NotEqual(t, -1, center)
	require.NotEqual(t, -1, height)
	require.NotEqual(t, -1, frame)
	require.NotEqual(t, -1, left)

	assert.Less(t, center, height)
	assert.Less(t, height, frame)
	assert.Less(t, frame, left)
	assert.Equal(t, byte(0x0A), buf[frame+len(escpos.BarcodeCODE128("12345"))])
}

func TestQRCodeFrameOrder(t *testing.T) {
	b := NewBuilder(nil).QRCode("payload", 4)
	buf := b.Build()

	model := bytes.Index(buf, escpos.Commands.QRSelectModel)
	store := bytes.Index(buf, escpos.QRStore("payload"))
	print := bytes.Index(buf, escpos.Commands.QRPrint)

	require.NotEqual(t, -1, model)
	require.NotEqual(t, -1, store)
	require.NotEqual(t, -1, print)

	// The hardware state machine depends on model -> store -> print
	assert.Less(t, model, store)
	assert.Less(t, store, print)
}

func TestCutVariants(t *testing.T) {
	partial := NewBuilder(nil).Cut(true).Build()
	full := NewBuilder(nil).Cut(false).Build()

	assert.True(t, bytes.HasSuffix(partial, append([]byte{0x0A, 0x0A, 0x0A}, escpos.Commands.CutPartial...)))
	assert.True(t, bytes.HasSuffix(full, escpos.Commands.CutFull))
}

func TestOpenCashDrawer(t *testing.T) {
	buf := NewBuilder(nil).OpenCashDrawer().Build()
	assert.True(t, bytes.HasSuffix(buf, escpos.Commands.DrawerKick))
}
