// internal/receipt/builder.go
package receipt

import (
	"encoding/base64"
	"strings"

	"print-service/internal/escpos"
)

// Alignment represents horizontal text alignment
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Builder accumulates ESC/POS commands and formatted text into a single
// byte buffer. Every layout method mutates the buffer and returns the
// builder so calls can be chained. A builder is not safe for concurrent
// use; each print job gets its own instance.
type Builder struct {
	buf   []byte
	width int
	opts  *Options
}

// NewBuilder creates a builder for the configured paper size and emits
// the initialize sequence.
func NewBuilder(opts *Options) *Builder {
	opts = opts.withDefaults()

	b := &Builder{
		width: escpos.PaperWidths[opts.PaperSize],
		opts:  opts,
	}
	return b.Raw(escpos.Commands.Initialize)
}

// Width returns the column budget for the configured paper size.
func (b *Builder) Width() int {
	return b.width
}

// Raw appends raw bytes to the buffer.
func (b *Builder) Raw(data []byte) *Builder {
	b.buf = append(b.buf, data...)
	return b
}

// Text appends the character codes of s, one byte per character.
// Known limitation: character codes above 255 are truncated to their low
// byte, so non single-byte scripts print corrupted unless the matching
// codepage happens to line up. A transcoding layer is a future
// enhancement.
func (b *Builder) Text(s string) *Builder {
	for _, r := range s {
		b.buf = append(b.buf, byte(r))
	}
	return b
}

// NewLine appends count line feeds.
func (b *Builder) NewLine(count int) *Builder {
	for i := 0; i < count; i++ {
		b.buf = append(b.buf, escpos.Commands.LineFeed...)
	}
	return b
}

// Align switches horizontal alignment.
func (b *Builder) Align(position Alignment) *Builder {
	switch position {
	case AlignCenter:
		return b.Raw(escpos.Commands.AlignCenter)
	case AlignRight:
		return b.Raw(escpos.Commands.AlignRight)
	default:
		return b.Raw(escpos.Commands.AlignLeft)
	}
}

// Bold toggles emphasized printing.
func (b *Builder) Bold(enabled bool) *Builder {
	if enabled {
		return b.Raw(escpos.Commands.BoldOn)
	}
	return b.Raw(escpos.Commands.BoldOff)
}

// DoubleSize toggles double width and height.
func (b *Builder) DoubleSize(enabled bool) *Builder {
	if enabled {
		return b.Raw(escpos.Commands.SizeDouble)
	}
	return b.Raw(escpos.Commands.SizeNormal)
}

// DoubleHeight toggles double height only.
func (b *Builder) DoubleHeight(enabled bool) *Builder {
	if enabled {
		return b.Raw(escpos.Commands.SizeDoubleHeight)
	}
	return b.Raw(escpos.Commands.SizeNormal)
}

// Divider prints ch repeated across the full paper width.
func (b *Builder) Divider(ch byte) *Builder {
	line := strings.Repeat(string(ch), b.width)
	return b.Text(line).NewLine(1)
}

// Row prints a two-column line padded to exactly the paper width. When
// left and right together exceed the width, left is truncated so that
// right and a single separating space always survive.
func (b *Builder) Row(left, right string) *Builder {
	if len(left)+len(right) >= b.width {
		keep := b.width - len(right) - 1
		if keep < 0 {
			keep = 0
		}
		left = left[:keep]
	}

	padding := b.width - len(left) - len(right)
	if padding < 0 {
		padding = 0
	}

	return b.Text(left + strings.Repeat(" ", padding) + right).NewLine(1)
}

// Center prints s center-aligned on its own line and restores left
// alignment.
func (b *Builder) Center(s string) *Builder {
	return b.Align(AlignCenter).Text(s).NewLine(1).Align(AlignLeft)
}

// Barcode prints a centered barcode of the given symbology followed by
// two blank lines. Payload length limits are a hardware concern and are
// not validated here.
func (b *Builder) Barcode(data string, barcodeType escpos.BarcodeType) *Builder {
	b.Align(AlignCenter).
		Raw(escpos.BarcodeHeight(80)).
		Raw(escpos.BarcodeWidth(2)).
		Raw(escpos.BarcodeTextPosition(2))

	switch barcodeType {
	case escpos.BarcodeEAN13Type:
		b.Raw(escpos.BarcodeEAN13(data))
	case escpos.BarcodeCODE39Type:
		b.Raw(escpos.BarcodeCODE39(data))
	default:
		b.Raw(escpos.BarcodeCODE128(data))
	}

	return b.NewLine(2).Align(AlignLeft)
}

// QRCode prints a centered QR symbol. The printer's state machine
// requires model select, store and print in that order.
func (b *Builder) QRCode(data string, size byte) *Builder {
	return b.Align(AlignCenter).
		Raw(escpos.Commands.QRSelectModel).
		Raw(escpos.QRModuleSize(size)).
		Raw(escpos.QRErrorLevel("M")).
		Raw(escpos.QRStore(data)).
		Raw(escpos.Commands.QRPrint).
		NewLine(2).
		Align(AlignLeft)
}

// Cut feeds three lines then cuts the paper.
func (b *Builder) Cut(partial bool) *Builder {
	b.NewLine(3)
	if partial {
		return b.Raw(escpos.Commands.CutPartial)
	}
	return b.Raw(escpos.Commands.CutFull)
}

// OpenCashDrawer appends the drawer kick pulse.
func (b *Builder) OpenCashDrawer() *Builder {
	return b.Raw(escpos.Commands.DrawerKick)
}

// Build returns a snapshot of the accumulated bytes. The returned slice
// is a copy; further builder calls do not mutate it.
func (b *Builder) Build() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

// ToBase64 returns the accumulated bytes base64-encoded for transports
// that need a text-safe payload. Decoding reproduces Build() exactly.
func (b *Builder) ToBase64() string {
	return base64.StdEncoding.EncodeToString(b.buf)
}
