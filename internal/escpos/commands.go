// internal/escpos/commands.go
package escpos

// Commands contains the ESC/POS control sequences used by the receipt
// builder. These are constant tables, never mutated after init.
var Commands = struct {
	// Basic commands
	Initialize    []byte
	StatusRequest []byte

	// Text formatting
	BoldOn       []byte
	BoldOff      []byte
	UnderlineOn  []byte
	UnderlineOff []byte

	// Text size (ESC ! n)
	SizeNormal       []byte
	SizeDoubleHeight []byte
	SizeDouble       []byte

	// Text alignment (ESC a n)
	AlignLeft   []byte
	AlignCenter []byte
	AlignRight  []byte

	// Paper handling
	LineFeed []byte
	FormFeed []byte

	// Cutting (GS V n)
	CutFull    []byte
	CutPartial []byte

	// Cash drawer
	DrawerKick []byte

	// QR code (GS ( k)
	QRSelectModel []byte
	QRPrint       []byte
}{
	Initialize:    []byte{0x1B, 0x40},       // ESC @
	StatusRequest: []byte{0x10, 0x04, 0x01}, // DLE EOT 1

	BoldOn:       []byte{0x1B, 0x45, 0x01}, // ESC E 1
	BoldOff:      []byte{0x1B, 0x45, 0x00}, // ESC E 0
	UnderlineOn:  []byte{0x1B, 0x2D, 0x01}, // ESC - 1
	UnderlineOff: []byte{0x1B, 0x2D, 0x00}, // ESC - 0

	SizeNormal:       []byte{0x1B, 0x21, 0x00}, // ESC ! 0
	SizeDoubleHeight: []byte{0x1B, 0x21, 0x10}, // ESC ! 16
	SizeDouble:       []byte{0x1B, 0x21, 0x30}, // ESC ! 48

	AlignLeft:   []byte{0x1B, 0x61, 0x00}, // ESC a 0
	AlignCenter: []byte{0x1B, 0x61, 0x01}, // ESC a 1
	AlignRight:  []byte{0x1B, 0x61, 0x02}, // ESC a 2

	LineFeed: []byte{0x0A}, // LF
	FormFeed: []byte{0x0C}, // FF

	CutFull:    []byte{0x1D, 0x56, 0x00}, // GS V 0
	CutPartial: []byte{0x1D, 0x56, 0x01}, // GS V 1

	DrawerKick: []byte{0x1B, 0x70, 0x00, 0x19, 0xFA}, // ESC p 0 25 250

	QRSelectModel: []byte{0x1D, 0x28, 0x6B, 0x04, 0x00, 0x31, 0x41, 0x32, 0x00}, // model 2
	QRPrint:       []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x51, 0x30},
}

// Codepages maps codepage names to their ESC t select frames.
var Codepages = map[string][]byte{
	"PC437":    {0x1B, 0x74, 0x00},
	"KATAKANA": {0x1B, 0x74, 0x01},
	"PC850":    {0x1B, 0x74, 0x02},
	"PC860":    {0x1B, 0x74, 0x03},
	"PC863":    {0x1B, 0x74, 0x04},
	"PC865":    {0x1B, 0x74, 0x05},
	"WPC1252":  {0x1B, 0x74, 0x10},
	"PC866":    {0x1B, 0x74, 0x11},
	"PC852":    {0x1B, 0x74, 0x12},
	"PC858":    {0x1B, 0x74, 0x13},
	"THAI42":   {0x1B, 0x74, 0x14},
	"PC864":    {0x1B, 0x74, 0x25}, // Arabic
}

// PaperSize identifies a thermal roll width.
type PaperSize string

const (
	Paper58mm PaperSize = "58mm"
	Paper79mm PaperSize = "79mm"
	Paper80mm PaperSize = "80mm"
)

// PaperWidths is the sole source of the per-row column budget.
var PaperWidths = map[PaperSize]int{
	Paper58mm: 32,
	Paper79mm: 42,
	Paper80mm: 48,
}

// BarcodeType identifies a supported 1D barcode symbology.
type BarcodeType string

const (
	BarcodeEAN13Type   BarcodeType = "EAN13"
	BarcodeCODE39Type  BarcodeType = "CODE39"
	BarcodeCODE128Type BarcodeType = "CODE128"
)

// BarcodeHeight sets barcode height in dots (GS h n). The 1-255 range is
// the caller's responsibility; this layer does no validation.
func BarcodeHeight(n byte) []byte {
	return []byte{0x1D, 0x68, n}
}

// BarcodeWidth sets the barcode module width (GS w n).
func BarcodeWidth(n byte) []byte {
	return []byte{0x1D, 0x77, n}
}

// BarcodeTextPosition sets HRI character position (GS H n);
// 0 none, 1 above, 2 below.
func BarcodeTextPosition(n byte) []byte {
	return []byte{0x1D, 0x48, n}
}

// BarcodeCODE128 builds a CODE128 frame. The length prefix equals
// len(data)+2, covering the fixed {B sub-type marker that precedes the
// payload. The prefix arithmetic is part of the wire contract.
func BarcodeCODE128(data string) []byte {
	frame := []byte{0x1D, 0x6B, 0x49, byte(len(data) + 2), 0x7B, 0x42}
	return append(frame, []byte(data)...)
}

// BarcodeCODE39 builds a NUL-terminated CODE39 frame (no length prefix).
func BarcodeCODE39(data string) []byte {
	frame := append([]byte{0x1D, 0x6B, 0x04}, []byte(data)...)
	return append(frame, 0x00)
}

// BarcodeEAN13 builds a NUL-terminated EAN13 frame (no length prefix).
func BarcodeEAN13(data string) []byte {
	frame := append([]byte{0x1D, 0x6B, 0x02}, []byte(data)...)
	return append(frame, 0x00)
}

// QRModuleSize sets the QR module size in dots (GS ( k ... 1 C n).
func QRModuleSize(n byte) []byte {
	return []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x43, n}
}

// QRErrorLevels maps correction level names to the command level byte.
var QRErrorLevels = map[string]byte{
	"L": 48,
	"M": 49,
	"Q": 50,
	"H": 51,
}

// QRErrorLevel builds the error-correction select frame. Unknown levels
// fall back to M.
func QRErrorLevel(level string) []byte {
	b, ok := QRErrorLevels[level]
	if !ok {
		b = QRErrorLevels["M"]
	}
	return []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x45, b}
}

// QRStore builds the symbol-storage frame. The 2-byte little-endian
// length field equals len(data)+3, covering the 3-byte 1 P 0 sub-command
// marker. The printer requires model select, store and print in that
// order; the builder enforces the sequence.
func QRStore(data string) []byte {
	length := len(data) + 3
	frame := []byte{0x1D, 0x28, 0x6B, byte(length & 0xFF), byte(length >> 8), 0x31, 0x50, 0x30}
	return append(frame, []byte(data)...)
}

// FeedLines feeds n lines (ESC d n).
func FeedLines(n byte) []byte {
	return []byte{0x1B, 0x64, n}
}
