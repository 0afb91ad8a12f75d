// internal/receipt/receipt.go
package receipt

import (
	"fmt"
	"strings"

	"print-service/internal/escpos"
)

// Options configures receipt layout and trailing hardware actions.
// Immutable once handed to a builder; unset fields are replaced with
// defaults at construction. The hardware flags are pointers so a
// partial options payload keeps the configured defaults: nil means
// "not specified", not "off".
type Options struct {
	PaperSize     escpos.PaperSize `json:"paper_size"`
	StoreName     string           `json:"store_name"`
	StoreSubtitle string           `json:"store_subtitle"`
	FooterMessage string           `json:"footer_message"`
	PrintBarcode  *bool            `json:"print_barcode,omitempty"`
	CutPaper      *bool            `json:"cut_paper,omitempty"`
	OpenDrawer    *bool            `json:"open_drawer,omitempty"`
}

// Bool returns a pointer to v, for populating option flags.
func Bool(v bool) *bool {
	return &v
}

// DefaultOptions returns the baseline receipt configuration.
func DefaultOptions() *Options {
	return &Options{
		PaperSize:     escpos.Paper80mm,
		StoreName:     "PHARMACY",
		FooterMessage: "Thank you for your visit",
		PrintBarcode:  Bool(true),
		CutPaper:      Bool(true),
		OpenDrawer:    Bool(false),
	}
}

// withDefaults merges defaults into unset fields, leaving the receiver
// untouched.
func (o *Options) withDefaults() *Options {
	merged := *DefaultOptions()
	if o == nil {
		return &merged
	}

	if o.PaperSize != "" {
		if _, ok := escpos.PaperWidths[o.PaperSize]; ok {
			merged.PaperSize = o.PaperSize
		}
	}
	if o.StoreName != "" {
		merged.StoreName = o.StoreName
	}
	merged.StoreSubtitle = o.StoreSubtitle
	if o.FooterMessage != "" {
		merged.FooterMessage = o.FooterMessage
	}
	if o.PrintBarcode != nil {
		merged.PrintBarcode = o.PrintBarcode
	}
	if o.CutPaper != nil {
		merged.CutPaper = o.CutPaper
	}
	if o.OpenDrawer != nil {
		merged.OpenDrawer = o.OpenDrawer
	}

	return &merged
}

// FromSale composes the full receipt byte stream for a sale record.
// The mapping is deterministic: the same sale and options always yield
// the same buffer.
func FromSale(sale *Sale, opts *Options) *Builder {
	opts = opts.withDefaults()
	b := NewBuilder(opts)

	writeHeader(b, opts)
	writeMetadata(b, sale)
	writeSaleTypeBanner(b, sale)
	writeItems(b, sale)
	writeTotals(b, sale)
	writeFooter(b, opts)

	if *opts.PrintBarcode {
		b.Barcode(sale.ID.String(), escpos.BarcodeCODE128Type)
	}

	b.Align(AlignCenter).Bold(true)
	b.Text(fmt.Sprintf("Order #%d", sale.OrderNumber)).NewLine(1)
	b.Bold(false).Align(AlignLeft)

	if *opts.CutPaper {
		b.Cut(true)
	}
	if *opts.OpenDrawer {
		b.OpenCashDrawer()
	}

	return b
}

func writeHeader(b *Builder, opts *Options) {
	b.Align(AlignCenter).Bold(true).DoubleSize(true)
	b.Text(opts.StoreName).NewLine(1)
	b.DoubleSize(false)

	if opts.StoreSubtitle != "" {
		b.Bold(false).Text(opts.StoreSubtitle).NewLine(1)
	}

	b.Bold(false).Align(AlignLeft)
	b.Divider('=')
}

func writeMetadata(b *Builder, sale *Sale) {
	b.Row("Date:", sale.CreatedAt.Format("02/01/2006 15:04"))
	b.Row("Order:", fmt.Sprintf("#%d", sale.OrderNumber))
	if sale.CustomerName != "" {
		b.Row("Customer:", sale.CustomerName)
	}
	b.Divider('-')
}

func writeSaleTypeBanner(b *Builder, sale *Sale) {
	b.Align(AlignCenter).Bold(true)
	b.Text(strings.ToUpper(string(sale.SaleType))).NewLine(1)
	b.Bold(false).Align(AlignLeft)

	if sale.SaleType == SaleTypeDelivery {
		if sale.CustomerAddress != "" {
			b.Text("Address: " + sale.CustomerAddress).NewLine(1)
		}
		if sale.CustomerPhone != "" {
			b.Text("Phone: " + sale.CustomerPhone).NewLine(1)
		}
	}

	b.Divider('-')
}

func writeItems(b *Builder, sale *Sale) {
	for i := range sale.Items {
		item := &sale.Items[i]

		left := fmt.Sprintf("%dx %s", item.Quantity, item.Name)
		right := item.EffectiveUnitPrice().StringFixed(2)
		b.Row(left, right)

		if item.Discount.IsPositive() {
			b.Text("  disc -" + item.Discount.StringFixed(2)).NewLine(1)
		}
	}

	b.Divider('-')
}

func writeTotals(b *Builder, sale *Sale) {
	b.Row("Subtotal", sale.Subtotal().StringFixed(2))

	if sale.Discount.IsPositive() {
		b.Row("Discount", "-"+sale.Discount.StringFixed(2))
	}
	if sale.DeliveryFee.IsPositive() {
		b.Row("Delivery", sale.DeliveryFee.StringFixed(2))
	}

	// Tax is not itemized at the point of sale yet
	b.Row("Tax", "0.00")

	b.Divider('=')

	total := sale.Total().StringFixed(2)
	b.Bold(true).Row("TOTAL", total).Bold(false)
	b.Row("Paid ("+string(sale.PaymentMethod)+")", total)
	b.Row("Change", "0.00")
}

func writeFooter(b *Builder, opts *Options) {
	b.NewLine(1)
	b.Center(opts.FooterMessage)
	b.NewLine(1)
}
