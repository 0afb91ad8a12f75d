// internal/transport/fallback.go
package transport

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"print-service/internal/escpos"
	"print-service/internal/receipt"
)

// Renderer is the fallback print path: it produces a print-ready view
// straight from the sale record, bypassing the ESC/POS byte buffer, and
// hands it to the host's print facility. Injectable so tests can
// observe invocations without spawning processes.
type Renderer interface {
	Print(ctx context.Context, sale *receipt.Sale, opts *receipt.Options) error
}

// SpoolRenderer renders a plain-text receipt and pipes it to the host
// print spooler. Once the spooler accepted the job its outcome is not
// observable from here.
type SpoolRenderer struct {
	// Command is the spooler binary, "lp" by default.
	Command string
	logger  *zap.Logger
}

// NewSpoolRenderer creates the default host-spooler renderer.
func NewSpoolRenderer(logger *zap.Logger) *SpoolRenderer {
	return &SpoolRenderer{
		Command: "lp",
		logger:  logger.With(zap.String("transport", "fallback")),
	}
}

// Print renders the sale and submits it to the spooler.
func (r *SpoolRenderer) Print(ctx context.Context, sale *receipt.Sale, opts *receipt.Options) error {
	text := RenderText(sale, opts)

	cmd := exec.CommandContext(ctx, r.Command)
	cmd.Stdin = strings.NewReader(text)

	if err := cmd.Run(); err != nil {
		r.logger.Error("Host spooler invocation failed", zap.Error(err))
		return newError(ErrCapabilityUnavailable, "host print spooler is not available", err)
	}

	r.logger.Info("Receipt handed to host spooler", zap.Int("chars", len(text)))
	return nil
}

// RenderText produces the plain-text view of a sale for hosts without a
// thermal printer. Same column discipline as the byte path, no control
// codes.
func RenderText(sale *receipt.Sale, opts *receipt.Options) string {
	if opts == nil {
		opts = receipt.DefaultOptions()
	}
	width := escpos.PaperWidths[opts.PaperSize]
	if width == 0 {
		width = escpos.PaperWidths[escpos.Paper80mm]
	}

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	center := func(s string) {
		if pad := (width - len(s)) / 2; pad > 0 {
			s = strings.Repeat(" ", pad) + s
		}
		line(s)
	}
	row := func(left, right string) {
		if len(left)+len(right) >= width {
			keep := width - len(right) - 1
			if keep < 0 {
				keep = 0
			}
			left = left[:keep]
		}
		line(left + strings.Repeat(" ", width-len(left)-len(right)) + right)
	}

	center(opts.StoreName)
	if opts.StoreSubtitle != "" {
		center(opts.StoreSubtitle)
	}
	line(strings.Repeat("=", width))

	row("Date:", sale.CreatedAt.Format("02/01/2006 15:04"))
	row("Order:", fmt.Sprintf("#%d", sale.OrderNumber))
	if sale.CustomerName != "" {
		row("Customer:", sale.CustomerName)
	}
	line(strings.Repeat("-", width))

	center(strings.ToUpper(string(sale.SaleType)))
	if sale.SaleType == receipt.SaleTypeDelivery {
		if sale.CustomerAddress != "" {
			line("Address: " + sale.CustomerAddress)
		}
		if sale.CustomerPhone != "" {
			line("Phone: " + sale.CustomerPhone)
		}
	}
	line(strings.Repeat("-", width))

	for i := range sale.Items {
		item := &sale.Items[i]
		row(fmt.Sprintf("%dx %s", item.Quantity, item.Name), item.EffectiveUnitPrice().StringFixed(2))
		if item.Discount.IsPositive() {
			line("  disc -" + item.Discount.StringFixed(2))
		}
	}
	line(strings.Repeat("-", width))

	row("Subtotal", sale.Subtotal().StringFixed(2))
	if sale.Discount.IsPositive() {
		row("Discount", "-"+sale.Discount.StringFixed(2))
	}
	if sale.DeliveryFee.IsPositive() {
		row("Delivery", sale.DeliveryFee.StringFixed(2))
	}
	line(strings.Repeat("=", width))
	row("TOTAL", sale.Total().StringFixed(2))
	row("Paid ("+string(sale.PaymentMethod)+")", sale.Total().StringFixed(2))

	line("")
	center(opts.FooterMessage)
	center(fmt.Sprintf("Order #%d", sale.OrderNumber))

	return sb.String()
}
