package printer

import (
	"context"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
	"go.uber.org/multierr"
)

// TicketLine is one printable sale line.
type TicketLine struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// TicketDescriptor carries everything the ticket formatter needs. The ESC/POS
// rendering itself lives in the host printer bridge.
type TicketDescriptor struct {
	Folio          string       `json:"folio,omitempty"`
	LocalID        string       `json:"local_id,omitempty"`
	QueuedOffline  bool         `json:"queued_offline"`
	Lines          []TicketLine `json:"lines"`
	Total          float64      `json:"total"`
	AmountTendered float64      `json:"amount_tendered"`
	Change         float64      `json:"change"`
	PaymentMethod  int          `json:"payment_method"`
}

// Printer is the external ticket/drawer collaborator.
type Printer interface {
	PrintTicket(ctx context.Context, ticket TicketDescriptor) error
	OpenCashDrawer(ctx context.Context, printerID string) error
}

// Notifier fans a sale out to the printer best-effort: failures are logged
// and never fail the sale.
type Notifier struct {
	printer   Printer
	printerID string
	logg      *logger.Logger
}

func NewNotifier(p Printer, printerID string, logg *logger.Logger) *Notifier {
	return &Notifier{printer: p, printerID: printerID, logg: logg}
}

// Notify prints the ticket and, for cash sales, kicks the drawer.
func (n *Notifier) Notify(ctx context.Context, ticket TicketDescriptor, openDrawer bool) {
	if n == nil || n.printer == nil {
		return
	}

	var errs error
	if err := n.printer.PrintTicket(ctx, ticket); err != nil {
		errs = multierr.Append(errs, err)
	}
	if openDrawer {
		if err := n.printer.OpenCashDrawer(ctx, n.printerID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil && n.logg != nil {
		n.logg.Error(ctx, "printer notification failed", errs)
	}
}

// LogPrinter is the no-hardware implementation used when the terminal has no
// physical printer attached.
type LogPrinter struct {
	logg *logger.Logger
}

func NewLogPrinter(logg *logger.Logger) *LogPrinter {
	return &LogPrinter{logg: logg}
}

func (p *LogPrinter) PrintTicket(ctx context.Context, ticket TicketDescriptor) error {
	if p.logg != nil {
		ctx = p.logg.WithFields(ctx, map[string]any{
			"folio":          ticket.Folio,
			"local_id":       ticket.LocalID,
			"queued_offline": ticket.QueuedOffline,
			"total":          ticket.Total,
		})
		p.logg.Info(ctx, "ticket printed")
	}
	return nil
}

func (p *LogPrinter) OpenCashDrawer(ctx context.Context, printerID string) error {
	if p.logg != nil {
		p.logg.Info(p.logg.WithField(ctx, "printer_id", printerID), "cash drawer opened")
	}
	return nil
}
