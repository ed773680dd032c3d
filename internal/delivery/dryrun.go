package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/types"
)

// DryRunSender prints the message it would have sent and reports success.
// The pipeline runs exactly as in a live campaign, quota included.
type DryRunSender struct {
	out     io.Writer
	printer *observability.Printer
}

// NewDryRunSender creates a sender that writes to out.
func NewDryRunSender(out io.Writer) *DryRunSender {
	return &DryRunSender{
		out:     out,
		printer: observability.NewPrinter(out),
	}
}

// Deliver prints the message instead of sending it.
func (d *DryRunSender) Deliver(_ context.Context, prospect types.Prospect, msg *types.OutreachMessage) error {
	if msg == nil {
		return errors.New("no message to deliver")
	}

	fmt.Fprintf(d.out, "[dry-run] would send to %s\n", prospect.Email)
	d.printer.PrintMessage(msg)
	return nil
}
