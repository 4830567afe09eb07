// Package feed turns a text command stream into engine operations.
//
// Grammar, one command per line:
//
//	BUY <price> <qty>
//	SELL <price> <qty>
//	CANCEL <id>
//	MODIFY <id> <qty> <price>
//	PRINT
//	EXPORT
//	EXIT
//
// Prices are decimal strings converted to ticks at the driver's scale.
// Malformed input produces a diagnostic line, never an error return.
package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"freya/domain/book"
	"freya/service"
)

type Driver struct {
	svc   *service.OrderService
	scale int32
	log   *zap.Logger
}

func New(svc *service.OrderService, scale int32, log *zap.Logger) *Driver {
	return &Driver{svc: svc, scale: scale, log: log}
}

// Run executes commands from r until EXIT or EOF, writing responses to w.
func (d *Driver) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out, exit := d.Exec(scanner.Text())
		if out != "" {
			fmt.Fprintln(w, out)
		}
		if exit {
			return nil
		}
	}
	return scanner.Err()
}

// Exec runs one command line and returns its response plus whether the
// stream should terminate.
func (d *Driver) Exec(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}

	switch strings.ToUpper(fields[0]) {
	case "BUY":
		return d.place(book.Bid, fields[1:]), false
	case "SELL":
		return d.place(book.Ask, fields[1:]), false
	case "CANCEL":
		return d.cancel(fields[1:]), false
	case "MODIFY":
		return d.modify(fields[1:]), false
	case "PRINT":
		return d.render(), false
	case "EXPORT":
		return d.export(), false
	case "EXIT":
		return "", true
	default:
		d.log.Debug("unknown feed command", zap.String("command", fields[0]))
		return fmt.Sprintf("Unknown command: %s", fields[0]), false
	}
}

func (d *Driver) place(side book.Side, args []string) string {
	if len(args) != 2 {
		return "Usage: BUY|SELL <price> <qty>"
	}
	price, err := book.ParsePrice(args[0], d.scale)
	if err != nil {
		return fmt.Sprintf("Invalid price: %s", args[0])
	}
	qty, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Sprintf("Invalid quantity: %s", args[1])
	}

	id, err := d.svc.PlaceOrder(side, price, qty)
	if err != nil {
		return fmt.Sprintf("Order rejected: %v", err)
	}
	return fmt.Sprintf("Order %d placed.", id)
}

func (d *Driver) cancel(args []string) string {
	if len(args) != 1 {
		return "Usage: CANCEL <id>"
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Sprintf("Invalid id: %s", args[0])
	}

	switch err := d.svc.CancelOrder(id); {
	case err == nil:
		return "Order cancelled."
	case errors.Is(err, book.ErrNotFound):
		return "Order not found."
	default:
		return fmt.Sprintf("Cancel failed: %v", err)
	}
}

func (d *Driver) modify(args []string) string {
	if len(args) != 3 {
		return "Usage: MODIFY <id> <qty> <price>"
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Sprintf("Invalid id: %s", args[0])
	}
	qty, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Sprintf("Invalid quantity: %s", args[1])
	}
	price, err := book.ParsePrice(args[2], d.scale)
	if err != nil {
		return fmt.Sprintf("Invalid price: %s", args[2])
	}

	switch err := d.svc.ModifyOrder(id, qty, price); {
	case err == nil:
		return "Order modified."
	case errors.Is(err, book.ErrNotFound):
		return "Order not found."
	default:
		return fmt.Sprintf("Modify failed: %v", err)
	}
}

func (d *Driver) render() string {
	snapshot := d.svc.Snapshot()

	var sb strings.Builder
	sb.WriteString("Order Book:\n")
	sb.WriteString("BIDS:\n")
	d.renderSide(&sb, snapshot, book.Bid)
	sb.WriteString("ASKS:\n")
	d.renderSide(&sb, snapshot, book.Ask)
	fmt.Fprintf(&sb, "Total Volume Traded: %d units", d.svc.TotalVolume())
	return sb.String()
}

// renderSide groups the snapshot's rows by price level. Rows arrive
// already sorted best-first per side, FIFO within a level.
func (d *Driver) renderSide(sb *strings.Builder, snapshot []book.RestingOrder, side book.Side) {
	var price int64
	open := false
	count := 0
	var orders strings.Builder

	flush := func() {
		if open {
			fmt.Fprintf(sb, " $%s x %d orders: %s\n", book.FormatPrice(price, d.scale), count, orders.String())
			orders.Reset()
			count = 0
			open = false
		}
	}

	for _, o := range snapshot {
		if o.Side != side {
			continue
		}
		if !open || o.Price != price {
			flush()
			price = o.Price
			open = true
		}
		fmt.Fprintf(&orders, "[ID %d, qty %d]", o.ID, o.Qty)
		count++
	}
	flush()
}

func (d *Driver) export() string {
	tradesPath, err := d.svc.ExportTrades()
	if err != nil {
		return fmt.Sprintf("Export failed: %v", err)
	}
	bookPath, err := d.svc.ExportBook()
	if err != nil {
		return fmt.Sprintf("Export failed: %v", err)
	}
	return fmt.Sprintf("Exported %s, %s", tradesPath, bookPath)
}
