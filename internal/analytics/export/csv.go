// Package export renders report views as CSV downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/printhart/printhart/internal/orders"
)

// deliveredHeader keeps the column layout of the shop's original report.
var deliveredHeader = []string{
	"ID", "Estado", "Cantidad", "Precio x unidad", "Precio total",
	"Cliente", "Detalle", "Fecha", "Artículos usados", "Pago",
}

// Writer renders delivered orders as CSV with Spanish number formatting.
type Writer struct {
	printer *message.Printer
}

// NewWriter constructs a CSV writer.
func NewWriter() *Writer {
	return &Writer{printer: message.NewPrinter(language.Spanish)}
}

// WriteDelivered streams the delivered-orders view to w.
func (c *Writer) WriteDelivered(w io.Writer, rows []orders.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(deliveredHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range rows {
		record := []string{
			strconv.FormatInt(o.ID, 10),
			string(o.Status),
			strconv.FormatInt(o.Quantity, 10),
			c.money(o.UnitPrice),
			c.money(o.Total),
			o.Client,
			o.Detail,
			o.OrderDate.Format("2006-01-02"),
			materialsColumn(o.Materials),
			paidColumn(o.Paid),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (c *Writer) money(v float64) string {
	return c.printer.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func materialsColumn(lines []orders.MaterialLine) string {
	if len(lines) == 0 {
		return ""
	}
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s(%d)", line.Material, line.Quantity))
	}
	return strings.Join(parts, ", ")
}

func paidColumn(paid bool) string {
	if paid {
		return "Sí"
	}
	return "No"
}
