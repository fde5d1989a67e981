package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/printhart/printhart/internal/orders"
)

func TestWriteDeliveredLayout(t *testing.T) {
	rows := []orders.Order{
		{
			ID:        7,
			OrderDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Client:    "Carlos",
			Detail:    "10 camisetas",
			Quantity:  10,
			UnitPrice: 10,
			Total:     100,
			Status:    orders.StatusDelivered,
			Materials: []orders.MaterialLine{
				{Material: "Vinyl", Quantity: 4},
				{Material: "Ink", Quantity: 1},
			},
			Paid: true,
		},
		{
			ID:        8,
			OrderDate: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
			Client:    "Maria",
			Quantity:  1,
			UnitPrice: 1250.5,
			Total:     1250.5,
			Status:    orders.StatusDelivered,
			Paid:      false,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteDelivered(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, []string{
		"ID", "Estado", "Cantidad", "Precio x unidad", "Precio total",
		"Cliente", "Detalle", "Fecha", "Artículos usados", "Pago",
	}, records[0])

	first := records[1]
	require.Equal(t, "7", first[0])
	require.Equal(t, "DELIVERED", first[1])
	require.Equal(t, "10", first[2])
	require.Equal(t, "Carlos", first[5])
	require.Equal(t, "2025-06-01", first[7])
	require.Equal(t, "Vinyl(4), Ink(1)", first[8])
	require.Equal(t, "Sí", first[9])

	second := records[2]
	// Spanish locale uses the comma as decimal separator.
	require.Equal(t, "1250,50", second[3])
	require.Equal(t, "", second[8])
	require.Equal(t, "No", second[9])
}

func TestWriteDeliveredEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteDelivered(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}
