package db

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 2.5, 1250.5, 0.01, 99999.99} {
		n, err := Numeric(v)
		require.NoError(t, err)
		require.True(t, n.Valid)

		f, err := n.Float64Value()
		require.NoError(t, err)
		require.InDelta(t, v, f.Float64, 0.0001)
	}
}

func TestNumericRejectsInfinity(t *testing.T) {
	_, err := Numeric(math.Inf(1))
	require.Error(t, err)
}
