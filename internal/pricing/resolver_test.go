package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestResolveUnitPrice_FallbackChain(t *testing.T) {
	tests := []struct {
		name         string
		qty          int
		subtotal     *int64
		snapshot     *int64
		catalogPrice *int64
		want         int64
	}{
		{name: "subtotal divided by quantity", qty: 2, subtotal: ptr(100), snapshot: ptr(30), catalogPrice: ptr(20), want: 50},
		{name: "zero subtotal falls back to snapshot", qty: 1, subtotal: ptr(0), snapshot: ptr(30), catalogPrice: ptr(20), want: 30},
		{name: "missing subtotal falls back to snapshot", qty: 1, snapshot: ptr(30), want: 30},
		{name: "zero snapshot falls back to catalog", qty: 1, subtotal: ptr(0), snapshot: ptr(0), catalogPrice: ptr(20), want: 20},
		{name: "all absent resolves to zero", qty: 1, want: 0},
		{name: "zero catalog price still wins over nothing", qty: 1, catalogPrice: ptr(0), want: 0},
		{name: "zero quantity treated as one", qty: 0, subtotal: ptr(100), want: 100},
		{name: "negative quantity treated as one", qty: -3, subtotal: ptr(100), want: 100},
		{name: "uneven division rounds half up", qty: 3, subtotal: ptr(100), want: 33},
		{name: "exact half rounds up", qty: 2, subtotal: ptr(101), want: 51},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveUnitPrice(tc.qty, tc.subtotal, tc.snapshot, tc.catalogPrice)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeQuantity(t *testing.T) {
	assert.Equal(t, 1, NormalizeQuantity(0))
	assert.Equal(t, 1, NormalizeQuantity(-5))
	assert.Equal(t, 1, NormalizeQuantity(1))
	assert.Equal(t, 7, NormalizeQuantity(7))
}

func TestDivideRoundHalfUp(t *testing.T) {
	assert.Equal(t, int64(50), DivideRoundHalfUp(100, 2))
	assert.Equal(t, int64(33), DivideRoundHalfUp(100, 3))
	assert.Equal(t, int64(34), DivideRoundHalfUp(101, 3))
	assert.Equal(t, int64(51), DivideRoundHalfUp(101, 2))
	assert.Equal(t, int64(-51), DivideRoundHalfUp(-101, 2))
	assert.Equal(t, int64(0), DivideRoundHalfUp(0, 4))
}
