package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beltline/beltline/internal/item"
)

func TestTransformerStages(t *testing.T) {
	tr := New()

	tests := []struct {
		name         string
		op           item.Opcode
		value        uint64
		wantProducer uint64
		wantConsumer uint64
	}{
		{"Add", item.OpAdd, 100, 113, 131},
		{"Sub", item.OpSub, 100, 87, 69},
		{"Mul", item.OpMul, 3, 39, 93},
		{"Xor", item.OpXor, 0, 13, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantProducer, tr.Producer(tt.op, tt.value))
			assert.Equal(t, tt.wantConsumer, tr.Consumer(tt.op, tt.value))
		})
	}
}

func TestTransformerIsTotal(t *testing.T) {
	tr := New()

	t.Run("overflow wraps", func(t *testing.T) {
		assert.Equal(t, uint64(12), tr.Producer(item.OpAdd, math.MaxUint64))
	})

	t.Run("underflow wraps", func(t *testing.T) {
		assert.Equal(t, math.MaxUint64-uint64(12), tr.Producer(item.OpSub, 0))
	})

	t.Run("unknown opcode passes through", func(t *testing.T) {
		assert.Equal(t, uint64(7), tr.Producer(item.Opcode(99), 7))
		assert.Equal(t, uint64(7), tr.Consumer(item.Opcode(99), 7))
	})
}

func TestStagesCompose(t *testing.T) {
	tr := New()

	// The end-to-end value is the consumer stage applied to the producer
	// stage's result.
	value := uint64(40)
	assert.Equal(t, uint64(40+13+31), tr.Consumer(item.OpAdd, tr.Producer(item.OpAdd, value)))
}
