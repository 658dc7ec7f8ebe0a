// Package transform holds the per-item value transforms applied by the
// pipeline's worker stages. The transforms are pure and total: every
// (opcode, value) pair yields a value, with uint64 wrap-around on overflow.
package transform

import "github.com/beltline/beltline/internal/item"

// Stage maps an (opcode, value) pair to a new value. Pools invoke their
// stage once per item; the pipeline treats it as an injected pure function.
type Stage func(op item.Opcode, value uint64) uint64

// Stage-specific operands. The producer and consumer sides apply the same
// opcode with different constants so the two hops are distinguishable in
// the output.
const (
	producerOperand uint64 = 13
	consumerOperand uint64 = 31
)

// Transformer provides the default producer- and consumer-side stages.
type Transformer struct{}

// New constructs the default transformer.
func New() *Transformer {
	return &Transformer{}
}

// Producer is the stage applied by producer workers.
func (t *Transformer) Producer(op item.Opcode, value uint64) uint64 {
	return apply(op, value, producerOperand)
}

// Consumer is the stage applied by consumer workers.
func (t *Transformer) Consumer(op item.Opcode, value uint64) uint64 {
	return apply(op, value, consumerOperand)
}

func apply(op item.Opcode, value, operand uint64) uint64 {
	switch op {
	case item.OpAdd:
		return value + operand
	case item.OpSub:
		return value - operand
	case item.OpMul:
		return value * operand
	case item.OpXor:
		return value ^ operand
	default:
		// Unknown opcodes pass the value through unchanged; the stream
		// layer rejects them before they can enter the pipeline.
		return value
	}
}
