package item

import "fmt"

// Opcode identifies the arithmetic operation applied to an item's value
// as it moves through the pipeline stages.
type Opcode uint8

const (
	OpAdd Opcode = iota
	OpSub
	OpMul
	OpXor
)

var opcodeNames = map[Opcode]string{
	OpAdd: "ADD",
	OpSub: "SUB",
	OpMul: "MUL",
	OpXor: "XOR",
}

// String returns the canonical name of the opcode.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(op))
}

// Valid reports whether op is a known operation.
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// ParseOpcode converts a canonical opcode name back to an Opcode.
func ParseOpcode(s string) (Opcode, error) {
	for op, name := range opcodeNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown opcode %q", s)
}

// MarshalText implements encoding.TextMarshaler so opcodes serialize
// as their names rather than raw integers.
func (op Opcode) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("cannot marshal unknown opcode %d", uint8(op))
	}
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *Opcode) UnmarshalText(text []byte) error {
	parsed, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// Item is the unit of data flowing through the pipeline. Items are never
// mutated in place: a stage consumes one item and forwards a replacement
// carrying the transformed value, so no two stages ever hold the same
// item concurrently.
type Item struct {
	Key   int    `json:"key"`
	Value uint64 `json:"value"`
	Op    Opcode `json:"op"`
}

// New constructs an item.
func New(key int, value uint64, op Opcode) *Item {
	return &Item{Key: key, Value: value, Op: op}
}

// WithValue returns a copy of the item carrying a new value. This is how
// stages "mutate" items: by replacement.
func (it *Item) WithValue(value uint64) *Item {
	return &Item{Key: it.Key, Value: value, Op: it.Op}
}
