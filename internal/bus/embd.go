// internal/bus/embd.go
package bus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all"
)

// EmbdBus adapts an embd I²C bus to Transport.
type EmbdBus struct {
	b embd.I2CBus
}

// NewEmbd wraps an existing embd bus.
func NewEmbd(b embd.I2CBus) *EmbdBus {
	return &EmbdBus{b: b}
}

// OpenEmbd opens the numbered bus. "1", "i2c-1" and "/dev/i2c-1" are accepted.
func OpenEmbd(name string) (*EmbdBus, error) {
	n := name
	if i := strings.LastIndex(n, "-"); i >= 0 {
		n = n[i+1:]
	}

	num, err := strconv.ParseUint(n, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("embd: bad bus name %q: %w", name, err)
	}

	return &EmbdBus{b: embd.NewI2CBus(byte(num))}, nil
}

func (e *EmbdBus) WriteRegister(addr, reg, value uint8) error {
	if err := e.b.WriteByteToReg(addr, reg, value); err != nil {
		return fmt.Errorf("embd: write addr=0x%02x reg=0x%02x: %w", addr, reg, err)
	}
	return nil
}

func (e *EmbdBus) ReadRegisters(addr, reg uint8, buf []byte) error {
	if len(buf) == 0 {
		return ErrEmptyRead
	}
	if err := e.b.ReadFromReg(addr, reg, buf); err != nil {
		return fmt.Errorf("embd: read addr=0x%02x reg=0x%02x n=%d: %w", addr, reg, len(buf), err)
	}
	return nil
}

func (e *EmbdBus) Close() error {
	return e.b.Close()
}
