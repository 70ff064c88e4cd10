// internal/bus/periph.go
package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphBus adapts a periph.io I²C bus to Transport.
type PeriphBus struct {
	b     i2c.Bus
	close func() error
}

// NewPeriph wraps an already opened periph bus. Close is a no-op.
func NewPeriph(b i2c.Bus) *PeriphBus {
	return &PeriphBus{b: b, close: func() error { return nil }}
}

// OpenPeriph initializes the periph host drivers and opens the named bus
// ("1", "I2C1", "/dev/i2c-1" ...). An empty name picks the first bus.
func OpenPeriph(name string) (*PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: host init: %w", err)
	}

	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("periph: open bus %q: %w", name, err)
	}

	return &PeriphBus{b: bc, close: bc.Close}, nil
}

func (p *PeriphBus) WriteRegister(addr, reg, value uint8) error {
	if err := p.b.Tx(uint16(addr), []byte{reg, value}, nil); err != nil {
		return fmt.Errorf("periph: write addr=0x%02x reg=0x%02x: %w", addr, reg, err)
	}
	return nil
}

func (p *PeriphBus) ReadRegisters(addr, reg uint8, buf []byte) error {
	if len(buf) == 0 {
		return ErrEmptyRead
	}
	if err := p.b.Tx(uint16(addr), []byte{reg}, buf); err != nil {
		return fmt.Errorf("periph: read addr=0x%02x reg=0x%02x n=%d: %w", addr, reg, len(buf), err)
	}
	return nil
}

func (p *PeriphBus) Close() error {
	return p.close()
}
