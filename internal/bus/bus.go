// internal/bus/bus.go

// Package bus provides register-level I²C transports for ranging devices.
// Every call is one bounded bus transaction; failures are reported per call
// and never retried here.
package bus

import (
	"errors"
	"fmt"
	"sync"
)

// Transport is the register-level contract the ranging drivers consume.
type Transport interface {
	// WriteRegister writes a single byte value into register reg of the
	// device at addr.
	WriteRegister(addr, reg, value uint8) error

	// ReadRegisters reads len(buf) consecutive registers starting at reg.
	ReadRegisters(addr, reg uint8, buf []byte) error
}

// TransportCloser is a Transport that owns an OS handle.
type TransportCloser interface {
	Transport
	Close() error
}

var (
	ErrEmptyRead      = errors.New("bus: read buffer is empty")
	ErrUnknownBackend = errors.New("bus: unknown backend")
)

// Backend names accepted by Open.
const (
	BackendPeriph = "periph"
	BackendEmbd   = "embd"
)

// Open opens the named bus using the given backend.
func Open(backend, name string) (TransportCloser, error) {
	switch backend {
	case BackendPeriph, "":
		return OpenPeriph(name)
	case BackendEmbd:
		return OpenEmbd(name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Shared serializes transactions on one physical bus used by several
// device owners. The drivers themselves do no locking.
type Shared struct {
	mu sync.Mutex
	tr TransportCloser
}

// NewShared wraps tr.
func NewShared(tr TransportCloser) *Shared {
	return &Shared{tr: tr}
}

func (s *Shared) WriteRegister(addr, reg, value uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.WriteRegister(addr, reg, value)
}

func (s *Shared) ReadRegisters(addr, reg uint8, buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.ReadRegisters(addr, reg, buf)
}

// Close closes the underlying transport.
func (s *Shared) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tr.Close()
}

// Pool hands out one Shared per physical bus so that units configured on
// the same bus are serialized against each other.
type Pool struct {
	mu    sync.Mutex
	open  func(backend, name string) (TransportCloser, error)
	buses map[string]*Shared
}

// NewPool returns a pool that opens buses with Open.
func NewPool() *Pool {
	return NewPoolWith(Open)
}

// NewPoolWith returns a pool that opens buses with open.
func NewPoolWith(open func(backend, name string) (TransportCloser, error)) *Pool {
	return &Pool{open: open, buses: make(map[string]*Shared)}
}

// Get returns the shared bus for backend/name, opening it on first use.
func (p *Pool) Get(backend, name string) (*Shared, error) {
	if backend == "" {
		backend = BackendPeriph
	}
	key := backend + "|" + name

	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.buses[key]; ok {
		return s, nil
	}

	tr, err := p.open(backend, name)
	if err != nil {
		return nil, err
	}
	s := NewShared(tr)
	p.buses[key] = s
	return s, nil
}

// Close closes every bus opened by the pool. The first error is returned.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for key, s := range p.buses {
		if err := s.Close(); err != nil && first == nil {
			first = fmt.Errorf("bus %s: %w", key, err)
		}
		delete(p.buses, key)
	}
	return first
}
