// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// RTUPrefix selects a serial RTU endpoint: "rtu:/dev/ttyUSB0" or
// "rtu:/dev/ttyUSB0@19200". Anything else is a TCP host:port.
const RTUPrefix = "rtu:"

const defaultBaudRate = 9600

// EndpointClient is a single connection to one endpoint.
// It serializes requests because it mutates SlaveId per memory write.
// The underlying handler connects lazily and reconnects after failures.
type EndpointClient struct {
	mu       sync.Mutex
	client   modbus.Client
	setSlave func(id byte)
	close    func() error
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	if strings.HasPrefix(cfg.Endpoint, RTUPrefix) {
		dev, baud, err := ParseRTU(cfg.Endpoint)
		if err != nil {
			return nil, err
		}

		h := modbus.NewRTUClientHandler(dev)
		h.BaudRate = baud
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.Timeout = cfg.Timeout

		return &EndpointClient{
			client:   modbus.NewClient(h),
			setSlave: func(id byte) { h.SlaveId = id },
			close:    h.Close,
		}, nil
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	return &EndpointClient{
		client:   modbus.NewClient(h),
		setSlave: func(id byte) { h.SlaveId = id },
		close:    h.Close,
	}, nil
}

// ParseRTU splits an RTU endpoint into device path and baud rate.
func ParseRTU(endpoint string) (string, int, error) {
	rest := strings.TrimPrefix(endpoint, RTUPrefix)
	dev, baudStr, hasBaud := strings.Cut(rest, "@")
	if dev == "" {
		return "", 0, fmt.Errorf("writer modbus: %q has no serial device", endpoint)
	}
	if !hasBaud {
		return dev, defaultBaudRate, nil
	}
	baud, err := strconv.Atoi(baudStr)
	if err != nil || baud <= 0 {
		return "", 0, fmt.Errorf("writer modbus: %q has bad baud rate", endpoint)
	}
	return dev, baud, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

// WriteRegisters writes holding registers (FC16). Only area 3 is writable.
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if area != 3 {
		return fmt.Errorf("writer modbus: unsupported area %d", area)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.setSlave(unitID)

	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	return err
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
