// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/tamzrod/rangefinder-replicator/internal/config"
	"github.com/tamzrod/rangefinder-replicator/internal/writer/ingest"
	wmodbus "github.com/tamzrod/rangefinder-replicator/internal/writer/modbus"
)

// Protocols accepted per target.
const (
	ProtocolModbus = "modbus"
	ProtocolIngest = "ingest"
)

// BuildPlan converts one unit config into a Writer Plan.
// Assumes config has already passed conflict validation.
func BuildPlan(u cfg.UnitConfig) (Plan, error) {
	if u.ID == "" {
		return Plan{}, errors.New("writer: unit.id required")
	}

	plan := Plan{UnitID: u.ID}

	for _, t := range u.Targets {
		ep := TargetEndpoint{
			TargetID: t.ID,
			Endpoint: t.Endpoint,
		}

		for _, m := range t.Memories {
			ep.Memories = append(ep.Memories, MemoryDest{
				MemoryID: m.MemoryID,
				Offset:   m.Offset,
			})
		}

		plan.Targets = append(plan.Targets, ep)

		if u.Sensor.StatusSlot != nil && t.StatusUnitID != nil {
			plan.Status = append(plan.Status, StatusPlan{
				Endpoint:   t.Endpoint,
				UnitID:     *t.StatusUnitID,
				BaseSlot:   *u.Sensor.StatusSlot,
				DeviceName: u.Sensor.DeviceName,
			})
		}
	}

	return plan, nil
}

// closableClient is an endpoint client that owns a connection.
type closableClient interface {
	endpointClient
	Close() error
}

// ClientFactory creates one client for one endpoint.
type ClientFactory func(ep EndpointSpec) (closableClient, error)

// DefaultFactory selects the client by protocol.
func DefaultFactory(ep EndpointSpec) (closableClient, error) {
	switch ep.Protocol {
	case ProtocolModbus, "":
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: ep.Endpoint,
			Timeout:  ep.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProtocolIngest:
		c, err := ingest.NewEndpointClient(ingest.Config{
			Endpoint: ep.Endpoint,
			Timeout:  ep.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("writer: unknown protocol %q", ep.Protocol)
	}
}

// BuildEndpointClients creates one client per unique endpoint across all units.
// Units writing to the same endpoint share its connection.
func BuildEndpointClients(units []cfg.UnitConfig, factory ClientFactory) (Clients, func() error, error) {
	if factory == nil {
		factory = DefaultFactory
	}

	specs := map[string]EndpointSpec{}
	var order []string

	for _, u := range units {
		for _, t := range u.Targets {
			ep := EndpointSpec{
				Endpoint: t.Endpoint,
				Protocol: t.Protocol,
				Timeout:  time.Duration(t.TimeoutMs) * time.Millisecond,
			}
			if prev, ok := specs[t.Endpoint]; ok {
				if prev.Protocol != ep.Protocol {
					return nil, nil, fmt.Errorf(
						"writer: endpoint %s used with protocols %q and %q",
						t.Endpoint, prev.Protocol, ep.Protocol,
					)
				}
				continue
			}
			specs[t.Endpoint] = ep
			order = append(order, t.Endpoint)
		}
	}

	clients := make(Clients)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for _, endpoint := range order {
		c, err := factory(specs[endpoint])
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	return clients, closeAll, nil
}
