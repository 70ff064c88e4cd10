// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/rangefinder-replicator/internal/poller"
	"github.com/tamzrod/rangefinder-replicator/internal/status"
)

// endpointClient is the exact contract the writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

// Clients maps endpoint address to its client.
type Clients map[string]endpointClient

const areaHoldingRegisters byte = 3

type writerImpl struct {
	plan    Plan
	clients Clients
}

// New returns a data writer for one unit.
func New(plan Plan, clients Clients) Writer {
	return &writerImpl{
		plan:    plan,
		clients: clients,
	}
}

// Write delivers the data block of one poll to every memory of every target.
// The distance is always in bounds, so the block is written regardless of
// health; the status block carries health.
func (w *writerImpl) Write(res poller.PollResult) error {
	var errs []string

	regs := status.EncodeData(res.Distance, res.Raw)

	for _, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		for _, mem := range tgt.Memories {
			if err := cli.WriteRegisters(areaHoldingRegisters, mem.MemoryID, mem.Offset, regs); err != nil {
				errs = append(errs, fmt.Sprintf(
					"writer: ep=%s memory=%d addr=%d err=%v",
					tgt.Endpoint, mem.MemoryID, mem.Offset, err,
				))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}
