// internal/writer/types.go
package writer

import (
	"time"

	"github.com/tamzrod/rangefinder-replicator/internal/poller"
)

// MemoryDest is one memory destination inside an endpoint.
// The data block lands at Offset on unit MemoryID.
type MemoryDest struct {
	MemoryID uint8
	Offset   uint16
}

// TargetEndpoint is one target endpoint with one or more memory destinations.
type TargetEndpoint struct {
	TargetID uint32
	Endpoint string
	Memories []MemoryDest
}

// StatusPlan places one unit's device status block on one endpoint.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one unit.
type Plan struct {
	UnitID  string
	Targets []TargetEndpoint

	// Status is empty when the unit did not opt in.
	Status []StatusPlan
}

// EndpointSpec is what a client factory needs to reach one endpoint.
type EndpointSpec struct {
	Endpoint string
	Protocol string
	Timeout  time.Duration
}

// Writer writes poll snapshots into targets.
type Writer interface {
	Write(res poller.PollResult) error
}
