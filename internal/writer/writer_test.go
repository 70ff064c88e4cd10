// internal/writer/writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/tamzrod/rangefinder-replicator/internal/config"
	"github.com/tamzrod/rangefinder-replicator/internal/poller"
	"github.com/tamzrod/rangefinder-replicator/internal/status"
)

// ---- fake endpoint client ----

type writeCall struct {
	area   byte
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []writeCall
	fail   bool
	closed bool
}

func (f *fakeEndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("connection refused")
	}
	f.writes = append(f.writes, writeCall{
		area:   area,
		unitID: unitID,
		addr:   addr,
		regs:   append([]uint16(nil), regs...),
	})
	return nil
}

func (f *fakeEndpointClient) Close() error {
	f.closed = true
	return nil
}

func (f *fakeEndpointClient) last() writeCall {
	return f.writes[len(f.writes)-1]
}

// ---- data writer ----

func TestWriter_DataBlockPerMemory(t *testing.T) {
	fake := &fakeEndpointClient{}

	plan := Plan{
		UnitID: "tank1",
		Targets: []TargetEndpoint{
			{
				TargetID: 1,
				Endpoint: "ep1",
				Memories: []MemoryDest{
					{MemoryID: 1, Offset: 10},
					{MemoryID: 2, Offset: 0},
				},
			},
		},
	}

	w := New(plan, Clients{"ep1": fake})

	err := w.Write(poller.PollResult{UnitID: "tank1", Distance: 120, Raw: 118, Healthy: true})
	require.NoError(t, err)

	require.Len(t, fake.writes, 2)
	assert.Equal(t, writeCall{area: 3, unitID: 1, addr: 10, regs: []uint16{120, 118}}, fake.writes[0])
	assert.Equal(t, writeCall{area: 3, unitID: 2, addr: 0, regs: []uint16{120, 118}}, fake.writes[1])
}

func TestWriter_WritesWhenUnhealthy(t *testing.T) {
	fake := &fakeEndpointClient{}
	plan := Plan{Targets: []TargetEndpoint{{Endpoint: "ep1", Memories: []MemoryDest{{MemoryID: 1}}}}}

	w := New(plan, Clients{"ep1": fake})
	require.NoError(t, w.Write(poller.PollResult{Distance: 20, Healthy: false}))

	assert.Len(t, fake.writes, 1)
}

func TestWriter_MissingClientAndFailures(t *testing.T) {
	bad := &fakeEndpointClient{fail: true}
	plan := Plan{
		Targets: []TargetEndpoint{
			{Endpoint: "gone", Memories: []MemoryDest{{MemoryID: 1}}},
			{Endpoint: "bad", Memories: []MemoryDest{{MemoryID: 1}}},
		},
	}

	err := New(plan, Clients{"bad": bad}).Write(poller.PollResult{Distance: 50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing client for endpoint gone")
	assert.Contains(t, err.Error(), "connection refused")
}

// ---- status writer ----

func statusPlan() Plan {
	return Plan{
		Status: []StatusPlan{
			{Endpoint: "status-endpoint", UnitID: 1, BaseSlot: 2, DeviceName: "DEV-01"},
		},
	}
}

func TestStatusWriter_Disabled(t *testing.T) {
	_, enabled := NewDeviceStatusWriter(Plan{}, Clients{})
	assert.False(t, enabled)
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, enabled := NewDeviceStatusWriter(statusPlan(), Clients{"status-endpoint": cli})
	require.True(t, enabled)

	// ---- first write: FULL ASSERT ----
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthOK}))

	full := cli.last()
	require.Len(t, full.regs, status.SlotsPerDevice)
	assert.Equal(t, uint16(2*status.SlotsPerDevice), full.addr)
	assert.Equal(t, status.HealthOK, full.regs[status.SlotHealthCode])
	assert.Equal(t,
		status.EncodeDeviceName("DEV-01"),
		full.regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1],
	)

	// ---- second write: INCREMENTAL ONLY ----
	require.NoError(t, sw.WriteStatus(status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  status.ErrorCodeTransport,
		SecondsInError: 1,
	}))

	require.Len(t, cli.writes, 4)
	for _, w := range cli.writes[1:] {
		assert.Len(t, w.regs, 1)
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), Clients{"status-endpoint": cli})

	require.NoError(t, sw.WriteStatus(status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  status.ErrorCodeTransport,
		SecondsInError: 3,
	}))
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthOK}))

	got := cli.last()
	assert.Equal(t, uint16(2*status.SlotsPerDevice+status.SlotSecondsInError), got.addr)
	assert.Equal(t, []uint16{0}, got.regs)
}

func TestStatusWriter_ReassertsAfterFailure(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(), Clients{"status-endpoint": cli})

	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthOK}))

	cli.fail = true
	assert.Error(t, sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 1}))

	cli.fail = false
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 1}))
	assert.Len(t, cli.last().regs, status.SlotsPerDevice)
}

func TestStatusWriter_FanoutPerTarget(t *testing.T) {
	a, b := &fakeEndpointClient{}, &fakeEndpointClient{}
	plan := Plan{Status: []StatusPlan{
		{Endpoint: "a", UnitID: 10},
		{Endpoint: "b", UnitID: 20},
	}}

	sw, _ := NewDeviceStatusWriter(plan, Clients{"a": a, "b": b})
	require.NoError(t, sw.WriteStatus(status.Snapshot{Health: status.HealthOK}))

	assert.Equal(t, uint8(10), a.last().unitID)
	assert.Equal(t, uint8(20), b.last().unitID)

	err := func() error {
		sw, _ := NewDeviceStatusWriter(plan, Clients{"a": a})
		return sw.WriteStatus(status.Snapshot{})
	}()
	assert.Error(t, err)
}

// ---- builder ----

func TestBuildPlan(t *testing.T) {
	slot := uint16(4)
	sid := uint8(100)

	u := cfg.UnitConfig{
		ID:     "tank1",
		Sensor: cfg.SensorConfig{StatusSlot: &slot, DeviceName: "TANK"},
		Targets: []cfg.TargetConfig{
			{ID: 1, Endpoint: "ep1", StatusUnitID: &sid, Memories: []cfg.MemoryConfig{{MemoryID: 1, Offset: 10}}},
			{ID: 2, Endpoint: "ep2", Memories: []cfg.MemoryConfig{{MemoryID: 3}}},
		},
	}

	plan, err := BuildPlan(u)
	require.NoError(t, err)

	assert.Equal(t, Plan{
		UnitID: "tank1",
		Targets: []TargetEndpoint{
			{TargetID: 1, Endpoint: "ep1", Memories: []MemoryDest{{MemoryID: 1, Offset: 10}}},
			{TargetID: 2, Endpoint: "ep2", Memories: []MemoryDest{{MemoryID: 3}}},
		},
		Status: []StatusPlan{{Endpoint: "ep1", UnitID: 100, BaseSlot: 4, DeviceName: "TANK"}},
	}, plan)

	_, err = BuildPlan(cfg.UnitConfig{})
	assert.Error(t, err)
}

func TestBuildEndpointClients_SharedPerEndpoint(t *testing.T) {
	units := []cfg.UnitConfig{
		{ID: "u1", Targets: []cfg.TargetConfig{{Endpoint: "ep1", Protocol: "modbus"}, {Endpoint: "ep2", Protocol: "ingest"}}},
		{ID: "u2", Targets: []cfg.TargetConfig{{Endpoint: "ep1", Protocol: "modbus"}}},
	}

	var made []EndpointSpec
	var fakes []*fakeEndpointClient
	factory := func(ep EndpointSpec) (closableClient, error) {
		made = append(made, ep)
		f := &fakeEndpointClient{}
		fakes = append(fakes, f)
		return f, nil
	}

	clients, closeAll, err := BuildEndpointClients(units, factory)
	require.NoError(t, err)
	assert.Len(t, clients, 2)
	assert.Len(t, made, 2)

	require.NoError(t, closeAll())
	for _, f := range fakes {
		assert.True(t, f.closed)
	}
}

func TestBuildEndpointClients_ProtocolConflict(t *testing.T) {
	units := []cfg.UnitConfig{
		{ID: "u1", Targets: []cfg.TargetConfig{{Endpoint: "ep1", Protocol: "modbus"}}},
		{ID: "u2", Targets: []cfg.TargetConfig{{Endpoint: "ep1", Protocol: "ingest"}}},
	}

	_, _, err := BuildEndpointClients(units, func(EndpointSpec) (closableClient, error) {
		return &fakeEndpointClient{}, nil
	})
	assert.Error(t, err)
}

func TestBuildEndpointClients_FactoryErrorClosesOpened(t *testing.T) {
	units := []cfg.UnitConfig{
		{ID: "u1", Targets: []cfg.TargetConfig{{Endpoint: "ep1"}, {Endpoint: "ep2"}}},
	}

	first := &fakeEndpointClient{}
	calls := 0
	_, _, err := BuildEndpointClients(units, func(EndpointSpec) (closableClient, error) {
		calls++
		if calls == 1 {
			return first, nil
		}
		return nil, errors.New("dial failed")
	})
	assert.Error(t, err)
	assert.True(t, first.closed)
}

func TestDefaultFactory(t *testing.T) {
	c, err := DefaultFactory(EndpointSpec{Endpoint: "127.0.0.1:1502", Protocol: ProtocolModbus})
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	c, err = DefaultFactory(EndpointSpec{Endpoint: "127.0.0.1:9000", Protocol: ProtocolIngest})
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	_, err = DefaultFactory(EndpointSpec{Endpoint: "x", Protocol: "mqtt"})
	assert.Error(t, err)
}
