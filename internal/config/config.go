// internal/config/config.go
package config

type Config struct {
	Rangefinder RangefinderConfig `yaml:"rangefinder"`
}

type RangefinderConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Units   []UnitConfig  `yaml:"units"`
}

// ---- METRICS ----

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the /metrics endpoint
}

// ---- UNIT ----

type UnitConfig struct {
	ID      string         `yaml:"id"`
	Sensor  SensorConfig   `yaml:"sensor"`
	Filter  FilterConfig   `yaml:"filter"`
	Poll    PollConfig     `yaml:"poll"`
	Targets []TargetConfig `yaml:"targets"`
}

// ---- SENSOR ----

type SensorConfig struct {
	Backend string `yaml:"backend"` // periph | embd
	Bus     string `yaml:"bus"`
	Address uint8  `yaml:"address"`

	MeasureDelayMs int  `yaml:"measure_delay_ms"`
	MinDistanceCm  int  `yaml:"min_distance_cm"`
	MaxDistanceCm  int  `yaml:"max_distance_cm"`
	EchoCount      int  `yaml:"echo_count"`
	CaptureTiming  bool `yaml:"capture_timing"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

// ---- FILTER ----

type FilterConfig struct {
	Kind   string `yaml:"kind"` // mode | none
	Window int    `yaml:"window"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- TARGET ----

type TargetConfig struct {
	ID           uint32         `yaml:"id"`
	Endpoint     string         `yaml:"endpoint"` // host:port, or rtu:/dev/ttyX for modbus
	Protocol     string         `yaml:"protocol"` // modbus | ingest
	TimeoutMs    int            `yaml:"timeout_ms"`
	StatusUnitID *uint8         `yaml:"status_unit_id"` // per-target status memory (optional)
	Memories     []MemoryConfig `yaml:"memories"`
}

type MemoryConfig struct {
	MemoryID uint8  `yaml:"memory_id"` // unit id of the memory on the endpoint
	Offset   uint16 `yaml:"offset"`    // first holding register of the data block
}
