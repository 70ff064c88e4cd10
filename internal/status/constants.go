// internal/status/constants.go
package status

// Register layout constants for the replicated memories.
// These values define the protocol and MUST NOT be configurable.

// ---- DATA BLOCK ----

// DataBlockRegisters is the size of the per-unit data block.
const DataBlockRegisters = 2

// DataSlotDistance holds the filtered, clamped distance in cm.
const DataSlotDistance = 0

// DataSlotRawDistance holds the last decoded first-echo distance in cm.
const DataSlotRawDistance = 1

// ---- STATUS BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the device has been unhealthy.
const SlotSecondsInError = 2

// ---- RESERVED RANGE ----

// Slots 3..10 are reserved.
const SlotReservedStart = 3
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// SecondsInErrorMax is where seconds_in_error saturates.
const SecondsInErrorMax = 65535

// ---- HEALTH CODES ----

// HealthUnknown: no poll has completed yet.
const HealthUnknown uint16 = 0

// HealthOK: the last bus transactions succeeded.
const HealthOK uint16 = 1

// HealthError: the last bus transactions failed.
const HealthError uint16 = 2

// ---- ERROR CODES ----

// ErrorCodeNone is written while healthy.
const ErrorCodeNone uint16 = 0

// ErrorCodeTransport covers every bus failure (NACK, timeout, contention).
const ErrorCodeTransport uint16 = 1
