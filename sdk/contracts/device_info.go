package contracts

// DeviceInfo contains information about a MIDI output or audio input device.
type DeviceInfo struct {
	ID           int    // Index of the device as reported by the driver.
	Name         string // Device name.
	Manufacturer string // Device manufacturer, when the driver reports one.
	EntityName   string // Name of the entity to which the device belongs.
	Channels     int    // Maximum input channels (audio devices only).
}
