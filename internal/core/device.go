package core

// DeviceType indicates the kind of playback device.
type DeviceType string

const (
	DeviceTypeSpeaker  DeviceType = "speaker"
	DeviceTypeComputer DeviceType = "computer"
	DeviceTypePhone    DeviceType = "phone"
	DeviceTypeTV       DeviceType = "tv"
)

// Device represents a Spotify Connect playback device.
type Device struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     DeviceType `json:"type"`
	IsActive bool       `json:"is_active"`
}
