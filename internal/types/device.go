package types

import "fmt"

// DeviceDescriptor identifies a device by display name and port. Compared by value.
type DeviceDescriptor struct {
	Name string `json:"name" yaml:"name" binding:"required"`
	Port string `json:"port" yaml:"port" binding:"required"`
}

func (d DeviceDescriptor) String() string {
	return fmt.Sprintf("%s@%s", d.Name, d.Port)
}

type Abilities struct {
	CapturePreview bool     `json:"capture_preview" yaml:"capture_preview"`
	CaptureImage   bool     `json:"capture_image" yaml:"capture_image"`
	Config         bool     `json:"config" yaml:"config"`
	Operations     []string `json:"operations,omitempty" yaml:"operations,omitempty"`
}

type StorageInfo struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	CapacityKB  uint64 `json:"capacity_kb" yaml:"capacity_kb"`
	FreeKB      uint64 `json:"free_kb" yaml:"free_kb"`
}

// Device Runtime Info
type DeviceInfo struct {
	Model     string        `json:"model"`
	Port      string        `json:"port"`
	About     string        `json:"about,omitempty"`
	Manual    string        `json:"manual,omitempty"`
	Summary   string        `json:"summary,omitempty"`
	Abilities Abilities     `json:"abilities"`
	Storages  []StorageInfo `json:"storages"`
}

// DeviceStatus is read from the "status" section of a config tree. Nil fields were not reported.
type DeviceStatus struct {
	SerialNumber *string  `json:"serial_number,omitempty"`
	Manufacturer *string  `json:"manufacturer,omitempty"`
	Model        *string  `json:"model,omitempty"`
	ACPower      *bool    `json:"ac_power,omitempty"`
	BatteryLevel *float32 `json:"battery_level,omitempty"` // 0-1
}
