package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

const StatusSection = "status"

// ReadStatus extracts the well-known fields of the status section. Missing
// fields stay nil; an unparsable battery level is reported as an error next
// to the fields that could be read.
func ReadStatus(root ConfigNode) (types.DeviceStatus, error) {
	var status types.DeviceStatus

	section, ok := root.Child(StatusSection)
	if !ok {
		return status, nil
	}

	status.SerialNumber = textOf(section, "serialnumber")
	status.Manufacturer = textOf(section, "manufacturer")
	status.Model = textOf(section, "cameramodel")

	if node, ok := section.Child("acpower"); ok {
		switch p := node.Payload.(type) {
		case Radio:
			on := p.Selected() == "On"
			status.ACPower = &on
		case Toggle:
			if p.Defined {
				on := p.Value
				status.ACPower = &on
			}
		}
	}

	if level := textOf(section, "batterylevel"); level != nil {
		v, err := parseBatteryLevel(*level)
		if err != nil {
			return status, err
		}
		status.BatteryLevel = &v
	}

	return status, nil
}

func textOf(section ConfigNode, name string) *string {
	node, ok := section.Child(name)
	if !ok {
		return nil
	}
	if t, ok := node.Payload.(Text); ok {
		v := t.Value
		return &v
	}
	return nil
}

// parseBatteryLevel turns "75%" into 0.75.
func parseBatteryLevel(s string) (float32, error) {
	number, _, _ := strings.Cut(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(number), 32)
	if err != nil {
		return 0, fmt.Errorf("battery level %q is not a number: %w", s, err)
	}
	return float32(v) / 100, nil
}
