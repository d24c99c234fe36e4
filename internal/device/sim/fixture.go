package sim

import "github.com/KevinKickass/OpenCameraCore/internal/types"

type Fixture struct {
	FailList bool            `yaml:"fail_list"`
	Devices  []DeviceFixture `yaml:"devices"`
}

type DeviceFixture struct {
	Name      string              `yaml:"name"`
	Port      string              `yaml:"port"`
	About     string              `yaml:"about"`
	Manual    string              `yaml:"manual"`
	Summary   string              `yaml:"summary"`
	Abilities types.Abilities     `yaml:"abilities"`
	Storages  []types.StorageInfo `yaml:"storages"`
	Preview   PreviewSpec         `yaml:"preview"`
	Fail      Failures            `yaml:"fail"`
	Config    WidgetSpec          `yaml:"config"`
}

type PreviewSpec struct {
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
	Corrupt bool `yaml:"corrupt"`
}

// Failures injects errors into individual device calls.
type Failures struct {
	Open       bool     `yaml:"open"`
	ReadConfig bool     `yaml:"read_config"`
	Capture    bool     `yaml:"capture"`
	Write      []string `yaml:"write"`
}

// WidgetSpec is one node of a fixture's config tree. Unreadable lists the
// accessors ("id", "name", "label", "readonly", "type", "value", "children",
// "choices") that fail when read.
type WidgetSpec struct {
	ID         int          `yaml:"id"`
	Name       string       `yaml:"name"`
	Label      string       `yaml:"label"`
	ReadOnly   bool         `yaml:"readonly"`
	Type       string       `yaml:"type"`
	Text       string       `yaml:"text"`
	Value      float32      `yaml:"value"`
	Min        float32      `yaml:"min"`
	Max        float32      `yaml:"max"`
	Step       float32      `yaml:"step"`
	Toggled    *bool        `yaml:"toggled"`
	Choices    []string     `yaml:"choices"`
	Choice     string       `yaml:"choice"`
	Timestamp  int64        `yaml:"timestamp"`
	Unreadable []string     `yaml:"unreadable"`
	Children   []WidgetSpec `yaml:"children"`
}

func (w WidgetSpec) clone() WidgetSpec {
	c := w
	if w.Toggled != nil {
		v := *w.Toggled
		c.Toggled = &v
	}
	c.Choices = append([]string(nil), w.Choices...)
	c.Unreadable = append([]string(nil), w.Unreadable...)
	if w.Children != nil {
		c.Children = make([]WidgetSpec, len(w.Children))
		for i, child := range w.Children {
			c.Children[i] = child.clone()
		}
	}
	return c
}

// find returns the first widget named name, depth-first.
func (w *WidgetSpec) find(name string) *WidgetSpec {
	if w.Name == name && w.Type != "window" && w.Type != "section" {
		return w
	}
	for i := range w.Children {
		if found := w.Children[i].find(name); found != nil {
			return found
		}
	}
	return nil
}
