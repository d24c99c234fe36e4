package settings

import "encoding/json"

// MarshalJSON flattens the payload next to the node attributes under a "kind" tag.
func (n ConfigNode) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":       n.ID,
		"name":     n.Name,
		"label":    n.DisplayLabel(),
		"readonly": n.ReadOnly,
		"kind":     n.Kind(),
	}

	switch p := n.Payload.(type) {
	case Group:
		out["children"] = p.Children()
	case Text:
		out["value"] = p.Value
	case Range:
		out["value"] = p.Value
		out["min"] = p.Min
		out["max"] = p.Max
		out["step"] = p.Step
	case Toggle:
		out["defined"] = p.Defined
		out["value"] = p.Value
	case Radio:
		out["choices"] = p.Choices
		out["value"] = p.Selected()
		_, listed := p.Selection.Index()
		out["listed"] = listed
	case Date:
		out["timestamp"] = p.Timestamp
	}

	return json.Marshal(out)
}
