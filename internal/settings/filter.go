package settings

// Exclusions is the read-only set of setting names hidden from display.
type Exclusions map[string]struct{}

func NewExclusions(names []string) Exclusions {
	ex := make(Exclusions, len(names))
	for _, name := range names {
		ex[name] = struct{}{}
	}
	return ex
}

func (e Exclusions) Contains(name string) bool {
	_, ok := e[name]
	return ok
}

// Visible returns a copy of root without excluded nodes, at any depth.
// The root itself is never excluded.
func Visible(root ConfigNode, ex Exclusions) ConfigNode {
	if len(ex) == 0 || !root.IsGroup() {
		return root
	}

	kept := make([]ConfigNode, 0)
	for _, child := range root.Children() {
		if ex.Contains(child.Name) {
			continue
		}
		kept = append(kept, Visible(child, ex))
	}

	// A subset of a valid group cannot repeat an id.
	g, _ := newGroup(kept, false)
	root.Payload = g
	return root
}
