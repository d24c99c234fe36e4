package settings

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Change describes a leaf whose value differs between two reads.
// Old is nil for an added leaf, New is nil for a removed one.
type Change struct {
	Path string
	Name string
	Old  Payload
	New  Payload
}

// Diff compares the leaves of two trees, keyed by their id path.
func Diff(before, after ConfigNode) []Change {
	old := leaves(before)
	cur := leaves(after)

	var changes []Change
	for path, o := range old {
		n, ok := cur[path]
		switch {
		case !ok:
			changes = append(changes, Change{Path: path, Name: o.Name, Old: o.Payload})
		case !reflect.DeepEqual(o.Payload, n.Payload):
			changes = append(changes, Change{Path: path, Name: n.Name, Old: o.Payload, New: n.Payload})
		}
	}
	for path, n := range cur {
		if _, ok := old[path]; !ok {
			changes = append(changes, Change{Path: path, Name: n.Name, New: n.Payload})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

func leaves(root ConfigNode) map[string]ConfigNode {
	out := make(map[string]ConfigNode)
	collect(root, nil, out)
	return out
}

func collect(n ConfigNode, prefix []string, out map[string]ConfigNode) {
	path := append(prefix[:len(prefix):len(prefix)], strconv.Itoa(n.ID))
	if !n.IsGroup() {
		out["/"+strings.Join(path, "/")] = n
		return
	}
	for _, child := range n.Children() {
		collect(child, path, out)
	}
}
