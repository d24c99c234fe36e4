// Package settings models the configuration/status tree a device reports.
//
// A tree is rebuilt from scratch on every read-back and never mutated in place;
// pending edits live in a ModifiedSet until they are applied or discarded.
package settings

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

var (
	ErrReadOnly        = errors.New("setting is read-only")
	ErrKindMismatch    = errors.New("value does not match setting kind")
	ErrApplyInProgress = errors.New("settings are being applied")
	ErrNothingToApply  = errors.New("no modified settings to apply")
	ErrSettingNotFound = errors.New("setting not found")
)

// ConfigNode is one node of the configuration tree.
type ConfigNode struct {
	ID       int
	Name     string
	Label    string
	ReadOnly bool
	Payload  Payload
}

// Payload is one of Group, Text, Range, Toggle, Radio, Date or Button.
type Payload interface {
	kind() string
}

// Group is the only payload with children. Children are ordered by id and
// indexed by name; the index is built once and never updated.
type Group struct {
	children map[int]ConfigNode
	order    []int
	names    map[string]int
}

type Text struct {
	Value string
}

// Range holds Min <= Value <= Max with Step > 0.
type Range struct {
	Value float32
	Min   float32
	Max   float32
	Step  float32
}

// Toggle with Defined=false is an indeterminate tri-state; Value is meaningless then.
type Toggle struct {
	Defined bool
	Value   bool
}

// Radio selects one of Choices, or carries a device-reported value that is not listed.
type Radio struct {
	Choices   []string
	Selection Selection
}

type Date struct {
	Timestamp int64
}

// Button is stateless; writing it triggers a side effect on the device.
type Button struct{}

func (Group) kind() string  { return "group" }
func (Text) kind() string   { return "text" }
func (Range) kind() string  { return "range" }
func (Toggle) kind() string { return "toggle" }
func (Radio) kind() string  { return "radio" }
func (Date) kind() string   { return "date" }
func (Button) kind() string { return "button" }

// Selection is either an index into Radio.Choices or an unlisted value.
type Selection struct {
	index   int
	other   string
	isOther bool
}

func Indexed(i int) Selection { return Selection{index: i} }

func Other(value string) Selection { return Selection{other: value, isOther: true} }

// Index returns the selected index, or false for an Other selection.
func (s Selection) Index() (int, bool) {
	if s.isOther {
		return 0, false
	}
	return s.index, true
}

// Selected returns the selected value as the device knows it.
func (r Radio) Selected() string {
	if i, ok := r.Selection.Index(); ok && i < len(r.Choices) {
		return r.Choices[i]
	}
	return r.Selection.other
}

// newGroup indexes children by id and by name. With strict names a repeated
// name is an error; otherwise the child with the highest id owns the name.
func newGroup(children []ConfigNode, strict bool) (Group, error) {
	g := Group{
		children: make(map[int]ConfigNode, len(children)),
		order:    make([]int, 0, len(children)),
		names:    make(map[string]int, len(children)),
	}

	for _, child := range children {
		if _, dup := g.children[child.ID]; dup {
			return Group{}, fmt.Errorf("%w: %d (%s)", types.ErrDuplicateID, child.ID, child.Name)
		}
		g.children[child.ID] = child
		g.order = append(g.order, child.ID)
	}
	sort.Ints(g.order)

	for _, id := range g.order {
		name := g.children[id].Name
		if _, dup := g.names[name]; dup && strict {
			return Group{}, fmt.Errorf("%w: %q", types.ErrDuplicateName, name)
		}
		g.names[name] = id
	}

	return g, nil
}

// Len returns the number of children.
func (g Group) Len() int { return len(g.order) }

// Children returns the children ordered by id.
func (g Group) Children() []ConfigNode {
	out := make([]ConfigNode, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.children[id])
	}
	return out
}

func (g Group) ChildByID(id int) (ConfigNode, bool) {
	n, ok := g.children[id]
	return n, ok
}

func (g Group) ChildByName(name string) (ConfigNode, bool) {
	id, ok := g.names[name]
	if !ok {
		return ConfigNode{}, false
	}
	return g.children[id], true
}

// Kind returns the payload kind name ("group", "text", "range", ...).
func (n ConfigNode) Kind() string {
	if n.Payload == nil {
		return ""
	}
	return n.Payload.kind()
}

func (n ConfigNode) IsGroup() bool {
	_, ok := n.Payload.(Group)
	return ok
}

// DisplayLabel falls back to the name when the device reports no label.
func (n ConfigNode) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Name
}

// Child looks up an immediate child by name. Only groups have children.
func (n ConfigNode) Child(name string) (ConfigNode, bool) {
	g, ok := n.Payload.(Group)
	if !ok {
		return ConfigNode{}, false
	}
	return g.ChildByName(name)
}

// Children returns the immediate children ordered by id, nil for leaves.
func (n ConfigNode) Children() []ConfigNode {
	g, ok := n.Payload.(Group)
	if !ok {
		return nil
	}
	return g.Children()
}

// Path follows names from n downwards.
func (n ConfigNode) Path(names ...string) (ConfigNode, bool) {
	cur := n
	for _, name := range names {
		next, ok := cur.Child(name)
		if !ok {
			return ConfigNode{}, false
		}
		cur = next
	}
	return cur, true
}

// Walk visits every node depth-first in id order. parentID is -1 for n itself.
// Returning false from fn stops the walk.
func (n ConfigNode) Walk(fn func(parentID int, node ConfigNode) bool) {
	walk(-1, n, fn)
}

func walk(parentID int, n ConfigNode, fn func(int, ConfigNode) bool) bool {
	if !fn(parentID, n) {
		return false
	}
	for _, child := range n.Children() {
		if !walk(n.ID, child, fn) {
			return false
		}
	}
	return true
}

// Find locates the child id of the group parentID.
func (n ConfigNode) Find(parentID, id int) (ConfigNode, bool) {
	var (
		found ConfigNode
		ok    bool
	)
	n.Walk(func(_ int, node ConfigNode) bool {
		if node.ID != parentID {
			return true
		}
		if g, isGroup := node.Payload.(Group); isGroup {
			found, ok = g.ChildByID(id)
		}
		return !ok
	})
	return found, ok
}

// Equal reports structural equality of two trees.
func Equal(a, b ConfigNode) bool {
	return reflect.DeepEqual(a, b)
}
