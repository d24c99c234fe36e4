package settings

import "fmt"

type ApplyState int

const (
	StateClean ApplyState = iota
	StateDirty
	StateApplying
)

func (s ApplyState) String() string {
	switch s {
	case StateClean:
		return "CLEAN"
	case StateDirty:
		return "DIRTY"
	case StateApplying:
		return "APPLYING"
	default:
		return "UNKNOWN"
	}
}

// Edit is a pending change to one leaf of the last-read tree.
type Edit struct {
	ParentID int
	Node     ConfigNode
}

// ModifiedSet holds pending edits keyed by leaf id. Last edit wins; the
// position of the first edit of an id is kept.
type ModifiedSet struct {
	state ApplyState
	edits map[int]Edit
	order []int
}

func NewModifiedSet() *ModifiedSet {
	return &ModifiedSet{edits: make(map[int]Edit)}
}

func (m *ModifiedSet) State() ApplyState { return m.state }

// Blocked reports whether further edits are refused.
func (m *ModifiedSet) Blocked() bool { return m.state == StateApplying }

func (m *ModifiedSet) Len() int { return len(m.order) }

func (m *ModifiedSet) Get(id int) (Edit, bool) {
	e, ok := m.edits[id]
	return e, ok
}

// Edits returns the pending edits in insertion order.
func (m *ModifiedSet) Edits() []Edit {
	out := make([]Edit, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.edits[id])
	}
	return out
}

func (m *ModifiedSet) Record(parentID int, node ConfigNode) error {
	if m.state == StateApplying {
		return ErrApplyInProgress
	}
	if node.IsGroup() {
		return fmt.Errorf("%w: %s is a group", ErrKindMismatch, node.Name)
	}

	if _, exists := m.edits[node.ID]; !exists {
		m.order = append(m.order, node.ID)
	}
	m.edits[node.ID] = Edit{ParentID: parentID, Node: node}
	m.state = StateDirty

	return nil
}

// Discard drops every pending edit without touching the device.
func (m *ModifiedSet) Discard() error {
	if m.state == StateApplying {
		return ErrApplyInProgress
	}
	m.clear()
	m.state = StateClean
	return nil
}

// BeginApply drains the pending edits into a batch and blocks further edits
// until FinishApply.
func (m *ModifiedSet) BeginApply() ([]Edit, error) {
	switch m.state {
	case StateApplying:
		return nil, ErrApplyInProgress
	case StateClean:
		return nil, ErrNothingToApply
	}

	batch := m.Edits()
	m.clear()
	m.state = StateApplying

	return batch, nil
}

// FinishApply ends an apply whatever its outcome.
func (m *ModifiedSet) FinishApply() {
	if m.state == StateApplying {
		m.state = StateClean
	}
}

func (m *ModifiedSet) clear() {
	m.edits = make(map[int]Edit)
	m.order = nil
}
