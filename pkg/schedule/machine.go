package schedule

import (
	"time"

	"fyne.io/fyne/v2"

	"github.com/borgmon/dayplan/pkg/models"
)

// State identifies what kind of manipulation is in flight for the event
// under interaction.
type State int

const (
	StateEditing State = iota
	StateDragging
	StateDraggingStart
	StateDraggingEnd
	StateCloning
)

// Outcome is the result of advancing the active interaction by one frame.
type Outcome int

const (
	OutcomeNone      Outcome = iota // no interaction active
	OutcomeActive                   // still interacting
	OutcomeCommitted                // working copy handed to the commit slot
	OutcomeDiscarded                // working copy dropped
)

// Cursor is the pointer hint the renderer should show while hovering.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorResize
	CursorGrab
)

// FrameInput is the snapshot of pointer and keyboard state for one frame.
type FrameInput struct {
	Pos         fyne.Position // pointer position in grid coordinates
	Primary     bool          // primary button held
	DragStarted bool          // primary drag began this frame
	Dragging    bool          // primary drag in progress
	Clicked     bool          // primary press and release without a drag
	Modifier    bool          // clone modifier held
	Escape      bool          // cancel key pressed this frame
	EditorDone  bool          // title editor lost focus or was clicked away from
}

// Interaction is the transient record of the one event being manipulated.
// Its Event is a working copy; the authoritative list is untouched until
// the interaction commits.
type Interaction struct {
	Event models.Event
	State State
}

// Hint is a pending boundary time the renderer displays while a drag or
// resize is in progress.
type Hint struct {
	Time time.Time
	Rect Rect
}

// ReconcileResult reports what a reconciliation pass applied.
type ReconcileResult struct {
	Committed *models.Event // merged into the list, Changed set
	Appended  bool          // the commit added a new entry rather than replacing one
	Deleted   string        // identity removed from the list
}

// DefaultResizerHeight is the height of the top and bottom resize bands of
// an event block.
const DefaultResizerHeight float32 = 6

// Machine owns the lifecycle of an event under active manipulation. At
// most one interaction and one pending deletion exist at a time; only
// Reconcile mutates the authoritative list.
type Machine struct {
	geom          Geometry
	minDuration   time.Duration
	resizerHeight float32

	active        *Interaction
	committed     *models.Event
	pendingDelete string

	dragOffset float32
	hasOffset  bool

	// new-event creation bookkeeping
	newEventID string
	anchor     time.Time
}

// NewMachine creates an interaction state machine over the given geometry
// adapter. minDuration is the shortest event a resize or creation drag may
// produce.
func NewMachine(geom Geometry, minDuration time.Duration) *Machine {
	return &Machine{
		geom:          geom,
		minDuration:   minDuration,
		resizerHeight: DefaultResizerHeight,
	}
}

// ActiveEvent returns the working copy of the event under interaction, or
// nil. The renderer may mutate its title through this pointer while the
// interaction is in the Editing state.
func (m *Machine) ActiveEvent() *models.Event {
	if m.active == nil {
		return nil
	}
	return &m.active.Event
}

// ActiveState returns the state of the active interaction.
func (m *Machine) ActiveState() (State, bool) {
	if m.active == nil {
		return 0, false
	}
	return m.active.State, true
}

// RequestDelete records a pending deletion for the next reconciliation
// pass. Only one deletion may be pending at a time.
func (m *Machine) RequestDelete(id string) {
	m.pendingDelete = id
}

// HoverCursor returns the pointer hint for hovering over a static block.
// Hovering never starts an interaction.
func (m *Machine) HoverCursor(rect Rect, pos fyne.Position) Cursor {
	if !rect.Contains(pos) {
		return CursorDefault
	}
	upper, lower := m.resizerRegions(rect)
	if upper.Contains(pos) || lower.Contains(pos) {
		return CursorResize
	}
	return CursorGrab
}

// InteractStatic classifies the frame's gesture against a static event
// block and starts an interaction when the gesture calls for one. It
// reports whether an interaction began.
func (m *Machine) InteractStatic(event models.Event, rect Rect, in FrameInput) bool {
	if m.active != nil {
		return false
	}

	state, ok := m.classifyRegion(rect, in)
	if !ok {
		return false
	}

	switch state {
	case StateCloning:
		// The clone enters Dragging immediately; the original stays put.
		m.captureDragOffset(rect, in)
		m.active = &Interaction{Event: event.Clone(), State: StateDragging}
	case StateDragging:
		m.captureDragOffset(rect, in)
		m.active = &Interaction{Event: event, State: StateDragging}
	default:
		m.active = &Interaction{Event: event, State: state}
	}
	return true
}

// InteractActive advances the active interaction by one frame, returning
// the outcome and any boundary-time hints to display.
func (m *Machine) InteractActive(rect Rect, in FrameInput) (Outcome, []Hint) {
	if m.active == nil {
		return OutcomeNone, nil
	}
	if m.active.State == StateEditing {
		return m.stepEditing(in), nil
	}
	return m.stepDragging(rect, in)
}

// InteractEmpty handles gestures on empty grid space: starting a new event
// by dragging, sizing it on subsequent frames, and abandoning a stray
// interaction on a plain click.
func (m *Machine) InteractEmpty(in FrameInput) {
	if in.DragStarted && in.Primary && m.active == nil {
		initTime, ok := m.geom.TimeAt(in.Pos)
		if !ok {
			return
		}
		event := models.NewEvent()
		state, ok := m.assignNewEventTimes(&event, initTime, in)
		if !ok {
			return
		}
		m.anchor = initTime
		m.newEventID = event.ID
		m.active = &Interaction{Event: event, State: state}
		return
	}

	if in.Clicked {
		if m.active != nil && m.active.State == StateEditing {
			m.commit()
		} else {
			m.discard()
		}
		return
	}

	if in.Dragging && in.Primary && m.active != nil && m.newEventID != "" && m.active.Event.ID == m.newEventID {
		if state, ok := m.assignNewEventTimes(&m.active.Event, m.anchor, in); ok {
			m.active.State = state
		}
	}
}

// Reconcile drains the pending commit and deletion into the authoritative
// list. Commit is applied first so a deletion requested in the same frame
// is not starved.
func (m *Machine) Reconcile(events *[]models.Event) ReconcileResult {
	var res ReconcileResult

	if m.committed != nil {
		committed := *m.committed
		m.committed = nil
		committed.MarkChanged()

		updated := false
		for i := range *events {
			if (*events)[i].ID == committed.ID {
				(*events)[i] = committed
				updated = true
			}
		}
		if !updated {
			*events = append(*events, committed)
			res.Appended = true
		}
		res.Committed = &committed
	}

	if m.pendingDelete != "" {
		id := m.pendingDelete
		m.pendingDelete = ""

		kept := (*events)[:0]
		for _, event := range *events {
			if event.ID != id {
				kept = append(kept, event)
			}
		}
		*events = kept
		res.Deleted = id
	}

	return res
}

func (m *Machine) stepEditing(in FrameInput) Outcome {
	if in.Escape {
		m.discard()
		return OutcomeDiscarded
	}
	if in.EditorDone {
		m.commit()
		return OutcomeCommitted
	}
	return OutcomeActive
}

func (m *Machine) stepDragging(rect Rect, in FrameInput) (Outcome, []Hint) {
	if !in.Dragging {
		// The gesture ended. A drag that sized a brand-new event hands it
		// to the title editor instead of committing.
		if m.newEventID != "" && m.active.Event.ID == m.newEventID {
			m.newEventID = ""
			m.active.State = StateEditing
			return OutcomeActive, nil
		}
		m.commit()
		return OutcomeCommitted, nil
	}

	hints := m.updateDragTimes(rect, in)

	// A drag released quickly enough registers as a click. Editing takes
	// precedence once entered; nothing overrides it back to a drag state.
	if state, ok := m.classifyRegion(rect, in); ok && state == StateEditing {
		m.active.State = StateEditing
	}
	return OutcomeActive, hints
}

func (m *Machine) updateDragTimes(rect Rect, in FrameInput) []Hint {
	event := &m.active.Event
	upper, lower := m.resizerRegions(rect)

	switch m.active.State {
	case StateDraggingStart:
		t, ok := m.geom.TimeAt(in.Pos)
		if !ok {
			return nil
		}
		moveEventStart(event, t, m.minDuration)
		return []Hint{{Time: event.Start, Rect: upper}}

	case StateDraggingEnd:
		t, ok := m.geom.TimeAt(in.Pos)
		if !ok {
			return nil
		}
		moveEventEnd(event, t, m.minDuration)
		return []Hint{{Time: event.End, Rect: lower}}

	case StateDragging:
		pos := in.Pos
		if m.hasOffset {
			// Keep the block's top edge tracking its grab point rather
			// than jumping under the pointer.
			pos.Y += m.dragOffset
		}
		t, ok := m.geom.TimeAt(pos)
		if !ok {
			return nil
		}
		moveEvent(event, t)
		return []Hint{
			{Time: event.Start, Rect: upper},
			{Time: event.End, Rect: lower},
		}
	}
	return nil
}

// assignNewEventTimes sizes a freshly created event between the creation
// anchor and the current pointer time. A drag that crossed midnight pins
// the event to a minimum span on the anchor's day, in the direction the
// anchor sits in its day.
func (m *Machine) assignNewEventTimes(event *models.Event, anchor time.Time, in FrameInput) (State, bool) {
	current, ok := m.geom.TimeAt(in.Pos)
	if !ok {
		return 0, false
	}

	start, end := anchor, current
	reordered := reorderTimes(&start, &end)

	if !onSameDay(start, end) {
		if dayProgress(anchor) < 0.5 {
			start = anchor
			end = anchor.Add(m.minDuration)
		} else {
			end = anchor
			start = anchor.Add(-m.minDuration)
		}
	}

	event.Start = start
	event.End = end

	if reordered {
		return StateDraggingStart, true
	}
	return StateDraggingEnd, true
}

func (m *Machine) classifyRegion(rect Rect, in FrameInput) (State, bool) {
	if !rect.Contains(in.Pos) {
		return 0, false
	}

	if in.Clicked {
		return StateEditing, true
	}

	upper, lower := m.resizerRegions(rect)
	dragStart := in.DragStarted && in.Primary

	if upper.Contains(in.Pos) {
		if dragStart {
			return StateDraggingStart, true
		}
		return 0, false
	}
	if lower.Contains(in.Pos) {
		if dragStart {
			return StateDraggingEnd, true
		}
		return 0, false
	}

	if dragStart && in.Modifier {
		return StateCloning, true
	}
	if dragStart {
		return StateDragging, true
	}
	return 0, false
}

func (m *Machine) resizerRegions(rect Rect) (upper, lower Rect) {
	h := m.resizerHeight
	if half := rect.Height() / 2; h > half {
		h = half
	}
	upper = Rect{Min: rect.Min, Max: fyne.NewPos(rect.Max.X, rect.Min.Y+h)}
	lower = Rect{Min: fyne.NewPos(rect.Min.X, rect.Max.Y-h), Max: rect.Max}
	return upper, lower
}

func (m *Machine) captureDragOffset(rect Rect, in FrameInput) {
	m.dragOffset = rect.Min.Y - in.Pos.Y
	m.hasOffset = true
}

func (m *Machine) commit() {
	if m.active == nil {
		return
	}
	event := m.active.Event
	m.committed = &event
	m.clearActive()
}

func (m *Machine) discard() {
	m.clearActive()
}

func (m *Machine) clearActive() {
	m.active = nil
	m.hasOffset = false
	m.dragOffset = 0
	m.newEventID = ""
}
