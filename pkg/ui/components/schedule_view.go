package components

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	xlog "github.com/borgmon/dayplan/pkg/log"
	"github.com/borgmon/dayplan/pkg/models"
	"github.com/borgmon/dayplan/pkg/schedule"
	"github.com/borgmon/dayplan/pkg/store"
)

const hintTimeFormat = "15:04"

// ScheduleView is the week grid widget. It draws static event blocks,
// forwards pointer and keyboard snapshots to the interaction state
// machine, hosts the in-place title editor and flushes committed changes
// to the event store.
type ScheduleView struct {
	widget.BaseWidget

	grid    *schedule.Grid
	machine *schedule.Machine
	backend store.Backend
	logger  zerolog.Logger

	// mu guards events: the reminder goroutine snapshots the list while
	// the Fyne thread mutates it.
	mu     sync.RWMutex
	events []models.Event
	hints  []schedule.Hint
	editor *titleEditor

	// gesture bookkeeping between pointer callbacks
	pressedPrimary bool
	modifierHeld   bool
	dragging       bool
	gestureOnEmpty bool
	cursor         desktop.Cursor

	// OnEventsChanged fires after any reconciliation pass changed the
	// authoritative list.
	OnEventsChanged func()
}

// NewScheduleView creates the widget over a grid, its state machine and a
// backing store.
func NewScheduleView(grid *schedule.Grid, machine *schedule.Machine, backend store.Backend) *ScheduleView {
	s := &ScheduleView{
		grid:    grid,
		machine: machine,
		backend: backend,
		logger:  xlog.WithComponent("view"),
		cursor:  desktop.DefaultCursor,
	}
	s.editor = newTitleEditor(
		func() { s.finishEditing(true) },
		func() { s.finishEditing(false) },
		func(text string) {
			if active := s.machine.ActiveEvent(); active != nil {
				active.Title = text
			}
		},
	)
	s.ExtendBaseWidget(s)
	return s
}

// SetEvents replaces the authoritative event list, dropping any interaction
// in flight. Used on initial load and external reloads.
func (s *ScheduleView) SetEvents(events []models.Event) {
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
	s.hints = nil
	s.Refresh()
}

// Events returns a snapshot of the authoritative event list. Safe to call
// from other goroutines.
func (s *ScheduleView) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]models.Event, len(s.events))
	copy(snapshot, s.events)
	return snapshot
}

// frame advances the state machine with one input snapshot and reconciles
// the result.
func (s *ScheduleView) frame(in schedule.FrameInput) {
	if s.machine.ActiveEvent() == nil {
		if !s.dispatchToBlocks(in) {
			s.machine.InteractEmpty(in)
		}
	} else {
		active := s.machine.ActiveEvent()
		rect, _ := s.grid.EventRect(*active)
		_, hints := s.machine.InteractActive(rect, in)
		s.hints = hints

		// A drag that started on empty space keeps sizing the new event
		// from its anchor.
		if s.gestureOnEmpty {
			s.machine.InteractEmpty(in)
		}
	}

	s.reconcile()
	s.syncEditor()
	s.Refresh()
}

// dispatchToBlocks offers the gesture to each static block, reporting
// whether one claimed it.
func (s *ScheduleView) dispatchToBlocks(in schedule.FrameInput) bool {
	for i := range s.events {
		rect, ok := s.grid.EventRect(s.events[i])
		if !ok {
			continue
		}
		if s.machine.InteractStatic(s.events[i], rect, in) {
			return true
		}
	}
	return false
}

func (s *ScheduleView) reconcile() {
	if !s.flushChanges() {
		return
	}
	if s.OnEventsChanged != nil {
		s.OnEventsChanged()
	}
}

// flushChanges drains the machine into the list and pushes dirty entries
// to the store, reporting whether the list changed.
func (s *ScheduleView) flushChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.machine.Reconcile(&s.events)
	if res.Committed == nil && res.Deleted == "" {
		return false
	}

	// Optimistic ordering: the list is already updated, store writes
	// follow. Entries whose write fails stay dirty and are retried on the
	// next flush.
	for i := range s.events {
		if !s.events[i].Changed {
			continue
		}
		var err error
		if res.Appended && s.events[i].ID == res.Committed.ID {
			err = s.backend.CreateEvent(s.events[i])
		} else {
			err = s.backend.UpdateEvent(s.events[i])
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("id", s.events[i].ID).Msg("failed to persist event, keeping it dirty")
			continue
		}
		s.events[i].Changed = false
	}

	if res.Deleted != "" {
		if err := s.backend.DeleteEvent(res.Deleted); err != nil {
			s.logger.Warn().Err(err).Str("id", res.Deleted).Msg("failed to delete stored event")
		}
	}
	return true
}

// finishEditing ends the Editing interaction with a commit or a discard.
func (s *ScheduleView) finishEditing(commit bool) {
	state, ok := s.machine.ActiveState()
	if !ok || state != schedule.StateEditing {
		return
	}
	if commit {
		s.frame(schedule.FrameInput{EditorDone: true})
	} else {
		s.frame(schedule.FrameInput{Escape: true})
	}
}

// syncEditor shows, hides and focuses the title editor to match the
// machine state.
func (s *ScheduleView) syncEditor() {
	state, ok := s.machine.ActiveState()
	if !ok || state != schedule.StateEditing {
		if !s.editor.Hidden {
			s.editor.Hide()
		}
		return
	}

	active := s.machine.ActiveEvent()
	rect, visible := s.grid.EventRect(*active)
	if !visible {
		s.editor.Hide()
		return
	}

	if s.editor.Text != active.Title {
		s.editor.SetText(active.Title)
	}
	s.editor.Move(rect.Min)
	s.editor.Resize(fyne.NewSize(rect.Width(), rect.Height()))
	if s.editor.Hidden {
		s.editor.Show()
		if c := fyne.CurrentApp().Driver().CanvasForObject(s); c != nil {
			c.Focus(s.editor)
		}
	}
}

// MouseDown captures the gesture origin for the frames that follow.
func (s *ScheduleView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.pressedPrimary = true
	s.modifierHeld = ev.Modifier&fyne.KeyModifierControl != 0
	s.gestureOnEmpty = s.machine.ActiveEvent() == nil && s.blockAt(ev.Position) == nil
}

// MouseUp resets the pressed state; commits arrive through DragEnd or
// Tapped.
func (s *ScheduleView) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.pressedPrimary = false
}

// Dragged advances the active drag, starting one on its first call after a
// press.
func (s *ScheduleView) Dragged(ev *fyne.DragEvent) {
	started := !s.dragging
	s.dragging = true

	// A drag starting elsewhere while the title editor is focused commits
	// the edit, then the gesture proceeds on whatever is underneath.
	if started {
		if state, ok := s.machine.ActiveState(); ok && state == schedule.StateEditing {
			if active := s.machine.ActiveEvent(); active != nil {
				if rect, visible := s.grid.EventRect(*active); !visible || !rect.Contains(ev.Position) {
					s.finishEditing(true)
				}
			}
		}
		if s.machine.ActiveEvent() == nil {
			s.gestureOnEmpty = s.blockAt(ev.Position) == nil
		}
	}

	s.frame(schedule.FrameInput{
		Pos:         ev.Position,
		Primary:     s.pressedPrimary,
		DragStarted: started,
		Dragging:    true,
		Modifier:    s.modifierHeld,
	})
}

// DragEnd delivers the terminating frame of a drag gesture.
func (s *ScheduleView) DragEnd() {
	s.dragging = false
	s.frame(schedule.FrameInput{})
	s.gestureOnEmpty = false
}

// Tapped handles plain primary clicks.
func (s *ScheduleView) Tapped(ev *fyne.PointEvent) {
	// A click outside the open editor commits the title edit.
	if state, ok := s.machine.ActiveState(); ok && state == schedule.StateEditing {
		if active := s.machine.ActiveEvent(); active != nil {
			if rect, visible := s.grid.EventRect(*active); visible && !rect.Contains(ev.Position) {
				s.finishEditing(true)
			}
		}
		return
	}

	s.frame(schedule.FrameInput{
		Pos:     ev.Position,
		Clicked: true,
	})
}

// TappedSecondary opens the context menu for the block under the pointer.
func (s *ScheduleView) TappedSecondary(ev *fyne.PointEvent) {
	target := s.blockAt(ev.Position)
	if target == nil {
		return
	}

	id := target.ID
	deleteItem := fyne.NewMenuItem("Delete", func() {
		s.machine.RequestDelete(id)
		s.frame(schedule.FrameInput{})
	})

	c := fyne.CurrentApp().Driver().CanvasForObject(s)
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtPosition(fyne.NewMenu("", deleteItem), c, ev.AbsolutePosition)
}

// MouseIn implements desktop.Hoverable.
func (s *ScheduleView) MouseIn(ev *desktop.MouseEvent) {
	s.MouseMoved(ev)
}

// MouseMoved updates the hover cursor hint; hovering never starts an
// interaction.
func (s *ScheduleView) MouseMoved(ev *desktop.MouseEvent) {
	cursor := desktop.Cursor(desktop.DefaultCursor)
	if target := s.blockAt(ev.Position); target != nil {
		if rect, ok := s.grid.EventRect(*target); ok {
			switch s.machine.HoverCursor(rect, ev.Position) {
			case schedule.CursorResize:
				cursor = desktop.VResizeCursor
			case schedule.CursorGrab:
				cursor = desktop.PointerCursor
			}
		}
	}
	s.cursor = cursor
}

// MouseOut implements desktop.Hoverable.
func (s *ScheduleView) MouseOut() {
	s.cursor = desktop.DefaultCursor
}

// Cursor implements desktop.Cursorable.
func (s *ScheduleView) Cursor() desktop.Cursor {
	return s.cursor
}

func (s *ScheduleView) blockAt(pos fyne.Position) *models.Event {
	for i := range s.events {
		rect, ok := s.grid.EventRect(s.events[i])
		if !ok {
			continue
		}
		if rect.Contains(pos) {
			return &s.events[i]
		}
	}
	return nil
}

// CreateRenderer implements fyne.Widget.
func (s *ScheduleView) CreateRenderer() fyne.WidgetRenderer {
	return &scheduleViewRenderer{
		view:       s,
		background: canvas.NewRectangle(theme.BackgroundColor()),
	}
}

type scheduleViewRenderer struct {
	view       *ScheduleView
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *scheduleViewRenderer) Layout(size fyne.Size) {
	r.view.grid.Size = size
	r.background.Resize(size)
	r.Refresh()
}

func (r *scheduleViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(560, 400)
}

func (r *scheduleViewRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.view)
}

// rebuild regenerates the full draw list: grid chrome, static blocks, the
// interacting block, drag hints and the editor overlay.
func (r *scheduleViewRenderer) rebuild() {
	objs := []fyne.CanvasObject{r.background}

	objs = append(objs, r.gridChrome()...)

	active := r.view.machine.ActiveEvent()
	for _, event := range r.view.events {
		if active != nil && event.ID == active.ID {
			continue
		}
		objs = append(objs, r.eventBlock(event, false)...)
	}
	if active != nil {
		objs = append(objs, r.eventBlock(*active, true)...)
	}

	for _, hint := range r.view.hints {
		label := canvas.NewText(hint.Time.Format(hintTimeFormat), theme.ForegroundColor())
		label.TextStyle = fyne.TextStyle{Monospace: true}
		label.TextSize = theme.CaptionTextSize()
		label.Move(fyne.NewPos(hint.Rect.Min.X+2, hint.Rect.Min.Y))
		objs = append(objs, label)
	}

	objs = append(objs, r.view.editor)
	r.objects = objs
}

// gridChrome draws day headers, hour lines and hour labels.
func (r *scheduleViewRenderer) gridChrome() []fyne.CanvasObject {
	g := r.view.grid
	objs := []fyne.CanvasObject{}

	for day := 0; day < g.Days; day++ {
		x := g.GutterWidth + float32(day)*g.ColumnWidth()

		sep := canvas.NewLine(theme.ShadowColor())
		sep.Position1 = fyne.NewPos(x, g.HeaderHeight)
		sep.Position2 = fyne.NewPos(x, g.Size.Height)
		objs = append(objs, sep)

		header := canvas.NewText(g.FirstDay.AddDate(0, 0, day).Format("Mon 02"), theme.ForegroundColor())
		header.TextSize = theme.CaptionTextSize()
		header.Move(fyne.NewPos(x+4, 2))
		objs = append(objs, header)
	}

	for hour := g.DayStart; hour <= g.DayEnd; hour++ {
		t := g.FirstDay.Add(time.Duration(hour) * time.Hour)
		pos, ok := g.PosAt(t)
		if !ok {
			// Midnight of the next day sits on the bottom edge.
			pos = fyne.NewPos(g.GutterWidth, g.Size.Height)
		}

		line := canvas.NewLine(theme.ShadowColor())
		line.Position1 = fyne.NewPos(g.GutterWidth, pos.Y)
		line.Position2 = fyne.NewPos(g.Size.Width, pos.Y)
		objs = append(objs, line)

		label := canvas.NewText(fmt.Sprintf("%02d:00", hour%24), theme.ForegroundColor())
		label.TextSize = theme.CaptionTextSize()
		label.Move(fyne.NewPos(2, pos.Y-6))
		objs = append(objs, label)
	}

	return objs
}

func (r *scheduleViewRenderer) eventBlock(event models.Event, interacting bool) []fyne.CanvasObject {
	rect, ok := r.view.grid.EventRect(event)
	if !ok {
		return nil
	}

	block := canvas.NewRectangle(theme.PrimaryColor())
	if interacting {
		block.FillColor = theme.FocusColor()
		block.StrokeColor = theme.ForegroundColor()
		block.StrokeWidth = 1
	}
	block.CornerRadius = 3
	block.Move(rect.Min)
	block.Resize(fyne.NewSize(rect.Width()-2, rect.Height()-1))

	title := canvas.NewText(event.Title, theme.ForegroundColor())
	title.TextSize = theme.CaptionTextSize()
	title.Move(fyne.NewPos(rect.Min.X+4, rect.Min.Y+2))

	return []fyne.CanvasObject{block, title}
}

func (r *scheduleViewRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *scheduleViewRenderer) Destroy() {
}
