package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// titleEditor is the in-place single-line editor for an event title.
// Escape cancels the edit; Return or losing focus commits it.
type titleEditor struct {
	widget.Entry

	onCommit func()
	onCancel func()
}

func newTitleEditor(onCommit, onCancel func(), onChanged func(string)) *titleEditor {
	e := &titleEditor{
		onCommit: onCommit,
		onCancel: onCancel,
	}
	e.ExtendBaseWidget(e)
	e.OnChanged = onChanged
	e.Hide()
	return e
}

func (e *titleEditor) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyEscape:
		if e.onCancel != nil {
			e.onCancel()
		}
	case fyne.KeyReturn, fyne.KeyEnter:
		if e.onCommit != nil {
			e.onCommit()
		}
	default:
		e.Entry.TypedKey(ev)
	}
}

func (e *titleEditor) FocusLost() {
	e.Entry.FocusLost()
	if e.onCommit != nil {
		e.onCommit()
	}
}
