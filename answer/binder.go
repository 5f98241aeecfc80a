// Package answer keeps the displayed answer paired with the citations that
// support it.
package answer

import "github.com/SaiNageswarS/heywrite/gateway"

// Answer is a point-in-time copy of the binder state.
type Answer struct {
	Text         string
	PreviousText string
	HasPrevious  bool
	Sources      []gateway.Citation
}

// Binder owns the displayed text, its citations and the single undo slot.
// Binder is not safe for concurrent use.
type Binder struct {
	text        string
	sources     []gateway.Citation
	previous    string
	hasPrevious bool

	// shownAtBegin is what was displayed when the pending generation
	// started. A failed generation leaves the display empty, so the next
	// Begin records "".
	shownAtBegin string
	begun        bool
}

// Begin clears the visible text and citations ahead of a generation call.
func (b *Binder) Begin() {
	b.shownAtBegin = b.text
	b.begun = true
	b.text = ""
	b.sources = nil
}

// Bind installs a freshly generated text with its citations, replacing any
// prior citations. The text displayed when the generation began becomes the
// undo target; an empty display leaves nothing to undo.
func (b *Binder) Bind(text string, sources []gateway.Citation) {
	if !b.begun {
		b.Begin()
	}
	b.previous = b.shownAtBegin
	b.hasPrevious = b.previous != ""
	b.begun = false
	b.text = text
	b.sources = append([]gateway.Citation(nil), sources...)
}

// Undo shows the previous text again and drops the citations, which belong to
// the replaced text. Repeated calls return the same text.
func (b *Binder) Undo() (string, bool) {
	if !b.hasPrevious {
		return "", false
	}
	b.text = b.previous
	b.sources = nil
	return b.previous, true
}

// Clear forgets everything, including the undo slot.
func (b *Binder) Clear() {
	*b = Binder{}
}

func (b *Binder) Text() string {
	return b.text
}

func (b *Binder) Snapshot() Answer {
	return Answer{
		Text:         b.text,
		PreviousText: b.previous,
		HasPrevious:  b.hasPrevious,
		Sources:      append([]gateway.Citation(nil), b.sources...),
	}
}
