package order

import "time"

// Note is one immutable audit entry on the order, ordered by creation.
type Note struct {
	ID        int       `json:"id" dynamodbav:"id"`
	Text      string    `json:"text" dynamodbav:"text"`
	Private   bool      `json:"private" dynamodbav:"private"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// AddNote appends a note to the order log and returns its id.
func (o *Order) AddNote(text string, private bool) int {
	id := len(o.notes) + 1
	o.notes = append(o.notes, Note{
		ID:        id,
		Text:      text,
		Private:   private,
		CreatedAt: o.nowFunc(),
	})
	return id
}

// RestoreNotes replaces the note log. For persistence collaborators
// rehydrating an order; everything else goes through AddNote.
func (o *Order) RestoreNotes(notes []Note) {
	o.notes = make([]Note, len(notes))
	copy(o.notes, notes)
}

// Notes returns the note log in creation order.
func (o *Order) Notes() []Note {
	out := make([]Note, len(o.notes))
	copy(out, o.notes)
	return out
}
