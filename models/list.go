package models

import "time"

const (
	// DefaultListTitle pre-fills the title of the new-list form.
	DefaultListTitle = "To-Do List"
	// MaxListTitleLength bounds List.Title in runes.
	MaxListTitleLength = 200
	// MinEntryTextLength and MaxEntryTextLength bound Entry.Text in runes.
	MinEntryTextLength = 2
	MaxEntryTextLength = 200
)

// List is a named collection of entries owned by a user.
type List struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	OwnerID    *int64    `json:"ownerId,omitempty"` // nil only under the anonymous-owner policy
	OwnerName  string    `json:"ownerName,omitempty"`
	Public     bool      `json:"public"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Entries    []Entry   `json:"entries,omitempty"`
}

// OwnedBy reports whether the viewer is the list's owner.
func (l List) OwnedBy(v Viewer) bool {
	if v.IsAnonymous() || l.OwnerID == nil {
		return false
	}
	return *l.OwnerID == v.UserID
}

// Entry is a single to-do item belonging to exactly one list.
type Entry struct {
	ID        int64  `json:"id"`
	ListID    int64  `json:"listId"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ListFields captures the user-editable attributes of a list.
type ListFields struct {
	Title  string `json:"title"`
	Public bool   `json:"public"`
}

// EntryFields captures the user-editable attributes of an entry.
type EntryFields struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}
