package models

type Book struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BookSnapshot is the copy of a book's fields recorded in activity details.
type BookSnapshot struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (b *Book) Snapshot() BookSnapshot {
	return BookSnapshot{Name: b.Name, Description: b.Description}
}
