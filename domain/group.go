package domain

type GroupID int64

// Group is a named chat room. Never updated nor deleted.
type Group struct {
	ID   GroupID
	Name string
}

// NewGroup is the insert payload of a group.
type NewGroup struct {
	Name      string
	CreatedBy string
}
