package domain

// Key identifies a single attribute: the fact Type about the entity ID.
type Key struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (k Key) String() string {
	return k.Type + "/" + k.ID
}
