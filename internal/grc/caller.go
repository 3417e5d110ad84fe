package grc

import "github.com/google/uuid"

// Caller is the authenticated identity an operation runs on behalf of.
// The zero value is an anonymous caller.
type Caller struct {
	UserID uuid.UUID
}

func (c Caller) Authenticated() bool {
	return c.UserID != uuid.Nil
}
