package controller

import "github.com/google/uuid"

// randomID returns a fresh subscriber/correlation identifier.
func randomID() string {
	return uuid.NewString()
}
