package models

import (
	"fmt"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/random"
	"time"
)

// userIDLength is the number of random bytes in a player id.
const userIDLength = 64

// User is an anonymous player identity. Progress is keyed by ID.
type User struct {
	ID          []byte `db:"id"`
	DisplayName string `db:"display_name"`
}

// NewUser creates an anonymous user with a random ID.
func NewUser() (*User, error) {
	id, err := random.Bytes(userIDLength)
	if err != nil {
		return nil, errors.Wrap(err, "generate user ID")
	}
	return &User{
		ID:          id,
		DisplayName: fmt.Sprintf("Anonymous player created at %s", time.Now().Format(time.RFC3339)),
	}, nil
}
