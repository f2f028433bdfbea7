package model

import "time"

// User is an author who signed in with Google.
type User struct {
	ID       UserID `json:"id"`
	GoogleID string `json:"-"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Picture  string `json:"picture,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
