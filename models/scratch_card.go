package models

import "time"

// ScratchCard is a one-time reward unit. Prize stays nil until the card is
// scratched and never changes afterwards.
type ScratchCard struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Prize     *int      `json:"prize"`
	Scratched bool      `json:"scratched"`
	CreatedAt time.Time `json:"created_at"`
}
