package models

import "time"

// TokenPayload is the verified content of a staff auth token
type TokenPayload struct {
	Login     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
