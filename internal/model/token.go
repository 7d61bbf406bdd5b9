package model

import "time"

// RefreshToken mirrors an issued refresh JWT. A refresh token is only
// honored while its row exists, so deleting rows invalidates sessions
// out-of-band. Rotation deletes the presented row and inserts the
// replacement in one transaction.
type RefreshToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"type:varchar(512);uniqueIndex;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired checks if the token row has passed its expiry
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
