package model

import "time"

// RefreshToken stores the SHA-256 hash of an opaque refresh token, never the
// raw value. At most one active (non-revoked, non-expired) row per user:
// issuing a new token revokes the prior ones.
type RefreshToken struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64     `gorm:"column:user_id;index;not null" json:"userId"`
	TokenHash string     `gorm:"column:token_hash;size:64;not null;uniqueIndex:uk_refresh_tokens_hash" json:"-"`
	ExpiresAt time.Time  `gorm:"column:expires_at;index;not null" json:"expiresAt"`
	RevokedAt *time.Time `gorm:"column:revoked_at;index" json:"revokedAt,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}
