package models

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"gorm.io/gorm"
)

// Session is a server-side login session, validated on every authenticated
// request. The token travels in a cookie for browsers; API clients use JWT
// bearer tokens instead and never touch this table.
type Session struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SessionToken string `gorm:"uniqueIndex;not null" json:"session_token"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	User         User   `gorm:"foreignKey:UserID" json:"-"`

	UserAgent string `json:"user_agent,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`

	ExpiresAt      time.Time `gorm:"not null;index" json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// NewSession creates a session for the user with a fresh random token.
func NewSession(user *User, userAgent, ipAddress string, lifetime time.Duration) (*Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		SessionToken:   token,
		UserID:         user.ID,
		UserAgent:      userAgent,
		IPAddress:      ipAddress,
		ExpiresAt:      now.Add(lifetime),
		LastAccessedAt: now,
	}, nil
}

// GenerateSessionToken returns a 256-bit random token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch records session activity.
func (s *Session) Touch(db *gorm.DB) error {
	s.LastAccessedAt = time.Now()
	return db.Model(s).Update("last_accessed_at", s.LastAccessedAt).Error
}
