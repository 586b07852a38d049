package entity

import "time"

// DbOutstandingToken records every refresh token handed out, keyed by jti.
type DbOutstandingToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JTI       string    `gorm:"column:jti;type:varchar(64);uniqueIndex;not null" json:"jti"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null" json:"expires_at"`
}

// TableName overrides default pluralised name.
func (DbOutstandingToken) TableName() string {
	return "outstanding_tokens"
}

// DbBlacklistedToken marks a refresh token as no longer honoured.
type DbBlacklistedToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"blacklisted_at"`
	JTI       string    `gorm:"column:jti;type:varchar(64);uniqueIndex;not null" json:"jti"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null" json:"expires_at"`
}

// TableName overrides default pluralised name.
func (DbBlacklistedToken) TableName() string {
	return "blacklisted_tokens"
}
