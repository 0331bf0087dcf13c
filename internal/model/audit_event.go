package model

import "time"

const (
	AuditUserRegistered = "user_registered"
	AuditLoginFailed    = "login_failed"
	AuditPostCreated    = "post_created"
	AuditPostUpdated    = "post_updated"
	AuditPostDeleted    = "post_deleted"
)

// AuditEvent is an append-only marker row. Failed logins are recorded here
// without any lockout counter attached to the account.
type AuditEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"size:32;not null;index" json:"action"`
	UserID    string    `gorm:"type:char(36);index" json:"user_id"`
	Email     string    `gorm:"size:128" json:"email"`
	Detail    string    `gorm:"size:255" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
