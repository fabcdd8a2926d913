package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// AuditLog entries are append-only: written once, never updated, only
// listed and bulk-cleared by a sysadmin.
type AuditLog struct {
	ID        string `json:"id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Action    string `json:"action" validate:"required"`
	Target    string `json:"target,omitempty"`
	Timestamp string `json:"timestamp" validate:"required"`
	Details   string `json:"details,omitempty"`
}

func NewAuditLog(userID, action, target, details string) AuditLog {
	return AuditLog{
		ID:        NewID("log"),
		UserID:    userID,
		Action:    action,
		Target:    target,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   details,
	}
}

type Setting struct {
	ID      string `json:"id" validate:"required"`
	Payload string `json:"payload,omitempty"`
}

type Backup struct {
	ID        string `json:"id" validate:"required"`
	CreatedAt string `json:"created_at,omitempty"`
	Note      string `json:"note,omitempty"`
	Payload   string `json:"payload,omitempty"`
}

func (a *AuditLog) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
