package models

import "time"

// Audit actions recorded by the backend. Translation entries are written by
// the content pipeline itself, one per auto-translated field.
const (
	AuditActionCreate        = "create"
	AuditActionUpdate        = "update"
	AuditActionDelete        = "delete"
	AuditActionTranslate     = "deepl_translate"
	AuditActionLogin         = "login"
	AuditActionPasswordReset = "password_reset"
)

// AuditLog is an immutable trail record. Rows are only ever inserted.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Resource  string    `db:"resource" json:"resource"`
	Action    string    `db:"action" json:"action"`
	Changes   []byte    `db:"changes" json:"changes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TranslationChange is the audit payload written for each auto-translated
// field. Original and Translated hold a string for scalar fields and a
// string slice for tag lists.
type TranslationChange struct {
	Field      string      `json:"field"`
	Original   interface{} `json:"original"`
	Translated interface{} `json:"translated"`
}
