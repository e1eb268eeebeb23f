// model/audit_log.go
package model

import "time"

// MetaData is the request context captured with every audit event.
// All three fields are encrypted at rest; Location is optional.
type MetaData struct {
	IP       EncryptedString `gorm:"column:ip" json:"ip"`
	Device   EncryptedString `gorm:"column:device" json:"device"`
	Location EncryptedString `gorm:"column:location" json:"location,omitempty"`
}

// AuditLog is one ingested audit event. It is created once by the
// ingestion pipeline, with the timestamp assigned server-side, and is
// immutable afterwards; only the retention purge removes it.
type AuditLog struct {
	ID        uint64          `gorm:"primaryKey" json:"id"`
	UserID    EncryptedString `gorm:"column:user_id" json:"userId"`
	Action    EncryptedString `gorm:"column:action" json:"action"`
	Target    EncryptedString `gorm:"column:target" json:"target"`
	Meta      MetaData        `gorm:"embedded;embeddedPrefix:meta_" json:"meta"`
	CreatedAt time.Time       `gorm:"column:created_at;index" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
