// model/alert_rule.go
package model

import "time"

// MatchType is the operator an alert rule applies to the selected field.
type MatchType string

const (
	MatchTypeExact    MatchType = "EXACT"
	MatchTypeContains MatchType = "CONTAINS"
	MatchTypeRegex    MatchType = "REGEX"
)

func (t MatchType) Valid() bool {
	switch t {
	case MatchTypeExact, MatchTypeContains, MatchTypeRegex:
		return true
	}
	return false
}

// MatchField names the audit-event field an alert rule inspects.
type MatchField string

const (
	MatchFieldSubjectID MatchField = "SUBJECT_ID"
	MatchFieldAction    MatchField = "ACTION"
	MatchFieldTarget    MatchField = "TARGET"
)

func (f MatchField) Valid() bool {
	switch f {
	case MatchFieldSubjectID, MatchFieldAction, MatchFieldTarget:
		return true
	}
	return false
}

// AlertRule is a tenant-scoped rule evaluated against every newly
// persisted audit event. Pattern and callback URL are encrypted at
// rest. Inactive rules are kept for audit but never matched.
type AlertRule struct {
	ID          uint64          `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"column:name;uniqueIndex:idx_rules_startup_name" json:"name"`
	Description string          `gorm:"column:description" json:"description"`
	StartupID   string          `gorm:"column:startup_id;index;uniqueIndex:idx_rules_startup_name" json:"startupId"`
	MatchType   MatchType       `gorm:"column:match_type" json:"matchType"`
	MatchField  MatchField      `gorm:"column:match_field" json:"matchField"`
	Pattern     EncryptedString `gorm:"column:pattern" json:"pattern"`
	CallbackURL EncryptedString `gorm:"column:callback_url" json:"callbackUrl"`
	SecretToken string          `gorm:"column:secret_token" json:"secretToken,omitempty"`
	Active      bool            `gorm:"column:active;index" json:"active"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   *time.Time      `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (AlertRule) TableName() string {
	return "alert_rules"
}
