// model/requests.go
package model

import "time"

// AuditLogRequest is the ingestion payload. Structural checks are gin
// binding tags; the domain checks (subject format, routable IP, device
// length) live in util.
type AuditLogRequest struct {
	UserID string          `json:"userId" binding:"required"`
	Action string          `json:"action" binding:"required"`
	Target string          `json:"target" binding:"required"`
	Meta   MetaDataRequest `json:"meta" binding:"required"`
}

type MetaDataRequest struct {
	IP       string `json:"ip" binding:"required"`
	Device   string `json:"device" binding:"required"`
	Location string `json:"location"`
}

// AlertRuleRequest carries a full rule definition for create and update.
type AlertRuleRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	StartupID   string     `json:"startupId" binding:"required"`
	MatchType   MatchType  `json:"matchType" binding:"required"`
	MatchField  MatchField `json:"matchField" binding:"required"`
	Pattern     string     `json:"pattern" binding:"required"`
	CallbackURL string     `json:"callbackUrl" binding:"required"`
	SecretToken string     `json:"secretToken"`
	Active      *bool      `json:"active" binding:"required"`
}

// AuditLogSearch is the decoded filter set for the listing endpoint.
type AuditLogSearch struct {
	UserID string
	Action string
	From   time.Time
	To     time.Time
	Page   int
	Size   int
}

// AlertWebhookPayload is the JSON body delivered to a rule's callback
// URL when the rule fires. Field names are part of the wire contract.
type AlertWebhookPayload struct {
	RuleID     uint64     `json:"ruleId"`
	RuleName   string     `json:"ruleName"`
	MatchField MatchField `json:"matchField"`
	MatchType  MatchType  `json:"matchType"`
	AuditLogID uint64     `json:"auditLogId"`
	UserID     string     `json:"userId"`
	Action     string     `json:"action"`
	Target     string     `json:"target"`
	Timestamp  time.Time  `json:"timestamp"`
}
