// util/validation_util.go

package util

import (
	"net"
	"regexp"

	tb_errors "github.com/tracebit-io/tracebit/errors"
	"github.com/tracebit-io/tracebit/model"
)

var (
	emailPattern  = regexp.MustCompile(`^.+@.+\..+$`)
	userIDPattern = regexp.MustCompile(`^user_\d+$`)
	ipv4Pattern   = regexp.MustCompile(`^((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.|$)){4}$`)
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

// ValidateAuditLogRequest runs the domain checks on an ingestion payload.
// It fails on the first offending field; nothing is built from a payload
// that does not pass in full.
func (v *ValidationUtil) ValidateAuditLogRequest(req model.AuditLogRequest) *tb_errors.ValidationError {
	if err := v.ValidateUserID(req.UserID); err != nil {
		return err
	}
	if err := v.ValidateIP(req.Meta.IP); err != nil {
		return err
	}
	if err := v.ValidateDevice(req.Meta.Device); err != nil {
		return err
	}
	return nil
}

// ValidateUserID accepts an email-like identifier or a user_<digits> id.
func (v *ValidationUtil) ValidateUserID(userID string) *tb_errors.ValidationError {
	if userID == "" || (!emailPattern.MatchString(userID) && !userIDPattern.MatchString(userID)) {
		return tb_errors.FieldError("userId", "invalid user ID format: must be email or user_123")
	}
	return nil
}

// ValidateIP requires a well-formed IPv4 literal that is externally
// routable. Loopback, link-local, site-local, and unspecified addresses
// are rejected; this endpoint only accepts real client IPs.
func (v *ValidationUtil) ValidateIP(ip string) *tb_errors.ValidationError {
	if ip == "" || !ipv4Pattern.MatchString(ip) {
		return tb_errors.FieldError("meta.ip", "invalid IP address format")
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return tb_errors.FieldError("meta.ip", "invalid IP address")
	}
	if parsed.IsUnspecified() || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() {
		return tb_errors.FieldError("meta.ip", "private or local IPs are not allowed")
	}
	return nil
}

// ValidateDevice requires a device string of at least 5 characters.
func (v *ValidationUtil) ValidateDevice(device string) *tb_errors.ValidationError {
	if len(device) < 5 {
		return tb_errors.FieldError("meta.device", "invalid or incomplete device info")
	}
	return nil
}
