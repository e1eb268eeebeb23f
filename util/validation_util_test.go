// util/validation_util_test.go
package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracebit-io/tracebit/model"
)

func validRequest() model.AuditLogRequest {
	return model.AuditLogRequest{
		UserID: "user_7",
		Action: "LOGIN",
		Target: "dashboard",
		Meta: model.MetaDataRequest{
			IP:     "93.184.216.34",
			Device: "Chrome on macOS",
		},
	}
}

func TestValidateUserID(t *testing.T) {
	v := NewValidationUtil()

	cases := []struct {
		userID string
		valid  bool
	}{
		{"user_7", true},
		{"user_12345", true},
		{"a@b.com", true},
		{"alice@example.co.uk", true},
		{"not-an-id", false},
		{"user_", false},
		{"user_abc", false},
		{"@example.com", false},
		{"alice@example", false},
		{"", false},
	}

	for _, tc := range cases {
		err := v.ValidateUserID(tc.userID)
		if tc.valid {
			assert.Nil(t, err, "userID %q", tc.userID)
		} else {
			require.NotNil(t, err, "userID %q", tc.userID)
			assert.Contains(t, err.Fields, "userId")
		}
	}
}

func TestValidateIP(t *testing.T) {
	v := NewValidationUtil()

	cases := []struct {
		ip    string
		valid bool
	}{
		{"93.184.216.34", true},
		{"8.8.8.8", true},
		{"255.255.255.255", true},
		{"10.0.0.5", false},
		{"192.168.1.1", false},
		{"172.16.0.9", false},
		{"127.0.0.1", false},
		{"0.0.0.0", false},
		{"169.254.1.1", false},
		{"256.1.1.1", false},
		{"1.2.3", false},
		{"not an ip", false},
		{"", false},
	}

	for _, tc := range cases {
		err := v.ValidateIP(tc.ip)
		if tc.valid {
			assert.Nil(t, err, "ip %q", tc.ip)
		} else {
			require.NotNil(t, err, "ip %q", tc.ip)
			assert.Contains(t, err.Fields, "meta.ip")
		}
	}
}

func TestValidateDevice(t *testing.T) {
	v := NewValidationUtil()

	assert.Nil(t, v.ValidateDevice("Chrome on macOS"))
	assert.Nil(t, v.ValidateDevice("12345"))

	err := v.ValidateDevice("abcd")
	require.NotNil(t, err)
	assert.Contains(t, err.Fields, "meta.device")

	err = v.ValidateDevice("")
	require.NotNil(t, err)
}

func TestValidateAuditLogRequest(t *testing.T) {
	v := NewValidationUtil()

	assert.Nil(t, v.ValidateAuditLogRequest(validRequest()))

	bad := validRequest()
	bad.UserID = "not-an-id"
	err := v.ValidateAuditLogRequest(bad)
	require.NotNil(t, err)
	assert.Contains(t, err.Fields, "userId")

	bad = validRequest()
	bad.Meta.IP = "10.0.0.5"
	err = v.ValidateAuditLogRequest(bad)
	require.NotNil(t, err)
	assert.Contains(t, err.Fields, "meta.ip")

	bad = validRequest()
	bad.Meta.Device = "abc"
	err = v.ValidateAuditLogRequest(bad)
	require.NotNil(t, err)
	assert.Contains(t, err.Fields, "meta.device")
}
