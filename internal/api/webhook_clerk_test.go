package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(t *testing.T, secret, id, timestamp string, payload []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyClerkSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"type":"user.created"}`)
	id, timestamp := "msg_1", "1700000000"
	valid := sign(t, secret, id, timestamp, payload)

	assert.True(t, verifyClerkSignature(payload, id, timestamp, valid, secret))
	assert.True(t, verifyClerkSignature(payload, id, timestamp, "v0,garbage "+valid, secret),
		"a leading unrelated token must not prevent a later valid one from matching")
	assert.False(t, verifyClerkSignature(payload, id, timestamp, valid, "wrong-secret"))
	assert.False(t, verifyClerkSignature([]byte(`{"tampered":true}`), id, timestamp, valid, secret))
	assert.False(t, verifyClerkSignature(payload, id, timestamp, "", secret))
	assert.False(t, verifyClerkSignature(payload, "", timestamp, valid, secret))
	assert.False(t, verifyClerkSignature(payload, id, "", valid, secret))
}

func TestClerkEventHelpers(t *testing.T) {
	var e clerkEvent
	e.Data.FirstName = "Ada"
	e.Data.LastName = "Lovelace"
	e.Data.EmailAddresses = append(e.Data.EmailAddresses, struct {
		EmailAddress string `json:"email_address"`
	}{EmailAddress: "ada@example.com"})

	assert.Equal(t, "ada@example.com", e.email())
	assert.Equal(t, "Ada Lovelace", e.displayName())

	var noName clerkEvent
	noName.Data.EmailAddresses = append(noName.Data.EmailAddresses, struct {
		EmailAddress string `json:"email_address"`
	}{EmailAddress: "anon@example.com"})
	assert.Equal(t, "anon@example.com", noName.displayName())

	var empty clerkEvent
	assert.Equal(t, "", empty.email())
}
