package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("job1", "reports/weekly_w1.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	jobID, relPath, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "job1", jobID)
	assert.Equal(t, "reports/weekly_w1.csv", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExp.Unix())
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, _, err := signer.Generate("job1", "reports/weekly_w1.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 4)
	parts[0] = "job2"
	tampered := strings.Join(parts, ".")

	_, _, _, err = signer.Parse(tampered, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestSignedURLRejectsWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	other := NewSignedURLSigner("different", time.Hour)

	token, _, err := signer.Generate("job1", "reports/weekly_w1.csv")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	// Negative TTL produces an already-expired token signed with the real
	// secret, so only the expiry check can fail.
	expiredSigner := &SignedURLSigner{secret: []byte("secret"), ttl: -time.Minute}
	expired, _, err := expiredSigner.Generate("job1", "reports/weekly_w1.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(expired, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	jobID, relPath, _, err := signer.Parse(expired, true)
	require.NoError(t, err)
	assert.Equal(t, "job1", jobID)
	assert.Equal(t, "reports/weekly_w1.csv", relPath)
}

func TestSignedURLRejectsMalformedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	for _, token := range []string{"", "one.two", "a.b.c.d.e"} {
		_, _, _, err := signer.Parse(token, false)
		assert.Error(t, err)
	}
}
