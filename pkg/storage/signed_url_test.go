package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("group_1_20250601.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	name, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "group_1_20250601.csv", name)
}

func TestDownloadSignerRejectsExpired(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	signer.ttl = -time.Minute
	token, _, err := signer.Sign("report.csv")
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Sign("report.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + ".Li4vZXRjL3Bhc3N3ZA." + parts[2]
	_, err = signer.Verify(forged)
	require.Error(t, err)

	_, err = NewDownloadSigner("other-secret", time.Hour).Verify(token)
	require.Error(t, err)

	_, err = signer.Verify("not-a-token")
	require.Error(t, err)
}
