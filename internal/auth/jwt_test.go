package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pujcovna/internal/auth"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	iss := &auth.Issuer{Secret: []byte("s3cret"), TTL: time.Hour, Now: fixedClock(now)}

	tok, err := iss.Issue("u-admin", "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), tok.Exp)

	claims, err := iss.Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	iss := &auth.Issuer{Secret: []byte("s3cret"), TTL: time.Minute, Now: fixedClock(now)}
	tok, err := iss.Issue("u-staff", "STAFF")
	require.NoError(t, err)

	iss.Now = fixedClock(now.Add(2 * time.Minute))
	_, err = iss.Parse(tok.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssuer_RejectsForeignSignature(t *testing.T) {
	a := auth.NewIssuer("one", time.Hour)
	b := auth.NewIssuer("two", time.Hour)
	tok, err := a.Issue("u-staff", "STAFF")
	require.NoError(t, err)

	_, err = b.Parse(tok.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = b.Parse("not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
