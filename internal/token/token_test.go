package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

func testCodec() *Codec {
	return NewCodec("unit-secret", time.Hour, time.Hour, 24*time.Hour)
}

func TestRegistrationRoundTrip(t *testing.T) {
	c := testCodec()
	raw := `{"firstName":"Ana","lastName":"Ruiz","email":"ana@example.com","role":"RENTOR"}`

	tok, err := c.MintRegistration(raw)
	require.NoError(t, err)

	data, err := c.VerifyRegistration(tok)
	require.NoError(t, err)
	assert.Equal(t, "Ana", data.FirstName)
	assert.Equal(t, "ana@example.com", data.Email)
	assert.Equal(t, model.RoleRentor, data.Role)
}

func TestRestorationRoundTrip(t *testing.T) {
	c := testCodec()

	tok, err := c.MintRestoration(`{"id":17,"email":"ana@example.com"}`)
	require.NoError(t, err)

	data, err := c.VerifyRestoration(tok)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), data.ID)
	assert.Equal(t, "ana@example.com", data.Email)
}

func TestSessionRoundTrip(t *testing.T) {
	c := testCodec()

	tok, err := c.MintSession(99)
	require.NoError(t, err)

	id, err := c.VerifySession(tok)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), id)
}

// A token minted for one scope must fail verification in every other.
func TestScopeIsolation(t *testing.T) {
	c := testCodec()

	regTok, err := c.MintRegistration(`{"email":"a@b.co","role":"CLIENT"}`)
	require.NoError(t, err)
	resTok, err := c.MintRestoration(`{"id":5,"email":"a@b.co"}`)
	require.NoError(t, err)
	sessTok, err := c.MintSession(5)
	require.NoError(t, err)

	cases := []struct {
		name string
		fn   func() error
	}{
		{"restoration token as registration", func() error { _, err := c.VerifyRegistration(resTok); return err }},
		{"session token as registration", func() error { _, err := c.VerifyRegistration(sessTok); return err }},
		{"registration token as restoration", func() error { _, err := c.VerifyRestoration(regTok); return err }},
		{"session token as restoration", func() error { _, err := c.VerifyRestoration(sessTok); return err }},
		{"registration token as session", func() error { _, err := c.VerifySession(regTok); return err }},
		{"restoration token as session", func() error { _, err := c.VerifySession(resTok); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn()
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
		})
	}
}

func TestWrongSecret(t *testing.T) {
	tok, err := testCodec().MintSession(7)
	require.NoError(t, err)

	other := NewCodec("different-secret", time.Hour, time.Hour, 24*time.Hour)
	_, err = other.VerifySession(tok)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestExpiredToken(t *testing.T) {
	c := NewCodec("unit-secret", -time.Minute, -time.Minute, -time.Minute)

	tok, err := c.MintSession(7)
	require.NoError(t, err)
	_, err = c.VerifySession(tok)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestGarbageToken(t *testing.T) {
	c := testCodec()
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := c.VerifySession(tok)
		assert.Error(t, err, tok)
	}
}
