// Package token implements the scoped token codec. Three token scopes
// exist (registration, password restoration and session) and each one is
// minted and verified through its own pair of methods with its own payload
// claim, so a token presented to the wrong verifier always fails closed.
package token

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/model"
)

// Claim names are scope identifiers: a registration token carries only
// registerData, a restoration token only passwordRestorationData, a session
// token only id. Verification requires the matching claim to be present.
const (
	claimRegister    = "registerData"
	claimRestoration = "passwordRestorationData"
	claimSessionID   = "id"
)

// RegistrationData is the decoded payload of a registration token: the
// pending-registration record captured at confirm time.
type RegistrationData struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
}

// RestorationData is the decoded payload of a password restoration token.
type RestorationData struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// Codec signs and verifies all scoped tokens with a single process-wide
// secret. TTLs are fixed per scope at construction.
type Codec struct {
	secret     []byte
	regTTL     time.Duration
	restoreTTL time.Duration
	sessionTTL time.Duration
}

func NewCodec(secret string, regTTL, restoreTTL, sessionTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		regTTL:     regTTL,
		restoreTTL: restoreTTL,
		sessionTTL: sessionTTL,
	}
}

// MintRegistration wraps the raw pending-registration JSON, base64-encoded
// and untouched, into a signed registration token. The JSON is carried
// verbatim rather than re-marshalled so the token payload is byte-identical
// to what the code store held.
func (c *Codec) MintRegistration(rawJSON string) (string, error) {
	return c.sign(jwt.MapClaims{
		claimRegister: base64.StdEncoding.EncodeToString([]byte(rawJSON)),
	}, c.regTTL)
}

// VerifyRegistration validates a registration token and decodes its
// payload. Any signature, expiry or payload problem yields Unauthorized.
func (c *Codec) VerifyRegistration(tok string) (RegistrationData, error) {
	var data RegistrationData
	if err := c.verifyScoped(tok, claimRegister, &data); err != nil {
		return RegistrationData{}, err
	}
	return data, nil
}

// MintRestoration wraps the raw {id,email} JSON stored under the reset code
// into a signed password restoration token.
func (c *Codec) MintRestoration(rawJSON string) (string, error) {
	return c.sign(jwt.MapClaims{
		claimRestoration: base64.StdEncoding.EncodeToString([]byte(rawJSON)),
	}, c.restoreTTL)
}

// VerifyRestoration validates a password restoration token and decodes its
// payload.
func (c *Codec) VerifyRestoration(tok string) (RestorationData, error) {
	var data RestorationData
	if err := c.verifyScoped(tok, claimRestoration, &data); err != nil {
		return RestorationData{}, err
	}
	return data, nil
}

// MintSession issues the long-lived login token carrying only the user id.
func (c *Codec) MintSession(userID uint64) (string, error) {
	return c.sign(jwt.MapClaims{claimSessionID: userID}, c.sessionTTL)
}

// VerifySession validates a session token and returns the user id.
func (c *Codec) VerifySession(tok string) (uint64, error) {
	claims, err := c.parse(tok)
	if err != nil {
		return 0, err
	}
	// Numeric JSON claims decode as float64.
	id, ok := claims[claimSessionID].(float64)
	if !ok || id <= 0 {
		return 0, apperr.Unauthorized("unauthorized")
	}
	return uint64(id), nil
}

func (c *Codec) sign(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", apperr.Internal("sign token failed", err)
	}
	return signed, nil
}

// verifyScoped parses the token, requires the scope claim to be present
// and unmarshals its base64 JSON payload into out.
func (c *Codec) verifyScoped(tok, claim string, out any) error {
	claims, err := c.parse(tok)
	if err != nil {
		return err
	}
	encoded, ok := claims[claim].(string)
	if !ok || encoded == "" {
		return apperr.Unauthorized("unauthorized")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return apperr.Unauthorized("unauthorized")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Unauthorized("unauthorized")
	}
	return nil
}

// parse validates signature, algorithm and expiry. The error returned to
// callers never says which part failed.
func (c *Codec) parse(tok string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unauthorized")
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.Unauthorized("unauthorized")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthorized("unauthorized")
	}
	return claims, nil
}
