// Package service implements the token-mediated identity flows:
// registration, password reset, login/session resolution and the
// email/phone change confirmations. Collaborators are consumed through
// narrow interfaces so the flows can be exercised against fakes.
package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spaps/rental-backend/internal/apperr"
	"github.com/spaps/rental-backend/internal/cache"
	"github.com/spaps/rental-backend/internal/model"
	"github.com/spaps/rental-backend/internal/queue"
	"github.com/spaps/rental-backend/internal/token"
	"github.com/spaps/rental-backend/internal/utils"
)

// codeAttempts caps the collision-avoidance loop for 5-digit codes. The
// space holds 90k values, so hitting the cap means the store is in a state
// worth failing loudly over rather than recursing forever.
const codeAttempts = 20

// UserStore is the slice of the user repository the flows need.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByPhone(ctx context.Context, phone string) (model.User, error)
	GetByIDWithRelations(ctx context.Context, id uint64) (model.User, error)
	GetByEmailWithRelations(ctx context.Context, email string) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdateEmail(ctx context.Context, id uint64, email string) error
	UpdatePhone(ctx context.Context, id uint64, phone string) error
}

// ClientCreator creates the CLIENT role profile at registration.
type ClientCreator interface {
	Create(ctx context.Context, userID uint64) (model.Client, error)
}

// RentorCreator creates the RENTOR role profile at registration.
type RentorCreator interface {
	Create(ctx context.Context, userID uint64) (model.Rentor, error)
}

// Notifier dispatches send-code jobs. Failures here never fail a flow:
// once the code sits in the cache, issuance has happened.
type Notifier interface {
	SendCode(ctx context.Context, ev queue.SendCodeEvent) error
	SendSMS(ctx context.Context, ev queue.SendSMSEvent) error
}

// Auth orchestrates the flows.
type Auth struct {
	users   UserStore
	clients ClientCreator
	rentors RentorCreator
	codes   cache.CodeStore
	tokens  *token.Codec
	notify  Notifier

	bcryptCost   int
	codeTTL      time.Duration
	resendWindow time.Duration
}

func NewAuth(users UserStore, clients ClientCreator, rentors RentorCreator,
	codes cache.CodeStore, tokens *token.Codec, notify Notifier,
	bcryptCost int, codeTTL, resendWindow time.Duration) *Auth {
	return &Auth{
		users:        users,
		clients:      clients,
		rentors:      rentors,
		codes:        codes,
		tokens:       tokens,
		notify:       notify,
		bcryptCost:   bcryptCost,
		codeTTL:      codeTTL,
		resendWindow: resendWindow,
	}
}

// Cache payload shapes. They are marshalled once at issuance and the raw
// JSON travels verbatim into the scoped token at confirm time.
type pendingRegistration struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
}

type pendingReset struct {
	Email string `json:"email"`
	ID    uint64 `json:"id"`
}

type pendingEmailChange struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type pendingPhoneChange struct {
	ID    uint64 `json:"id"`
	Phone string `json:"phone"`
}

// RegisterInput is the self-registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Role      model.Role
}

// Register starts the registration flow: it checks the three preconditions
// concurrently (email unused, role in the non-admin subset, no live resend
// marker), then commits the pending record plus the one-minute marker and
// enqueues the send-code job. Nothing is written when any precondition
// fails.
//
// Two concurrent calls for the same email can both pass the marker check
// before either writes it; the cooldown is best-effort de-duplication, not
// a hard exclusion.
func (a *Auth) Register(ctx context.Context, in RegisterInput) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var emailTaken, wrongRole, tooSoon bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.users.GetByEmail(gctx, email)
		if err == nil {
			emailTaken = true
			return nil
		}
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		wrongRole = !in.Role.IsNonAdmin()
		return nil
	})
	g.Go(func() error {
		_, ok, err := a.codes.Get(gctx, email)
		tooSoon = ok
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if emailTaken {
		return apperr.Conflict(apperr.MsgEmailExists)
	}
	if wrongRole {
		return apperr.Validation(apperr.MsgWrongEnum)
	}
	if tooSoon {
		return apperr.RateLimited(apperr.MsgTooSoon)
	}

	raw, err := json.Marshal(pendingRegistration{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Role:      in.Role,
	})
	if err != nil {
		return apperr.Internal("marshal pending registration failed", err)
	}

	code, err := a.issueCode(ctx, string(raw), email)
	if err != nil {
		return err
	}

	a.dispatchCode(ctx, queue.SendCodeEvent{
		Code:      code,
		Variant:   queue.VariantRegistration,
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	return nil
}

// ConfirmRegistrationCode redeems a 5-digit code for a registration token.
// The cache record is intentionally left in place; it expires on its own,
// so the same code stays confirmable until the TTL lapses.
func (a *Auth) ConfirmRegistrationCode(ctx context.Context, code string) (string, error) {
	raw, ok, err := a.codes.Get(ctx, code)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.InvalidCode(apperr.MsgWrongCode)
	}
	return a.tokens.MintRegistration(raw)
}

// SetPassword finishes registration for the identity carried by a verified
// registration token. Email uniqueness and the role subset are re-checked
// because time passed since the code was issued; another registration may
// have completed first.
func (a *Auth) SetPassword(ctx context.Context, data token.RegistrationData, password string) (model.User, error) {
	var emailTaken, wrongRole bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.users.GetByEmail(gctx, data.Email)
		if err == nil {
			emailTaken = true
			return nil
		}
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		wrongRole = !data.Role.IsNonAdmin()
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.User{}, err
	}
	if emailTaken {
		return model.User{}, apperr.Conflict(apperr.MsgEmailExists)
	}
	if wrongRole {
		return model.User{}, apperr.Validation(apperr.MsgWrongEnum)
	}

	hash, err := utils.HashPassword(password, a.bcryptCost)
	if err != nil {
		return model.User{}, apperr.Internal("hash password failed", err)
	}

	created, err := a.users.Create(ctx, model.User{
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Email:        data.Email,
		PasswordHash: hash,
		Role:         data.Role,
	})
	if err != nil {
		return model.User{}, err
	}

	// Role profile row, mirrored onto the returned record.
	switch created.Role {
	case model.RoleClient:
		c, err := a.clients.Create(ctx, created.ID)
		if err != nil {
			return model.User{}, err
		}
		created.Client = &c
	case model.RoleRentor:
		r, err := a.rentors.Create(ctx, created.ID)
		if err != nil {
			return model.User{}, err
		}
		created.Rentor = &r
	}

	return created.Sanitized(), nil
}

// RequestPasswordReset mirrors Register for an existing account: the user
// must exist and no resend marker may be live.
func (a *Auth) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	var found model.User
	var notFound, tooSoon bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := a.users.GetByEmail(gctx, emailAddr)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				notFound = true
				return nil
			}
			return err
		}
		found = u
		return nil
	})
	g.Go(func() error {
		_, ok, err := a.codes.Get(gctx, emailAddr)
		tooSoon = ok
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if notFound {
		return apperr.NotFound(apperr.MsgNoUser)
	}
	if tooSoon {
		return apperr.RateLimited(apperr.MsgTooSoon)
	}

	raw, err := json.Marshal(pendingReset{Email: emailAddr, ID: found.ID})
	if err != nil {
		return apperr.Internal("marshal pending reset failed", err)
	}

	code, err := a.issueCode(ctx, string(raw), emailAddr)
	if err != nil {
		return err
	}

	a.dispatchCode(ctx, queue.SendCodeEvent{
		Code:      code,
		Variant:   queue.VariantPasswordChange,
		Email:     emailAddr,
		FirstName: found.FirstName,
		LastName:  found.LastName,
	})
	return nil
}

// ConfirmPasswordResetCode redeems a reset code. The email arrives
// explicitly and must match the stored record, which blocks redeeming a
// code issued for someone else's address.
func (a *Auth) ConfirmPasswordResetCode(ctx context.Context, emailAddr, code string) (string, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	raw, ok, err := a.codes.Get(ctx, code)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.InvalidCode(apperr.MsgWrongCode)
	}

	var pending pendingReset
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return "", apperr.InvalidCode(apperr.MsgWrongCode)
	}
	if pending.ID == 0 || pending.Email != emailAddr {
		return "", apperr.InvalidCode(apperr.MsgWrongCode)
	}

	return a.tokens.MintRestoration(raw)
}

// ResetPassword overwrites the password of the identity carried by a
// verified restoration token.
func (a *Auth) ResetPassword(ctx context.Context, data token.RestorationData, password string) (model.User, error) {
	hash, err := utils.HashPassword(password, a.bcryptCost)
	if err != nil {
		return model.User{}, apperr.Internal("hash password failed", err)
	}
	if err := a.users.UpdatePassword(ctx, data.ID, hash); err != nil {
		return model.User{}, err
	}
	u, err := a.users.GetByIDWithRelations(ctx, data.ID)
	if err != nil {
		return model.User{}, err
	}
	return u.Sanitized(), nil
}

// Login checks credentials and mints a session token.
func (a *Auth) Login(ctx context.Context, emailAddr, password string) (string, model.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	u, err := a.users.GetByEmailWithRelations(ctx, emailAddr)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", model.User{}, apperr.NotFound(apperr.MsgNoEmail)
		}
		return "", model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return "", model.User{}, apperr.Validation(apperr.MsgWrongPass)
	}

	tok, err := a.tokens.MintSession(u.ID)
	if err != nil {
		return "", model.User{}, err
	}
	return tok, u.Sanitized(), nil
}

// Authenticate resolves a session token to its identity. Every failure
// mode collapses to Unauthorized, including a deleted account.
func (a *Auth) Authenticate(ctx context.Context, tok string) (model.User, error) {
	id, err := a.tokens.VerifySession(tok)
	if err != nil {
		return model.User{}, err
	}
	u, err := a.users.GetByID(ctx, id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return model.User{}, apperr.Unauthorized("unauthorized")
		}
		return model.User{}, err
	}
	return u.Sanitized(), nil
}

// PersonalData returns the caller's own record with relations.
func (a *Auth) PersonalData(ctx context.Context, userID uint64) (model.User, error) {
	u, err := a.users.GetByIDWithRelations(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return u.Sanitized(), nil
}

// ChangeEmail issues a confirmation code for switching the account to a
// new address. The code is mailed to the new address.
func (a *Auth) ChangeEmail(ctx context.Context, userID uint64, newEmail string) error {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))

	var current model.User
	var emailTaken, userMissing bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.users.GetByEmail(gctx, newEmail)
		if err == nil {
			emailTaken = true
			return nil
		}
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		u, err := a.users.GetByID(gctx, userID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				userMissing = true
				return nil
			}
			return err
		}
		current = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if emailTaken {
		return apperr.Conflict(apperr.MsgEmailExists)
	}
	if userMissing {
		return apperr.NotFound(apperr.MsgNoUser)
	}

	raw, err := json.Marshal(pendingEmailChange{ID: userID, Email: newEmail})
	if err != nil {
		return apperr.Internal("marshal pending email change failed", err)
	}
	code, err := a.newCode(ctx)
	if err != nil {
		return err
	}
	if err := a.codes.Set(ctx, code, string(raw), a.codeTTL); err != nil {
		return err
	}

	a.dispatchCode(ctx, queue.SendCodeEvent{
		Code:      code,
		Variant:   queue.VariantEmailChange,
		Email:     newEmail,
		FirstName: current.FirstName,
		LastName:  current.LastName,
	})
	return nil
}

// ConfirmEmailChangeCode applies a confirmed email change. The stored id
// must match the authenticated caller.
func (a *Auth) ConfirmEmailChangeCode(ctx context.Context, userID uint64, code string) (model.User, error) {
	raw, ok, err := a.codes.Get(ctx, code)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, apperr.InvalidCode(apperr.MsgWrongCode)
	}
	var pending pendingEmailChange
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return model.User{}, apperr.InvalidCode(apperr.MsgWrongCode)
	}
	if pending.ID != userID {
		return model.User{}, apperr.InvalidCode(apperr.MsgWrongCode)
	}
	if err := a.users.UpdateEmail(ctx, userID, pending.Email); err != nil {
		return model.User{}, err
	}
	u, err := a.users.GetByIDWithRelations(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return u.Sanitized(), nil
}

// ChangePhone issues an SMS confirmation code for switching the account
// phone number.
func (a *Auth) ChangePhone(ctx context.Context, userID uint64, newPhone string) error {
	newPhone = strings.TrimSpace(newPhone)

	var phoneTaken, userMissing bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.users.GetByPhone(gctx, newPhone)
		if err == nil {
			phoneTaken = true
			return nil
		}
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		_, err := a.users.GetByID(gctx, userID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				userMissing = true
				return nil
			}
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if phoneTaken {
		return apperr.Conflict(apperr.MsgPhoneExists)
	}
	if userMissing {
		return apperr.NotFound(apperr.MsgNoUser)
	}

	raw, err := json.Marshal(pendingPhoneChange{ID: userID, Phone: newPhone})
	if err != nil {
		return apperr.Internal("marshal pending phone change failed", err)
	}
	code, err := a.newCode(ctx)
	if err != nil {
		return err
	}
	if err := a.codes.Set(ctx, code, string(raw), a.codeTTL); err != nil {
		return err
	}

	if err := a.notify.SendSMS(ctx, queue.SendSMSEvent{Code: code, Phone: newPhone}); err != nil {
		log.Printf("auth: send sms dispatch failed: %v", err)
	}
	return nil
}

// ConfirmPhoneChangeCode applies a confirmed phone change.
func (a *Auth) ConfirmPhoneChangeCode(ctx context.Context, userID uint64, code string) (model.User, error) {
	raw, ok, err := a.codes.Get(ctx, code)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, apperr.InvalidCode(apperr.MsgWrongCode)
	}
	var pending pendingPhoneChange
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return model.User{}, apperr.InvalidCode(apperr.MsgWrongCode)
	}
	if pending.ID != userID {
		return model.User{}, apperr.InvalidCode(apperr.MsgWrongCode)
	}
	if err := a.users.UpdatePhone(ctx, userID, pending.Phone); err != nil {
		return model.User{}, err
	}
	u, err := a.users.GetByIDWithRelations(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	return u.Sanitized(), nil
}

// newCode generates a confirmation code that does not collide with any
// live cache key, bounded by codeAttempts.
func (a *Auth) newCode(ctx context.Context) (string, error) {
	for range codeAttempts {
		code, err := utils.FiveDigitCode()
		if err != nil {
			return "", apperr.Internal("generate code failed", err)
		}
		_, taken, err := a.codes.Get(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperr.Internal("confirmation code space exhausted", nil)
}

// issueCode writes the pending record under a fresh code and the resend
// marker under the address, then returns the code. Both writes go out
// together; they are best-effort paired, not transactional.
func (a *Auth) issueCode(ctx context.Context, rawPayload, address string) (string, error) {
	code, err := a.newCode(ctx)
	if err != nil {
		return "", err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.codes.Set(gctx, code, rawPayload, a.codeTTL) })
	g.Go(func() error { return a.codes.Set(gctx, address, address, a.resendWindow) })
	if err := g.Wait(); err != nil {
		return "", err
	}
	return code, nil
}

// dispatchCode enqueues a send-code job, tolerating failure: the code is
// already committed to the cache, so issuance has succeeded regardless.
func (a *Auth) dispatchCode(ctx context.Context, ev queue.SendCodeEvent) {
	if err := a.notify.SendCode(ctx, ev); err != nil {
		log.Printf("auth: send code dispatch failed: %v", err)
	}
}
