package twofactor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authcore/pkg/jwt"
	"github.com/dmitrymomot/authcore/pkg/secrets"
	"github.com/dmitrymomot/authcore/pkg/totp"
	"github.com/dmitrymomot/authcore/pkg/twofactor"
)

func TestLoginWithTOTP(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	_, seed := enrollTFA(t, svc, user.ID)

	code, err := totp.GenerateCode(seed)
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode(code))
	require.NoError(t, err)
	require.NotNil(t, result.User)

	claims, err := jwt.Verify[twofactor.SessionClaims](result.Token, testJWTSecret, jwt.Expected{Subject: twofactor.SubjectSession})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, testEmail, claims.Email)
	assert.Equal(t, result.User.JWTVersion, claims.JWTVersion)
}

func TestLoginWithRecoveryCodeIsSingleUse(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	recoveryCodes, _ := enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	result, err := svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.RecoveryCode(recoveryCodes[0]))
	require.NoError(t, err)
	assert.Len(t, result.User.TFARecoveryCodes, totp.RecoveryCodeCount-1)

	// The consumed code is gone for good.
	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.RecoveryCode(recoveryCodes[0]))
	assert.ErrorIs(t, err, twofactor.ErrInvalidRecoveryCode)

	// The remaining codes still work.
	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.RecoveryCode(recoveryCodes[1]))
	require.NoError(t, err)
}

func TestLoginFailureBookkeeping(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	_, seed := enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	_, err := svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode("000000"))
	assert.ErrorIs(t, err, twofactor.ErrInvalidCode)
	assert.Equal(t, 1, store.get(user.ID).FailedLoginAttempts)

	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.RecoveryCode("NOT-A-CODE"))
	assert.ErrorIs(t, err, twofactor.ErrInvalidRecoveryCode)
	assert.Equal(t, 2, store.get(user.ID).FailedLoginAttempts)

	// A malformed code is still the user's mistake and counts as an attempt.
	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode("abc"))
	assert.ErrorIs(t, err, twofactor.ErrInvalidCode)
	assert.Equal(t, 3, store.get(user.ID).FailedLoginAttempts)

	// A successful login clears the counter.
	code, err := totp.GenerateCode(seed)
	require.NoError(t, err)
	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode(code))
	require.NoError(t, err)
	assert.Equal(t, 0, store.get(user.ID).FailedLoginAttempts)
}

func TestLoginLockout(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	initiator := newCaptureInitiator()
	svc := newTestService(t, store, twofactor.WithResetInitiator(initiator))
	_, seed := enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	// Ten consecutive failures lock the account.
	for i := 0; i < 10; i++ {
		_, err := svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode("000000"))
		assert.ErrorIs(t, err, twofactor.ErrInvalidCode, "attempt %d", i+1)
	}

	locked := store.get(user.ID)
	assert.True(t, locked.Locked)
	assert.Equal(t, 10, locked.FailedLoginAttempts)

	// The lockout fires the recovery initiator exactly once.
	id, fired := initiator.wait(time.Second)
	require.True(t, fired, "reset initiator must run after lockout")
	assert.Equal(t, user.ID, id)

	// Even a valid code is rejected on a locked account, and the counter
	// stays put.
	code, err := totp.GenerateCode(seed)
	require.NoError(t, err)
	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode(code))
	assert.ErrorIs(t, err, twofactor.ErrAccountLocked)
	assert.Equal(t, 10, store.get(user.ID).FailedLoginAttempts)

	_, fired = initiator.wait(100 * time.Millisecond)
	assert.False(t, fired, "initiator must not fire again on a locked account")
}

func TestLoginTokenErrors(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	svc := newTestService(t, newMemUserStore(user))
	enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	_, err := svc.Login(ctx, "not.a.token", twofactor.TOTPCode("123456"))
	assert.ErrorIs(t, err, twofactor.ErrTokenInvalid)

	// A token minted for another step of the flow is rejected.
	wrongSubject, err := jwt.Sign(twofactor.PreAuthClaims{Email: testEmail},
		jwt.HS256Key(testJWTSecret),
		jwt.WithSubject(twofactor.SubjectSession),
		jwt.WithExpiresIn(time.Minute),
	)
	require.NoError(t, err)
	_, err = svc.Login(ctx, wrongSubject, twofactor.TOTPCode("123456"))
	assert.ErrorIs(t, err, twofactor.ErrTokenInvalid)

	// A token signed with a different secret is rejected.
	forged, err := jwt.Sign(twofactor.PreAuthClaims{Email: testEmail},
		jwt.HS256Key("other-secret"),
		jwt.WithSubject(twofactor.SubjectTwoFactor),
		jwt.WithExpiresIn(time.Minute),
	)
	require.NoError(t, err)
	_, err = svc.Login(ctx, forged, twofactor.TOTPCode("123456"))
	assert.ErrorIs(t, err, twofactor.ErrTokenInvalid)
}

func TestLoginPreconditions(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Login(ctx, mintPreAuthToken(t, "ghost@example.com", testPassword), twofactor.TOTPCode("123456"))
	assert.ErrorIs(t, err, twofactor.ErrUserNotFound)

	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode("123456"))
	assert.ErrorIs(t, err, twofactor.ErrNotEnabled)

	_, seed := enrollTFA(t, svc, user.ID)

	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), nil)
	assert.ErrorIs(t, err, twofactor.ErrCodeRequired)

	// A pre-auth token carrying a stale password cannot open the seed.
	code, err := totp.GenerateCode(seed)
	require.NoError(t, err)
	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, "stale password"), twofactor.TOTPCode(code))
	assert.ErrorIs(t, err, twofactor.ErrInvalidPassword)
}

func TestLoginCorruptedSeedIsNotAFailedAttempt(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	corrupted, err := secrets.EncryptString(testPassword, "not a base32 seed")
	require.NoError(t, err)
	_, err = store.Update(ctx, user.ID, twofactor.UserUpdate{TFASecret: &corrupted})
	require.NoError(t, err)

	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode("123456"))
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)
	assert.NotErrorIs(t, err, twofactor.ErrInvalidCode)
	assert.Equal(t, 0, store.get(user.ID).FailedLoginAttempts, "server-side failures must not count against the user")
}

func TestLoginBookkeepingFailureWinsOverDomainError(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	enrollTFA(t, svc, user.ID)

	storeErr := errors.New("connection reset")
	store.mu.Lock()
	store.updateErr = storeErr
	store.mu.Unlock()

	_, err := svc.Login(context.Background(), mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode("000000"))
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, twofactor.ErrInvalidCode, "domain error must not surface when the counter failed to commit")
}
