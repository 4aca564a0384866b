package twofactor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authcore/pkg/jwt"
	"github.com/dmitrymomot/authcore/pkg/totp"
	"github.com/dmitrymomot/authcore/pkg/twofactor"
)

const newPassword = "an entirely new password"

func TestResetPasswordWithOldPassword(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	_, seed := enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	token := mintResetToken(t, testEmail, newPassword, 0)
	result, err := svc.ResetPassword(ctx, token, twofactor.ResetInput{OldPassword: testPassword})
	require.NoError(t, err)

	stored := store.get(user.ID)
	assert.Equal(t, "plain:"+newPassword, stored.PasswordHash)
	assert.Equal(t, 1, stored.JWTVersion)
	assert.True(t, stored.TFAEnabled(), "seed must survive the password change")

	// The seed was re-encrypted under the new password: a fresh pre-auth
	// token carrying it opens the seed again.
	code, err := totp.GenerateCode(seed)
	require.NoError(t, err)
	_, err = svc.Login(ctx, mintPreAuthToken(t, testEmail, newPassword), twofactor.TOTPCode(code))
	require.NoError(t, err)

	claims, err := jwt.Verify[twofactor.SessionClaims](result.Token, testJWTSecret, jwt.Expected{Subject: twofactor.SubjectSession})
	require.NoError(t, err)
	assert.Equal(t, 1, claims.JWTVersion)
}

func TestResetPasswordWithOldPasswordAndTOTP(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	_, seed := enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	code, err := totp.GenerateCode(seed)
	require.NoError(t, err)

	token := mintResetToken(t, testEmail, newPassword, 0)
	_, err = svc.ResetPassword(ctx, token, twofactor.ResetInput{
		OldPassword: testPassword,
		Factor:      twofactor.TOTPCode(code),
	})
	require.NoError(t, err)
	assert.True(t, store.get(user.ID).TFAEnabled())

	// Wrong TOTP code fails even with the correct old password.
	token = mintResetToken(t, testEmail, newPassword, 1)
	_, err = svc.ResetPassword(ctx, token, twofactor.ResetInput{
		OldPassword: newPassword,
		Factor:      twofactor.TOTPCode("000000"),
	})
	assert.ErrorIs(t, err, twofactor.ErrInvalidCode)
}

func TestResetPasswordWithRecoveryCodeKeepsTFA(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	recoveryCodes, _ := enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	token := mintResetToken(t, testEmail, newPassword, 0)
	_, err := svc.ResetPassword(ctx, token, twofactor.ResetInput{
		OldPassword: testPassword,
		Factor:      twofactor.RecoveryCode(recoveryCodes[0]),
	})
	require.NoError(t, err)

	stored := store.get(user.ID)
	assert.True(t, stored.TFAEnabled())
	assert.Len(t, stored.TFARecoveryCodes, totp.RecoveryCodeCount-1, "the recovery code is consumed")
}

func TestResetPasswordWithRecoveryCodeAloneClearsTFA(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	recoveryCodes, _ := enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	// Without the old password the seed cannot be re-encrypted, so the whole
	// two-factor state is cleared.
	token := mintResetToken(t, testEmail, newPassword, 0)
	result, err := svc.ResetPassword(ctx, token, twofactor.ResetInput{
		Factor: twofactor.RecoveryCode(recoveryCodes[0]),
	})
	require.NoError(t, err)
	assert.False(t, result.User.TFAEnabled())

	stored := store.get(user.ID)
	assert.Nil(t, stored.TFASecret)
	assert.Empty(t, stored.TFARecoveryCodes)
	assert.Equal(t, "plain:"+newPassword, stored.PasswordHash)
}

func TestResetPasswordUnlocksAccount(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	store := newMemUserStore(user)
	svc := newTestService(t, store)
	enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	// Lock the account through repeated failures.
	for i := 0; i < 10; i++ {
		_, err := svc.Login(ctx, mintPreAuthToken(t, testEmail, testPassword), twofactor.TOTPCode("000000"))
		require.Error(t, err)
	}
	require.True(t, store.get(user.ID).Locked)

	token := mintResetToken(t, testEmail, newPassword, 0)
	_, err := svc.ResetPassword(ctx, token, twofactor.ResetInput{OldPassword: testPassword})
	require.NoError(t, err)

	stored := store.get(user.ID)
	assert.False(t, stored.Locked)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
}

func TestResetPasswordTokenSingleUse(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	svc := newTestService(t, newMemUserStore(user))
	enrollTFA(t, svc, user.ID)
	ctx := context.Background()

	token := mintResetToken(t, testEmail, newPassword, 0)
	_, err := svc.ResetPassword(ctx, token, twofactor.ResetInput{OldPassword: testPassword})
	require.NoError(t, err)

	// The reset bumped the jwt version, so replaying the same token fails.
	_, err = svc.ResetPassword(ctx, token, twofactor.ResetInput{OldPassword: newPassword})
	assert.ErrorIs(t, err, twofactor.ErrTokenInvalid)
}

func TestResetPasswordErrors(t *testing.T) {
	t.Parallel()

	user := newTestUser()
	svc := newTestService(t, newMemUserStore(user))
	ctx := context.Background()

	_, err := svc.ResetPassword(ctx, "garbage", twofactor.ResetInput{OldPassword: testPassword})
	assert.ErrorIs(t, err, twofactor.ErrTokenInvalid)

	_, err = svc.ResetPassword(ctx, mintResetToken(t, "ghost@example.com", newPassword, 0), twofactor.ResetInput{OldPassword: testPassword})
	assert.ErrorIs(t, err, twofactor.ErrUserNotFound)

	// The account has no two-factor yet.
	_, err = svc.ResetPassword(ctx, mintResetToken(t, testEmail, newPassword, 0), twofactor.ResetInput{OldPassword: testPassword})
	assert.ErrorIs(t, err, twofactor.ErrNotEnabled)

	enrollTFA(t, svc, user.ID)

	_, err = svc.ResetPassword(ctx, mintResetToken(t, testEmail, newPassword, 0), twofactor.ResetInput{})
	assert.ErrorIs(t, err, twofactor.ErrCodeRequired)

	_, err = svc.ResetPassword(ctx, mintResetToken(t, testEmail, newPassword, 0), twofactor.ResetInput{
		Factor: twofactor.TOTPCode("123456"),
	})
	assert.ErrorIs(t, err, twofactor.ErrCodeRequired, "a TOTP code alone cannot open the seed")

	_, err = svc.ResetPassword(ctx, mintResetToken(t, testEmail, newPassword, 0), twofactor.ResetInput{
		OldPassword: "wrong password",
	})
	assert.ErrorIs(t, err, twofactor.ErrInvalidOldPassword)

	_, err = svc.ResetPassword(ctx, mintResetToken(t, testEmail, newPassword, 0), twofactor.ResetInput{
		Factor: twofactor.RecoveryCode("NOT-A-CODE"),
	})
	assert.ErrorIs(t, err, twofactor.ErrInvalidRecoveryCode)

	// A token minted against a stale jwt version is rejected.
	_, err = svc.ResetPassword(ctx, mintResetToken(t, testEmail, newPassword, 7), twofactor.ResetInput{
		OldPassword: testPassword,
	})
	assert.ErrorIs(t, err, twofactor.ErrTokenInvalid)
}
