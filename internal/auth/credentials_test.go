package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidnrm/critiq/internal/database/testutil"
)

func TestVerifyCredentials(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	verifier, err := NewCredentialVerifier(db, CredentialsConfig{WorkFactor: 4})
	require.NoError(t, err)

	ctx := context.Background()

	created, err := verifier.Register(ctx, "Agus", "a@x.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEqual(t, "secret123", created.Password)

	user, err := verifier.Verify(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
}

func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	verifier, err := NewCredentialVerifier(db, CredentialsConfig{WorkFactor: 4})
	require.NoError(t, err)

	ctx := context.Background()

	_, err = verifier.Register(ctx, "Agus", "a@x.com", "secret123")
	require.NoError(t, err)

	// Wrong password and unknown email must produce the exact same error.
	_, wrongPassword := verifier.Verify(ctx, "a@x.com", "wrong-password")
	_, unknownEmail := verifier.Verify(ctx, "nobody@x.com", "secret123")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestVerifyEmailIsCaseSensitive(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	verifier, err := NewCredentialVerifier(db, CredentialsConfig{WorkFactor: 4})
	require.NoError(t, err)

	ctx := context.Background()

	_, err = verifier.Register(ctx, "Agus", "a@x.com", "secret123")
	require.NoError(t, err)

	_, err = verifier.Verify(ctx, "A@X.COM", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
