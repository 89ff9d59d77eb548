package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAccount(t *testing.T) {
	app, deliverer := newTestApplication(t)

	u, err := app.registerAccount("ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.False(t, u.EmailConfirmed)
	assert.NotEmpty(t, u.ConfirmationToken)
	assert.NotContains(t, string(u.PasswordHash), "secret123")

	require.Equal(t, 1, deliverer.count())
	d := deliverer.last()
	assert.Equal(t, "ana@example.com", d.email)
	assert.True(t, strings.HasSuffix(d.confirmURL, u.ConfirmationToken))
}

func TestRegisterAccountDuplicateEmail(t *testing.T) {
	app, _ := newTestApplication(t)

	_, err := app.registerAccount("ana@example.com", "secret123")
	require.NoError(t, err)

	_, err = app.registerAccount("ana@example.com", "another-password")
	assert.ErrorIs(t, err, errConflict)
}

func TestRegisterAccountValidation(t *testing.T) {
	app, deliverer := newTestApplication(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret123"},
		{"email without at", "ana.example.com", "secret123"},
		{"email without dot in domain", "ana@example", "secret123"},
		{"empty password", "ana@example.com", ""},
		{"blank password", "ana@example.com", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.registerAccount(tt.email, tt.password)
			var ve *validationError
			assert.ErrorAs(t, err, &ve)
		})
	}
	assert.Equal(t, 0, deliverer.count())
}

func TestConfirmAccount(t *testing.T) {
	app, _ := newTestApplication(t)

	u, err := app.registerAccount("ana@example.com", "secret123")
	require.NoError(t, err)
	token := u.ConfirmationToken

	_, err = app.confirmAccount("some-other-token")
	assert.ErrorIs(t, err, errInvalidToken)

	confirmed, err := app.confirmAccount(token)
	require.NoError(t, err)
	assert.True(t, confirmed.EmailConfirmed)
	assert.Empty(t, confirmed.ConfirmationToken)

	// The token is burned on success and can not be replayed.
	_, err = app.confirmAccount(token)
	assert.ErrorIs(t, err, errInvalidToken)

	stored, err := app.storage.getUserByEmail("ana@example.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailConfirmed)
	assert.Empty(t, stored.ConfirmationToken)
}

func TestReissueConfirmation(t *testing.T) {
	app, deliverer := newTestApplication(t)

	u, err := app.registerAccount("ana@example.com", "secret123")
	require.NoError(t, err)
	oldToken := u.ConfirmationToken

	newToken, err := app.reissueConfirmation("ana@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, newToken)
	assert.Equal(t, 2, deliverer.count())

	// The replaced token is dead immediately.
	_, err = app.confirmAccount(oldToken)
	assert.ErrorIs(t, err, errInvalidToken)

	_, err = app.confirmAccount(newToken)
	require.NoError(t, err)

	_, err = app.reissueConfirmation("ana@example.com")
	assert.ErrorIs(t, err, errAlreadyConfirmed)

	_, err = app.reissueConfirmation("nobody@example.com")
	assert.ErrorIs(t, err, errNotFound)
}

func TestAuthenticate(t *testing.T) {
	app, _ := newTestApplication(t)

	u, err := app.registerAccount("ana@example.com", "secret123")
	require.NoError(t, err)

	// Unconfirmed accounts can not log in even with valid credentials.
	_, err = app.authenticate("ana@example.com", "secret123")
	assert.ErrorIs(t, err, errUnconfirmedAccount)

	_, err = app.confirmAccount(u.ConfirmationToken)
	require.NoError(t, err)

	got, err := app.authenticate("ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// Unknown email and wrong password fail identically.
	_, errUnknown := app.authenticate("nobody@example.com", "secret123")
	_, errWrongPassword := app.authenticate("ana@example.com", "wrong")
	assert.ErrorIs(t, errUnknown, errInvalidCredentials)
	assert.ErrorIs(t, errWrongPassword, errInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPassword.Error())
}

func TestConfirmationDisabled(t *testing.T) {
	app, deliverer := newTestApplication(t)
	app.config.confirmationRequired = false

	u, err := app.registerAccount("ana@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, u.EmailConfirmed)
	assert.Empty(t, u.ConfirmationToken)
	assert.Equal(t, 0, deliverer.count())

	_, err = app.authenticate("ana@example.com", "secret123")
	assert.NoError(t, err)
}

func TestGenerateConfirmationToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := generateConfirmationToken()
		require.NoError(t, err)
		// 32 bytes of entropy, URL-safe base64 without padding.
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "=")
		assert.False(t, seen[token])
		seen[token] = true
	}
}
