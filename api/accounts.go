package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func verifyPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// generateConfirmationToken returns a URL-safe token with 32 bytes of
// entropy, suitable for embedding in a confirmation link.
func generateConfirmationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating confirmation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (app *application) confirmationURL(token string) string {
	return fmt.Sprintf("%s/v1/users/confirm/%s", strings.TrimSuffix(app.config.baseURL, "/"), token)
}

// registerAccount creates a new account. When confirmation is required the
// account starts unconfirmed, holding a fresh token that is handed to the
// delivery channel; otherwise it is usable immediately.
func (app *application) registerAccount(email, password string) (*user, error) {
	email = strings.TrimSpace(email)

	v := newValidator()
	v.checkEmail(email)
	v.checkPassword(password)
	if v.hasErrors() {
		return nil, v.toError()
	}

	existing, err := app.storage.getUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if existing != nil {
		return nil, errConflict
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &user{
		Email:          email,
		PasswordHash:   hash,
		EmailConfirmed: !app.config.confirmationRequired,
	}
	if app.config.confirmationRequired {
		token, err := generateConfirmationToken()
		if err != nil {
			return nil, err
		}
		u.ConfirmationToken = token
	}
	if err := app.storage.insertUser(u); err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	accountsRegisteredTotal.Inc()

	if app.config.confirmationRequired {
		// Delivery failures do not undo the registration; the user can ask
		// for the link to be resent.
		if err := app.deliverer.DeliverConfirmation(u.Email, app.confirmationURL(u.ConfirmationToken)); err != nil {
			app.logger.Warn("delivering confirmation link", "email", u.Email, "error", err)
		}
	}
	return u, nil
}

// confirmAccount marks the token holder's email as confirmed and burns the
// token. Confirming an already confirmed account is a no-op success.
func (app *application) confirmAccount(token string) (*user, error) {
	u, err := app.storage.getUserByConfirmationToken(token)
	if err != nil {
		return nil, fmt.Errorf("looking up confirmation token: %w", err)
	}
	if u == nil {
		return nil, errInvalidToken
	}
	if u.EmailConfirmed {
		return u, nil
	}
	u.EmailConfirmed = true
	u.ConfirmationToken = ""
	if err := app.storage.updateUser(u); err != nil {
		return nil, fmt.Errorf("confirming user: %w", err)
	}
	accountsConfirmedTotal.Inc()
	return u, nil
}

// reissueConfirmation replaces the account's token with a fresh one. The old
// link stops working the moment the new one is stored.
func (app *application) reissueConfirmation(email string) (string, error) {
	u, err := app.storage.getUserByEmail(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("looking up email: %w", err)
	}
	if u == nil {
		return "", errNotFound
	}
	if u.EmailConfirmed {
		return "", errAlreadyConfirmed
	}
	token, err := generateConfirmationToken()
	if err != nil {
		return "", err
	}
	u.ConfirmationToken = token
	if err := app.storage.updateUser(u); err != nil {
		return "", fmt.Errorf("storing new token: %w", err)
	}
	if err := app.deliverer.DeliverConfirmation(u.Email, app.confirmationURL(token)); err != nil {
		app.logger.Warn("redelivering confirmation link", "email", u.Email, "error", err)
	}
	return token, nil
}

// Compared against when the email is unknown so that login latency does not
// reveal whether an account exists.
var timingDummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// authenticate validates credentials. Unknown email and wrong password are
// indistinguishable by error and by timing.
func (app *application) authenticate(email, password string) (*user, error) {
	u, err := app.storage.getUserByEmail(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if u == nil {
		verifyPassword(timingDummyHash, password)
		return nil, errInvalidCredentials
	}
	if !verifyPassword(u.PasswordHash, password) {
		return nil, errInvalidCredentials
	}
	if app.config.confirmationRequired && !u.EmailConfirmed {
		return nil, errUnconfirmedAccount
	}
	return u, nil
}
