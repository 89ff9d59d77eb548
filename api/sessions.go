package main

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const sessionDuration = 24 * time.Hour

// issueSessionToken establishes a session for u and returns it as a signed
// token. The jti claim identifies the session so logout can revoke it.
func (app *application) issueSessionToken(u *user) (string, *session, error) {
	now := time.Now()
	s := &session{
		UserID:    u.ID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(sessionDuration),
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(s.UserID),
		ID:        s.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(app.config.jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("signing session token: %w", err)
	}
	return signed, s, nil
}

// parseSessionToken verifies the signature, expiry and revocation state of a
// token and returns the session it proves.
func (app *application) parseSessionToken(tokenStr string) (*session, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(app.config.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errAuthenticationRequired
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || claims.ExpiresAt == nil || claims.ID == "" {
		return nil, errAuthenticationRequired
	}
	if app.revocations.Revoked(claims.ID) {
		return nil, errAuthenticationRequired
	}
	return &session{
		UserID:    userID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// destroySession revokes the session's token. Revoking an already revoked
// session is a no-op.
func (app *application) destroySession(s *session) {
	app.revocations.Revoke(s.TokenID, s.ExpiresAt)
}

// owns reports whether the session's account is the owner of t. Every task
// mutation checks this before acting.
func owns(s *session, t *task) bool {
	return s != nil && t != nil && t.UserID == s.UserID
}

// revocationList remembers revoked session ids until their tokens would have
// expired anyway. A janitor goroutine drops stale entries once a minute.
type revocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func newRevocationList() *revocationList {
	l := &revocationList{
		entries: make(map[string]time.Time),
	}
	go func(l *revocationList) {
		ticker := time.NewTicker(time.Minute)
		for {
			<-ticker.C
			func() {
				l.mu.Lock()
				defer l.mu.Unlock()
				for id, expiresAt := range l.entries {
					if time.Now().After(expiresAt) {
						delete(l.entries, id)
					}
				}
			}()
		}
	}(l)
	return l
}

func (l *revocationList) Revoke(tokenID string, expiresAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[tokenID] = expiresAt
}

func (l *revocationList) Revoked(tokenID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	expiresAt, ok := l.entries[tokenID]
	return ok && time.Now().Before(expiresAt)
}
