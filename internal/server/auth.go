package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// AuthFailure is a rejected login attempt, carrying the lockout detail
// the envelope exposes to the client.
type AuthFailure struct {
	Message      string
	AttemptsLeft int
	Locked       bool
}

func (e *AuthFailure) Error() string { return e.Message }

type attemptState struct {
	count int
	last  time.Time
}

// Authenticator verifies the admin password, throttles brute force per
// client, and issues HMAC-signed session tokens. The signing secret is
// generated per process, so sessions do not survive a server restart.
type Authenticator struct {
	password    string
	maxAttempts int
	lockout     time.Duration
	ttl         time.Duration
	secret      []byte

	mu     sync.Mutex
	failed map[string]*attemptState
	now    func() time.Time
}

func NewAuthenticator(cfg Config) (*Authenticator, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return &Authenticator{
		password:    cfg.AdminPassword,
		maxAttempts: cfg.MaxLoginAttempts,
		lockout:     cfg.LockoutDuration,
		ttl:         cfg.SessionTTL,
		secret:      secret,
		failed:      map[string]*attemptState{},
		now:         time.Now,
	}, nil
}

// Authenticate checks password for client (an IP or similar identifier)
// and returns a session token on success. Failures come back as
// *AuthFailure; after maxAttempts wrong passwords the client is locked
// out for the lockout duration.
func (a *Authenticator) Authenticate(password, client string) (string, error) {
	a.mu.Lock()
	if a.isLockedLocked(client) {
		a.mu.Unlock()
		return "", &AuthFailure{
			Message:      "too many failed attempts, try again later",
			AttemptsLeft: 0,
			Locked:       true,
		}
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		left := a.recordFailureLocked(client)
		a.mu.Unlock()
		if left == 0 {
			return "", &AuthFailure{
				Message:      "too many failed attempts, try again later",
				AttemptsLeft: 0,
				Locked:       true,
			}
		}
		return "", &AuthFailure{
			Message:      fmt.Sprintf("wrong password, %d attempts left", left),
			AttemptsLeft: left,
		}
	}

	delete(a.failed, client)
	a.mu.Unlock()

	return a.newSessionToken()
}

// VerifySession reports whether token is a valid, unexpired session.
func (a *Authenticator) VerifySession(token string) bool {
	_, err := a.verifyToken(token)
	return err == nil
}

func (a *Authenticator) isLockedLocked(client string) bool {
	st, ok := a.failed[client]
	if !ok || st.count < a.maxAttempts {
		return false
	}
	if a.now().Sub(st.last) > a.lockout {
		delete(a.failed, client)
		return false
	}
	return true
}

func (a *Authenticator) recordFailureLocked(client string) (attemptsLeft int) {
	st, ok := a.failed[client]
	if !ok {
		st = &attemptState{}
		a.failed[client] = st
	}
	// A stale window starts over.
	if a.now().Sub(st.last) > a.lockout {
		st.count = 0
	}
	st.count++
	st.last = a.now()

	left := a.maxAttempts - st.count
	if left < 0 {
		left = 0
	}
	return left
}

type sessionPayload struct {
	Exp int64  `json:"exp"`
	N   string `json:"n"`
}

func (a *Authenticator) newSessionToken() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	payload := sessionPayload{
		Exp: a.now().Add(a.ttl).Unix(),
		N:   base64.RawURLEncoding.EncodeToString(nonce),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, a.secret)
	_, _ = mac.Write([]byte(p))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return p + "." + sig, nil
}

func (a *Authenticator) verifyToken(token string) (sessionPayload, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 2 {
		return sessionPayload{}, errors.New("invalid token format")
	}
	p, sig := parts[0], parts[1]

	mac := hmac.New(sha256.New, a.secret)
	_, _ = mac.Write([]byte(p))
	want := mac.Sum(nil)
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(want, got) {
		return sessionPayload{}, errors.New("invalid token signature")
	}

	raw, err := base64.RawURLEncoding.DecodeString(p)
	if err != nil {
		return sessionPayload{}, errors.New("invalid token payload")
	}
	var sp sessionPayload
	if err := json.Unmarshal(raw, &sp); err != nil {
		return sessionPayload{}, errors.New("invalid token payload")
	}
	if sp.Exp == 0 || a.now().Unix() > sp.Exp {
		return sessionPayload{}, errors.New("token expired")
	}
	return sp, nil
}
