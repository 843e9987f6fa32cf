package server

import (
	"errors"
	"testing"
	"time"
)

func testAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator(Config{
		AdminPassword:    "hunter22",
		MaxLoginAttempts: 3,
		LockoutDuration:  5 * time.Minute,
		SessionTTL:       time.Hour,
	})
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	return a
}

func TestAuthenticate_IssuesVerifiableToken(t *testing.T) {
	a := testAuthenticator(t)
	token, err := a.Authenticate("hunter22", "10.0.0.1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !a.VerifySession(token) {
		t.Fatalf("fresh token must verify")
	}
	if a.VerifySession(token + "x") {
		t.Fatalf("tampered token must not verify")
	}
	if a.VerifySession("garbage") {
		t.Fatalf("malformed token must not verify")
	}
}

func TestAuthenticate_CountsDownThenLocks(t *testing.T) {
	a := testAuthenticator(t)

	for want := 2; want >= 1; want-- {
		_, err := a.Authenticate("wrong", "10.0.0.1")
		var af *AuthFailure
		if !errors.As(err, &af) {
			t.Fatalf("expected AuthFailure; got %v", err)
		}
		if af.Locked || af.AttemptsLeft != want {
			t.Fatalf("expected %d attempts left; got %+v", want, af)
		}
	}

	// Third failure exhausts the budget.
	_, err := a.Authenticate("wrong", "10.0.0.1")
	var af *AuthFailure
	if !errors.As(err, &af) || !af.Locked {
		t.Fatalf("expected lockout; got %v", err)
	}

	// Even the right password is refused while locked.
	_, err = a.Authenticate("hunter22", "10.0.0.1")
	if !errors.As(err, &af) || !af.Locked {
		t.Fatalf("expected lockout to gate correct password; got %v", err)
	}

	// A different client is unaffected.
	if _, err := a.Authenticate("hunter22", "10.0.0.2"); err != nil {
		t.Fatalf("other client must not be locked: %v", err)
	}
}

func TestAuthenticate_LockoutExpires(t *testing.T) {
	a := testAuthenticator(t)
	now := time.Now()
	a.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, _ = a.Authenticate("wrong", "10.0.0.1")
	}
	if _, err := a.Authenticate("hunter22", "10.0.0.1"); err == nil {
		t.Fatalf("expected lockout")
	}

	now = now.Add(6 * time.Minute)
	if _, err := a.Authenticate("hunter22", "10.0.0.1"); err != nil {
		t.Fatalf("lockout must expire: %v", err)
	}
}

func TestAuthenticate_SuccessClearsFailures(t *testing.T) {
	a := testAuthenticator(t)
	_, _ = a.Authenticate("wrong", "10.0.0.1")
	if _, err := a.Authenticate("hunter22", "10.0.0.1"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	// The counter starts fresh afterwards.
	_, err := a.Authenticate("wrong", "10.0.0.1")
	var af *AuthFailure
	if !errors.As(err, &af) || af.AttemptsLeft != 2 {
		t.Fatalf("expected reset attempt budget; got %v", err)
	}
}

func TestVerifySession_Expiry(t *testing.T) {
	a := testAuthenticator(t)
	now := time.Now()
	a.now = func() time.Time { return now }

	token, err := a.Authenticate("hunter22", "10.0.0.1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	now = now.Add(2 * time.Hour)
	if a.VerifySession(token) {
		t.Fatalf("expired token must not verify")
	}
}
