// session.go
// ----------
// Session is the credential provider handed to the transport. It keeps the
// OMS instance the user logged into and the bearer token, and records the
// expiry signal raised by 401 responses.
package omsbridge

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"github.com/opengovern/oms-bridge/internal"
)

var ErrNotAuthenticated = errors.New("session is not authenticated")

type Session struct {
	mu       sync.RWMutex
	oms      string
	token    *oauth2.Token
	expired  bool
	onExpiry func(BackendKind)
}

// NewSession returns a session for the given OMS instance. oms may be an
// instance name ("acme") or a URL.
func NewSession(oms string) *Session {
	return &Session{oms: oms}
}

// OnExpiry registers a callback run when a 401 expiry signal arrives.
func (s *Session) OnExpiry(fn func(BackendKind)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpiry = fn
}

func (s *Session) SetOMS(oms string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oms = oms
}

func (s *Session) OMS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.oms
}

// SetToken stores the bearer token. A zero expiration is taken from the
// token's exp claim when it is a JWT.
func (s *Session) SetToken(value string, expiration time.Time) {
	if expiration.IsZero() {
		expiration = jwtExpiry(value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		s.token = nil
	} else {
		s.token = &oauth2.Token{AccessToken: value, TokenType: "Bearer", Expiry: expiration}
	}
	s.expired = false
}

// Clear forgets the token, as on logout.
func (s *Session) Clear() {
	s.SetToken("", time.Time{})
}

// BaseURL derives the REST root from the OMS instance:
//
//	""                         -> ""
//	"https://x/rest/s1"        -> unchanged
//	"https://x"                -> "https://x/rest/s1/"
//	"acme"                     -> "https://acme.hotwax.io/rest/s1/"
func (s *Session) BaseURL() string {
	return BaseURLFor(s.OMS())
}

func BaseURLFor(oms string) string {
	if oms == "" {
		return ""
	}
	if strings.HasPrefix(oms, "http") {
		if strings.Contains(oms, "/rest/s1") {
			return oms
		}
		return oms + "/rest/s1/"
	}
	return "https://" + oms + ".hotwax.io/rest/s1/"
}

// IsAuthenticated reports a token that has not passed its expiration.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticatedLocked()
}

// authenticatedLocked requires s.mu to be held.
func (s *Session) authenticatedLocked() bool {
	if s.token == nil || s.token.AccessToken == "" {
		return false
	}
	return s.token.Expiry.IsZero() || internal.IsInFuture(s.token.Expiry)
}

// Expired reports whether a 401 expiry signal arrived since the token was set.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expired
}

// Credentials implements CredentialProvider.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Credentials{BaseURL: BaseURLFor(s.oms)}
	if s.token != nil {
		c.Token = s.token.AccessToken
	}
	return c
}

// NotifyExpired implements ExpiryNotifier. The token is kept; tearing the
// session down is left to the callback.
func (s *Session) NotifyExpired(kind BackendKind) {
	s.mu.Lock()
	s.expired = true
	fn := s.onExpiry
	s.mu.Unlock()

	if fn != nil {
		fn(kind)
	}
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticatedLocked() {
		return nil, ErrNotAuthenticated
	}
	tok := *s.token
	return &tok, nil
}

var _ oauth2.TokenSource = (*Session)(nil)

// jwtExpiry reads exp without verifying the signature; the OMS verifies.
func jwtExpiry(value string) time.Time {
	if strings.Count(value, ".") != 2 {
		return time.Time{}
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(value, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
