package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"joarchive/internal/config"
)

const (
	SessionCookieName = "admin_access"

	minSecretLen = 32
)

var (
	errInvalidToken = errors.New("invalid session token")
	errTokenExpired = errors.New("session token expired")
)

// Authorizer decides who may trigger a price refresh and who may use the archive.
type Authorizer struct {
	accessCode    string
	cronSecret    string
	sessionSecret []byte
	sessionTTL    time.Duration
	secureCookie  bool
	now           func() time.Time
}

// NewAuthorizer creates the gate from config. Without a configured session secret a random one is
// generated, so sessions do not survive a restart. An empty access code rejects every login and an
// empty cron secret disables the shared-secret path.
func NewAuthorizer(cnf config.Auth) (*Authorizer, error) {
	secret := []byte(cnf.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, minSecretLen)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
	}

	ttl := cnf.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Authorizer{
		accessCode:    cnf.AccessCode,
		cronSecret:    cnf.CronSecret,
		sessionSecret: secret,
		sessionTTL:    ttl,
		secureCookie:  cnf.SecureCookie,
		now:           time.Now,
	}, nil
}

// WithClock replaces time.Now, used for session expiry.
func (that *Authorizer) WithClock(now func() time.Time) *Authorizer {
	that.now = now
	return that
}

// AuthorizeRefresh is the single policy for the refresh endpoint: the shared secret, as a bearer
// token, the X-Cron-Secret header or the "secret" query parameter, OR a valid admin session.
func (that *Authorizer) AuthorizeRefresh(r *http.Request) bool {
	return that.hasSharedSecret(r) || that.HasSession(r)
}

// HasSession reports whether the request carries a valid, unexpired session cookie.
func (that *Authorizer) HasSession(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	return that.VerifySessionToken(cookie.Value) == nil
}

// CheckAccessCode compares the submitted code with the configured one in constant time.
func (that *Authorizer) CheckAccessCode(code string) bool {
	if that.accessCode == "" || code == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(code), []byte(that.accessCode)) == 1
}

// CreateSessionToken returns base64url(expiry unix) "." hex(HMAC-SHA256(payload)).
func (that *Authorizer) CreateSessionToken(expiresAt time.Time) string {
	payload := []byte(strconv.FormatInt(expiresAt.Unix(), 10))
	return base64.RawURLEncoding.EncodeToString(payload) + "." + that.sign(payload)
}

func (that *Authorizer) VerifySessionToken(token string) error {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return errInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}

	if !hmac.Equal([]byte(that.sign(payload)), []byte(parts[1])) {
		return errInvalidToken
	}

	expiresAt, err := strconv.ParseInt(string(payload), 10, 64)
	if err != nil {
		return errInvalidToken
	}

	if !that.now().Before(time.Unix(expiresAt, 0)) {
		return errTokenExpired
	}

	return nil
}

// SetSessionCookie issues a fresh session cookie.
func (that *Authorizer) SetSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    that.CreateSessionToken(that.now().Add(that.sessionTTL)),
		Path:     "/",
		MaxAge:   int(that.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   that.secureCookie,
	})
}

func (that *Authorizer) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   that.secureCookie,
		Expires:  time.Unix(0, 0),
	})
}

func (that *Authorizer) hasSharedSecret(r *http.Request) bool {
	if that.cronSecret == "" {
		return false
	}

	presented := []string{r.URL.Query().Get("secret"), r.Header.Get("X-Cron-Secret")}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		presented = append(presented, strings.TrimPrefix(header, "Bearer "))
	}

	for _, secret := range presented {
		if secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(that.cronSecret)) == 1 {
			return true
		}
	}

	return false
}

func (that *Authorizer) sign(payload []byte) string {
	mac := hmac.New(sha256.New, that.sessionSecret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
