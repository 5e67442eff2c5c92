package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/prn-tf/projecthub/internal/domain"
)

// CodecConfig configures a SessionCodec.
type CodecConfig struct {
	// HashKey authenticates cookie values (HMAC-SHA256). At least 32 bytes.
	HashKey []byte

	// BlockKey encrypts cookie values with AES when non-empty.
	BlockKey []byte

	// TTL is the session lifetime. Defaults to DefaultSessionTTL.
	TTL time.Duration

	// Secure sets the Secure flag on cookies.
	Secure bool
}

// SessionCodec writes sessions into signed cookies and reads them back.
type SessionCodec struct {
	sc     *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// cookieValue is the signed payload of each session cookie. Every cookie
// binds the account id and issue time so values from different sessions
// cannot be combined.
type cookieValue struct {
	AccountID string `json:"a"`
	Value     string `json:"v"`
	IssuedAt  int64  `json:"t"`
}

// NewSessionCodec creates a codec from cfg.
func NewSessionCodec(cfg CodecConfig) (*SessionCodec, error) {
	if len(cfg.HashKey) < 32 {
		return nil, errors.New("session hash key must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}

	var blockKey []byte
	if len(cfg.BlockKey) > 0 {
		blockKey = cfg.BlockKey
	}

	sc := securecookie.New(cfg.HashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(cfg.TTL.Seconds()))

	return &SessionCodec{
		sc:     sc,
		ttl:    cfg.TTL,
		secure: cfg.Secure,
		now:    time.Now,
	}, nil
}

// TTL returns the session lifetime.
func (c *SessionCodec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a session for account and sets the three session cookies.
func (c *SessionCodec) Issue(w http.ResponseWriter, account *domain.Account) (*Session, error) {
	issued := c.now().UTC().Truncate(time.Second)
	session := &Session{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(c.ttl),
	}

	values := map[string]string{
		CookieUserID:   session.AccountID,
		CookieUsername: session.Username,
		CookieRole:     string(session.Role),
	}

	cookies := make([]*http.Cookie, 0, len(values))
	for _, name := range []string{CookieUserID, CookieUsername, CookieRole} {
		encoded, err := c.sc.Encode(name, cookieValue{
			AccountID: session.AccountID,
			Value:     values[name],
			IssuedAt:  issued.Unix(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", name, err)
		}
		cookies = append(cookies, c.cookie(name, encoded, int(c.ttl.Seconds())))
	}

	for _, cookie := range cookies {
		http.SetCookie(w, cookie)
	}
	return session, nil
}

// Resolve returns the session carried by r, or nil when any cookie is
// missing, tampered with, from a different session, or expired.
func (c *SessionCodec) Resolve(r *http.Request) *Session {
	var decoded [3]cookieValue
	for i, name := range []string{CookieUserID, CookieUsername, CookieRole} {
		cookie, err := r.Cookie(name)
		if err != nil || cookie.Value == "" {
			return nil
		}
		if err := c.sc.Decode(name, cookie.Value, &decoded[i]); err != nil {
			return nil
		}
	}

	idVal, nameVal, roleVal := decoded[0], decoded[1], decoded[2]
	if idVal.AccountID == "" || idVal.Value != idVal.AccountID {
		return nil
	}
	for _, v := range []cookieValue{nameVal, roleVal} {
		if v.AccountID != idVal.AccountID || v.IssuedAt != idVal.IssuedAt {
			return nil
		}
	}

	role := domain.Role(roleVal.Value)
	if !role.Valid() {
		return nil
	}

	issued := time.Unix(idVal.IssuedAt, 0).UTC()
	expires := issued.Add(c.ttl)
	if !c.now().Before(expires) {
		return nil
	}

	return &Session{
		AccountID: idVal.AccountID,
		Username:  nameVal.Value,
		Role:      role,
		IssuedAt:  issued,
		ExpiresAt: expires,
	}
}

// Clear expires the three session cookies. It is safe to call without a session.
func (c *SessionCodec) Clear(w http.ResponseWriter) {
	for _, name := range []string{CookieUserID, CookieUsername, CookieRole} {
		http.SetCookie(w, c.cookie(name, "", -1))
	}
}

func (c *SessionCodec) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
