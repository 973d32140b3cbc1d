package credentials

import (
	"context"
	"fmt"
	"strings"
)

// AccessTokenKey is the name the access token is stored under in every backing store.
const AccessTokenKey = "accessToken"

// Source kinds accepted by NewSource.
const (
	KindStatic  = "static"
	KindEnv     = "env"
	KindCookie  = "cookie"
	KindBBolt   = "bbolt"
	KindKeyring = "keyring"
	KindNone    = "none"
)

// TokenSource yields the current access token. An empty token with a nil
// error means no token is available; callers must not treat that as a failure.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Options carries the backend-specific settings for NewSource.
type Options struct {
	Token          string
	Jar            CookieGetter
	KeyringService string
}

// NewSource selects a TokenSource implementation by kind.
func NewSource(kind string, opts Options) (TokenSource, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindStatic, KindEnv:
		return Static(opts.Token), nil
	case KindCookie, KindBBolt:
		if opts.Jar == nil {
			return nil, fmt.Errorf("cookie token source requires a cookie jar")
		}
		return NewCookieSource(opts.Jar), nil
	case KindKeyring:
		return NewKeyringSource(opts.KeyringService)
	case "", KindNone:
		return None(), nil
	default:
		return nil, fmt.Errorf("unsupported token source %q", kind)
	}
}

// Static returns a source that always yields token exactly as given.
func Static(token string) TokenSource {
	return staticSource(token)
}

type staticSource string

func (s staticSource) AccessToken(context.Context) (string, error) { return string(s), nil }

// None returns a source that never yields a token.
func None() TokenSource { return staticSource("") }
