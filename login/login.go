// Package login provides the credentials-provider capability connections
// use to authenticate: a (login name, optional OAuth token) pair fetched
// once per connection open.
package login

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// Credentials is a login name paired with an optional OAuth access token
// (without the `oauth:` prefix). A nil token means an anonymous session:
// no PASS is sent.
type Credentials struct {
	Login string
	Token *string
}

// Provider yields fresh Credentials on demand. Implementations may
// suspend (e.g. to refresh a token over the network); Connection calls
// GetCredentials once per connection open.
type Provider interface {
	GetCredentials(ctx context.Context) (Credentials, error)
}

// Static always returns the same Credentials and never fails.
type Static struct {
	credentials Credentials
}

// NewStatic builds a Provider returning the given login and token on every
// call. Pass a nil token for an anonymous session.
func NewStatic(login string, token *string) *Static {
	return &Static{credentials: Credentials{Login: login, Token: token}}
}

// Anonymous builds credentials for an anonymous session, using Twitch's
// `justinfan<N>` anonymous-login convention.
func Anonymous() *Static {
	return &Static{credentials: Credentials{Login: anonymousLogin()}}
}

func (s *Static) GetCredentials(context.Context) (Credentials, error) {
	return s.credentials, nil
}

func anonymousLogin() string {
	n, err := rand.Int(rand.Reader, big.NewInt(99999))
	if err != nil {
		n = big.NewInt(12345)
	}
	return fmt.Sprintf("justinfan%05d", n.Int64())
}
