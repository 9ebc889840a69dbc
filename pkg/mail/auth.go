package mail

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"golang.org/x/exp/slices"
)

var (
	ErrUnencryptedRelay = errors.New("refusing to authenticate over an unencrypted relay connection")
	ErrRelayWithoutAuth = errors.New("relay does not offer authentication")
)

// tlsOnlyAuth authenticates with PLAIN, or LOGIN when the relay offers only
// that, and refuses to start unless the connection is already encrypted.
// gomail always calls Auth when one is set, so a relay that hides STARTTLS
// or AUTH makes the send fail before any credential is written.
type tlsOnlyAuth struct {
	username string
	password string
	host     string
	plain    smtp.Auth
}

func newTLSOnlyAuth(username, password, host string) *tlsOnlyAuth {
	return &tlsOnlyAuth{username: username, password: password, host: host}
}

func (a *tlsOnlyAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, ErrUnencryptedRelay
	}
	if len(server.Auth) == 0 {
		return "", nil, ErrRelayWithoutAuth
	}
	a.plain = nil
	switch {
	case slices.Contains(server.Auth, "PLAIN"):
		a.plain = smtp.PlainAuth("", a.username, a.password, a.host)
		return a.plain.Start(server)
	case slices.Contains(server.Auth, "LOGIN"):
		return "LOGIN", nil, nil
	default:
		return "", nil, fmt.Errorf("relay offers no supported auth mechanism (offered: %s)", strings.Join(server.Auth, " "))
	}
}

func (a *tlsOnlyAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if a.plain != nil {
		return a.plain.Next(fromServer, more)
	}
	if !more {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(string(fromServer))) {
	case "username:":
		return []byte(a.username), nil
	case "password:":
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected LOGIN challenge %q", fromServer)
	}
}
