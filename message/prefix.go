package message

import "strings"

// Prefix is the optional `:prefix` portion of an IRC line. It is either a
// server name (IsServer true) or a nick, optionally with user/host, e.g.
// `nick`, `nick@host` or `nick!user@host`.
type Prefix struct {
	Name     string
	User     string
	Host     string
	IsServer bool
}

// ParsePrefix disambiguates the four prefix forms the grammar allows:
// `nick`, `nick!user@host`, `nick@host`, or a bare servername.
func ParsePrefix(tok string) Prefix {
	if i := strings.IndexByte(tok, '!'); i >= 0 {
		nick, rest := tok[:i], tok[i+1:]
		user, host := rest, ""
		if j := strings.IndexByte(rest, '@'); j >= 0 {
			user, host = rest[:j], rest[j+1:]
		}
		return Prefix{Name: nick, User: user, Host: host}
	}
	if i := strings.IndexByte(tok, '@'); i >= 0 {
		return Prefix{Name: tok[:i], Host: tok[i+1:]}
	}
	if strings.IndexByte(tok, '.') >= 0 {
		return Prefix{Name: tok, IsServer: true}
	}
	return Prefix{Name: tok}
}

// String renders the prefix back to its wire form. A user without a host is
// dropped silently, matching the wire grammar's own disambiguation rule.
func (p Prefix) String() string {
	if p.IsServer || p.Host == "" {
		return p.Name
	}
	if p.User != "" {
		return p.Name + "!" + p.User + "@" + p.Host
	}
	return p.Name + "@" + p.Host
}
