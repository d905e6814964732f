package mongo

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is the standard legacy MongoDB listener port.
const DefaultPort = 27017

// Credentials holds the username/password/authentication-database triple
// parsed out of a connection URI, or the zero value when the URI carries
// no userinfo.
type Credentials struct {
	User   string
	Pass   string
	AuthDB string
}

// ConnectionConfig is everything ParseURI extracts from a connection URI:
// enough to build a Client without touching the network yet (SRV
// resolution, if required, happens separately — see Resolver.Resolve).
type ConnectionConfig struct {
	Host        string
	Port        uint16
	SRV         bool
	TLS         bool
	Credentials Credentials
	HasAuth     bool
}

// ParseURI parses a mongodb[+srv]://[user:pass@]host[:port][/authDb] URI
// (and the mongo://, mongo+srv:// aliases), per spec.md §4.4/§6. Schemes
// containing +srv require TLS and defer replica resolution to DNS SRV;
// any other scheme is rejected with ErrConfig.
func ParseURI(raw string) (ConnectionConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ConnectionConfig{}, wrap(ErrConfig, err)
	}

	scheme := strings.ToLower(u.Scheme)
	var srv bool
	switch scheme {
	case "mongodb", "mongo":
		srv = false
	case "mongodb+srv", "mongo+srv":
		srv = true
	default:
		return ConnectionConfig{}, wrapf(ErrConfig, "unsupported URI scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return ConnectionConfig{}, wrapf(ErrConfig, "URI %q has no host", raw)
	}

	host := u.Hostname()
	port := uint16(DefaultPort)
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return ConnectionConfig{}, wrapf(ErrConfig, "invalid port %q", p)
		}
		port = uint16(n)
	}

	cfg := ConnectionConfig{
		Host: host,
		Port: port,
		SRV:  srv,
		TLS:  srv,
	}

	if u.User != nil {
		pass, _ := u.User.Password()
		cfg.Credentials.User = u.User.Username()
		cfg.Credentials.Pass = pass
		cfg.HasAuth = true
	}

	authDB := strings.TrimPrefix(u.Path, "/")
	if authDB != "" {
		cfg.Credentials.AuthDB = authDB
	} else if cfg.HasAuth {
		cfg.Credentials.AuthDB = "admin"
	}

	return cfg, nil
}
