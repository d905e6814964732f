package mongo

import (
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/puzpuzpuz/xsync/v3"
)

// Replica is one addressable MongoDB endpoint.
type Replica struct {
	Host string
	Port uint16
	TLS  bool
}

// Resolver turns a connection config into a concrete replica list,
// pluggable so tests can inject a fake instead of hitting DNS.
type Resolver interface {
	Resolve(cfg ConnectionConfig) ([]Replica, error)
}

// dnsResolver resolves mongodb+srv:// URIs against the SRV record
// _mongodb._tcp.<host>, using the DNS_SERVER environment override (or
// 8.8.8.8 by default) per spec.md §6. Non-SRV configs resolve to their
// single literal replica without touching the network.
type dnsResolver struct {
	server string
	cache  *xsync.MapOf[string, []Replica]
}

// NewResolver builds the default Resolver. server is the host of the
// DNS server to query for SRV lookups (queried on port 53); pass "" to
// use the DNS_SERVER environment variable (falling back to 8.8.8.8).
func NewResolver(server string) Resolver {
	if server == "" {
		server = os.Getenv("DNS_SERVER")
	}
	if server == "" {
		server = "8.8.8.8"
	}
	return &dnsResolver{
		server: server,
		cache:  xsync.NewMapOf[string, []Replica](),
	}
}

func (r *dnsResolver) Resolve(cfg ConnectionConfig) ([]Replica, error) {
	if !cfg.SRV {
		return []Replica{{Host: cfg.Host, Port: cfg.Port, TLS: cfg.TLS}}, nil
	}

	if cached, ok := r.cache.Load(cfg.Host); ok {
		return cached, nil
	}

	name := dns.Fqdn("_mongodb._tcp." + cfg.Host)
	client := new(dns.Client)
	client.Timeout = 5 * time.Second

	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypeSRV)

	resp, _, err := client.Exchange(msg, r.server+":53")
	if err != nil {
		return nil, wrapf(ErrCommunication, "SRV lookup for %s: %v", name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, wrapf(ErrCommunication, "SRV lookup for %s: rcode %d", name, resp.Rcode)
	}

	replicas := make([]Replica, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}
		replicas = append(replicas, Replica{
			Host: strings.TrimSuffix(srv.Target, "."),
			Port: srv.Port,
			TLS:  true,
		})
	}
	if len(replicas) == 0 {
		return nil, wrapf(ErrCommunication, "SRV lookup for %s returned no records", name)
	}

	r.cache.Store(cfg.Host, replicas)
	return replicas, nil
}
