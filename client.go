package mongo

import (
	"context"
	"math"
	"sync"

	"github.com/azyklus/mongo/auth"
	"github.com/azyklus/mongo/bson"
	"github.com/azyklus/mongo/wire"
)

// maxRequestID is the wraparound bound for request-id allocation:
// monotonic modulo INT32_MAX-1, per spec.md §3.
const maxRequestID = math.MaxInt32 - 1

// Options configures Client beyond what the connection URI carries.
type Options struct {
	MaxConnections int
	QueryFlags     int32
	WriteConcern   bson.Value
	TLS            TLSConfig
	DNSServer      string
}

// DefaultOptions returns the options a bare Connect call uses.
func DefaultOptions() Options {
	wc := bson.Document()
	_ = wc.AddKV("w", bson.Int32(1))
	return Options{
		MaxConnections: 4,
		WriteConcern:   wc,
		TLS:            TLSConfig{VerifyPeer: true},
	}
}

// Client owns the replica list, the connection pool, and the
// authentication state for a single logical connection to a MongoDB
// deployment, per spec.md §3/§4.4.
type Client struct {
	mu             sync.Mutex
	replicas       []Replica
	pool           *pool
	requestID      int32
	queryFlags     int32
	credentials    Credentials
	hasAuth        bool
	authenticated  bool
	writeConcern   bson.Value
	metrics        *poolMetrics
	authMechanism  string
}

// Connect parses uri, resolves its replica set (via DNS SRV when the
// +srv scheme is used), and starts a connection pool against it. No
// socket is opened until the first command is issued.
func Connect(uri string, opts ...Options) (*Client, error) {
	cfg, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if cfg.SRV && !o.TLS.Enabled {
		o.TLS.Enabled = true
	}

	resolver := NewResolver(o.DNSServer)
	replicas, err := resolver.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	m := newPoolMetrics()
	p, err := newPool(replicas, o.MaxConnections, o.TLS, m)
	if err != nil {
		return nil, err
	}

	c := &Client{
		replicas:      replicas,
		pool:          p,
		queryFlags:    o.QueryFlags,
		credentials:   cfg.Credentials,
		hasAuth:       cfg.HasAuth,
		writeConcern:  o.WriteConcern,
		metrics:       m,
		authMechanism: "SCRAM-SHA-1",
	}
	return c, nil
}

// Database returns a handle to the named database. Cheap: no network
// activity occurs until a command is run against it.
func (c *Client) Database(name string) *Database {
	return &Database{name: name, client: c}
}

// nextRequestID allocates the next request id under c.mu,
// wrapping modulo maxRequestID per spec.md §3/§8.
func (c *Client) nextRequestID() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestID = (c.requestID + 1) % maxRequestID
	return c.requestID
}

// acquire hands out a pool slot, running SCRAM or MONGODB-CR on it
// first if the client has credentials and the slot hasn't authenticated
// yet.
func (c *Client) acquire(ctx context.Context) (*slot, error) {
	return c.pool.acquire(c.hasAuth, func(s *slot) error {
		return c.authenticateSlot(ctx, s)
	})
}

func (c *Client) release(s *slot) error {
	return c.pool.release(s)
}

func (c *Client) authenticateSlot(ctx context.Context, s *slot) error {
	runner := &slotCommandRunner{client: c, slot: s}
	var err error
	if c.authMechanism == "MONGODB-CR" {
		err = auth.AuthenticateCR(ctx, runner, c.credentials.AuthDB, c.credentials.User, c.credentials.Pass)
	} else {
		err = auth.AuthenticateSCRAM(ctx, runner, c.credentials.AuthDB, c.credentials.User, c.credentials.Pass)
	}
	if err != nil {
		return wrap(ErrAuth, err)
	}
	c.mu.Lock()
	c.authenticated = true
	c.mu.Unlock()
	return nil
}

// Authenticated reports whether at least one pool slot has completed
// the SCRAM/MONGODB-CR handshake, per spec.md §8 scenario 6.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// runOnSlot sends a framed query-style message on an already-acquired
// slot and returns the decoded documents and server cursor-id.
func (c *Client) runOnSlot(s *slot, msg wire.Message) (workerReply, error) {
	reqID := c.nextRequestID()
	if c.metrics != nil {
		c.metrics.commandIssued(int32(msg.OpCode()))
	}
	raw, err := wire.Encode(reqID, msg)
	if err != nil {
		return workerReply{}, wrap(ErrProtocol, err)
	}
	return s.send(raw)
}

// slotCommandRunner implements auth.CommandRunner against a single
// already-acquired, not-yet-authenticated slot, by issuing a
// find-style OP_QUERY against "<db>.$cmd" limited to one document.
type slotCommandRunner struct {
	client *Client
	slot   *slot
}

func (r *slotCommandRunner) RunCommand(ctx context.Context, db string, cmd bson.Value) (bson.Value, error) {
	q := &wire.Query{
		Flags:               r.client.queryFlags,
		FullCollectionName:  db + ".$cmd",
		NumberToSkip:        0,
		NumberToReturn:      -1,
		Query:               cmd,
	}
	reply, err := r.client.runOnSlot(r.slot, q)
	if err != nil {
		return bson.Value{}, err
	}
	if len(reply.documents) == 0 {
		return bson.Value{}, wrapf(ErrProtocol, "command against %s.$cmd returned no reply document", db)
	}
	return reply.documents[0], nil
}
