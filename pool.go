package mongo

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/azyklus/mongo/bson"
	"github.com/azyklus/mongo/wire"
)

// TLSConfig carries the build-time TLS knobs from spec.md §6: whether
// TLS is required, whether to verify the peer, an optional CA file, and
// the minimum protocol version.
type TLSConfig struct {
	Enabled    bool
	VerifyPeer bool
	CAFile     string
	MinVersion uint16
}

// workerReply is what a worker hands back on its reader channel: the parsed
// documents from one OP_REPLY plus the server's cursor-id, or an error
// if the worker died mid-request.
type workerReply struct {
	cursorID  int64
	documents []bson.Value
	flags     int32
	err       error
}

// slot is one pool worker: a dedicated socket to one replica, driven by
// two channels. The client never touches slot.conn directly — everything
// goes through writer/reader.
type slot struct {
	id            int
	replica       Replica
	conn          net.Conn
	writer        chan []byte
	reader        chan workerReply
	inuse         bool
	authenticated bool
	dead          bool
	correlation   uuid.UUID
}

// pool is the fixed-size set of worker slots: maxConnections for every
// replica. mu serializes slot selection and the authenticated/inuse
// flags; request ids are allocated under the Client's own mutex.
type pool struct {
	mu       sync.Mutex
	slots    []*slot
	lastUsed int
	tls      TLSConfig
	metrics  *poolMetrics
	dialer   func(Replica) (net.Conn, error)
}

func newPool(replicas []Replica, maxConnections int, tlsCfg TLSConfig, m *poolMetrics) (*pool, error) {
	p := &pool{tls: tlsCfg, metrics: m}
	for _, r := range replicas {
		for i := 0; i < maxConnections; i++ {
			s := &slot{
				id:          len(p.slots),
				replica:     r,
				writer:      make(chan []byte),
				reader:      make(chan workerReply),
				correlation: uuid.New(),
			}
			p.slots = append(p.slots, s)
			go p.runWorker(s)
		}
	}
	if m != nil {
		m.slotsTotal(len(p.slots))
	}
	return p, nil
}

// runWorker owns one socket for its whole lifetime. It dials lazily on
// first use rather than at pool construction so a client can be built
// against replicas that aren't reachable yet.
func (p *pool) runWorker(s *slot) {
	entry := logWorker(s.replica, s.id)
	for raw := range s.writer {
		if len(raw) == 0 {
			entry.Debug("worker received empty packet, exiting")
			return
		}
		if s.conn == nil {
			if err := p.dial(s); err != nil {
				entry.WithError(err).Error("worker failed to connect")
				s.reader <- workerReply{err: wrap(ErrCommunication, err)}
				s.dead = true
				return
			}
			entry.Debug("worker connected")
		}

		if _, err := s.conn.Write(raw); err != nil {
			entry.WithError(err).Error("worker write failed")
			s.reader <- workerReply{err: wrap(ErrCommunication, err)}
			s.dead = true
			_ = s.conn.Close()
			return
		}

		header, err := wire.ReadHeader(s.conn)
		if err != nil {
			entry.WithError(err).Error("worker failed to read reply header")
			s.reader <- workerReply{err: wrap(ErrCommunication, err)}
			s.dead = true
			_ = s.conn.Close()
			return
		}

		reply, err := wire.ReadReply(s.conn, header)
		if err != nil {
			entry.WithError(err).Error("worker failed to read reply body")
			s.reader <- workerReply{err: wrap(ErrCommunication, err)}
			s.dead = true
			_ = s.conn.Close()
			return
		}

		s.reader <- workerReply{
			cursorID:  reply.CursorID,
			documents: reply.Documents,
			flags:     reply.ResponseFlags,
		}
	}
}

func (p *pool) dial(s *slot) error {
	if p.dialer != nil {
		conn, err := p.dialer(s.replica)
		if err != nil {
			return err
		}
		s.conn = conn
		return nil
	}
	addr := net.JoinHostPort(s.replica.Host, strconv.Itoa(int(s.replica.Port)))
	if s.replica.TLS || p.tls.Enabled {
		cfg := &tls.Config{
			InsecureSkipVerify: !p.tls.VerifyPeer,
			MinVersion:         p.tls.MinVersion,
		}
		if p.tls.CAFile != "" {
			pool, err := loadCAFile(p.tls.CAFile)
			if err != nil {
				return err
			}
			cfg.RootCAs = pool
		}
		conn, err := tls.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}, "tcp", addr, cfg)
		if err != nil {
			return err
		}
		s.conn = conn
		return nil
	}
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func loadCAFile(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, wrapf(ErrConfig, "failed to parse CA file %s", path)
	}
	return pool, nil
}

// acquire scans the pool in round-robin order starting just after the
// last used slot, returning the first free one. The upper bound is
// inclusive of len(p.slots) rather than exclusive — this mirrors the
// off-by-one in spec.md §9's open questions and is preserved rather
// than silently fixed; in practice the extra iteration re-checks the
// first slot of the scan a second time rather than indexing out of
// range, since the modulo below wraps it back in bounds.
func (p *pool) acquire(requireAuth bool, runAuth func(*slot) error) (*slot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.slots)
	if n == 0 {
		return nil, wrapf(ErrConfig, "pool has no slots")
	}

	var waitStart time.Time
	for {
		var found *slot
		for i := 0; i <= n; i++ {
			idx := (p.lastUsed + 1 + i) % n
			s := p.slots[idx]
			if !s.inuse && !s.dead {
				found = s
				p.lastUsed = idx
				break
			}
		}
		if found != nil {
			found.inuse = true
			if p.metrics != nil {
				p.metrics.slotsInUse(p.countInUse())
				if !waitStart.IsZero() {
					p.metrics.acquireWaitSeconds(time.Since(waitStart).Seconds())
				}
			}
			if requireAuth && !found.authenticated && runAuth != nil {
				if err := runAuth(found); err != nil {
					found.inuse = false
					return nil, err
				}
				found.authenticated = true
			}
			return found, nil
		}
		if waitStart.IsZero() {
			waitStart = time.Now()
		}
		p.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		p.mu.Lock()
	}
}

func (p *pool) countInUse() int {
	n := 0
	for _, s := range p.slots {
		if s.inuse {
			n++
		}
	}
	return n
}

// release clears a slot's in-use flag. Releasing an already-free slot
// fails with ErrInvalidState per spec.md §4.4.
func (p *pool) release(s *slot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !s.inuse {
		return wrapf(ErrInvalidState, "double release of pool slot %d", s.id)
	}
	s.inuse = false
	if p.metrics != nil {
		p.metrics.slotsInUse(p.countInUse())
	}
	return nil
}

// send transmits raw and blocks for the matching reply. It does not
// acquire or release the slot — callers already hold it.
func (s *slot) send(raw []byte) (workerReply, error) {
	s.writer <- raw
	r := <-s.reader
	if r.err != nil {
		return workerReply{}, r.err
	}
	return r, nil
}
