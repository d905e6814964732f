package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azyklus/mongo/bson"
)

func newTestClient(t *testing.T, handler func(fakeRequest) fakeResponse) *Client {
	t.Helper()
	replicas := []Replica{{Host: "localhost", Port: 27017}}
	m := newPoolMetrics()
	p, err := newPool(replicas, 2, TLSConfig{}, m)
	require.NoError(t, err)
	fm := newFakeMongod()
	p.dialer = fm.dialer(handler)
	return &Client{
		replicas:      replicas,
		pool:          p,
		metrics:       m,
		authMechanism: "SCRAM-SHA-1",
	}
}

func TestClientRequestIDMonotonic(t *testing.T) {
	c := newTestClient(t, func(fakeRequest) fakeResponse { return fakeResponse{} })
	first := c.nextRequestID()
	second := c.nextRequestID()
	require.Equal(t, first+1, second)
}

func TestClientRequestIDWraps(t *testing.T) {
	c := newTestClient(t, func(fakeRequest) fakeResponse { return fakeResponse{} })
	c.requestID = maxRequestID - 1
	id := c.nextRequestID()
	require.EqualValues(t, 0, id)
}

func TestDatabaseRunCommand(t *testing.T) {
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		reply := bson.Document()
		_ = reply.AddKV("ok", bson.Double(1))
		return fakeResponse{documents: []bson.Value{reply}}
	})
	reply, err := c.Database("testdb").RunCommand(context.Background(), bson.Document())
	require.NoError(t, err)
	ok, err := reply.Get("ok")
	require.NoError(t, err)
	n, err := ok.ToFloat()
	require.NoError(t, err)
	require.Equal(t, float64(1), n)
}
