package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azyklus/mongo/bson"
)

func docWithInt(key string, n int32) bson.Value {
	d := bson.Document()
	_ = d.AddKV(key, bson.Int32(n))
	return d
}

func TestCursorItemsDeliversAllBatches(t *testing.T) {
	all := []bson.Value{docWithInt("i", 0), docWithInt("i", 1), docWithInt("i", 2)}
	call := 0
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		call++
		switch call {
		case 1:
			return fakeResponse{documents: all[:2], cursorID: 42}
		case 2:
			return fakeResponse{documents: all[2:], cursorID: 0}
		default:
			return fakeResponse{}
		}
	})

	col := c.Database("testdb").Collection("items")
	cursor := col.Find(bson.Document()).BatchSize(2)
	docs, err := cursor.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, d := range docs {
		n, err := d.Get("i")
		require.NoError(t, err)
		v, err := n.ToInt32()
		require.NoError(t, err)
		require.EqualValues(t, i, v)
	}
}

func TestCursorLimitCapsResults(t *testing.T) {
	all := []bson.Value{docWithInt("i", 0), docWithInt("i", 1), docWithInt("i", 2), docWithInt("i", 3)}
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		return fakeResponse{documents: all, cursorID: 0}
	})
	col := c.Database("testdb").Collection("items")
	cursor := col.Find(bson.Document()).Limit(2)
	docs, err := cursor.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestCursorMaxTimeTimeoutError(t *testing.T) {
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		errDoc := bson.Document()
		_ = errDoc.AddKV("$err", bson.String("operation exceeded time limit"))
		_ = errDoc.AddKV("code", bson.Int32(50))
		return fakeResponse{documents: []bson.Value{errDoc}, cursorID: 0}
	})
	col := c.Database("testdb").Collection("items")
	cursor := col.FindWithOptions(bson.Document(), bson.Value{}, 1500)
	_, err := cursor.Items(context.Background())
	require.Error(t, err)
	require.True(t, isKind(err, ErrOperationTimeout))
}

func TestCursorFirstOrNoneOnEmpty(t *testing.T) {
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		return fakeResponse{documents: nil, cursorID: 0}
	})
	col := c.Database("testdb").Collection("items")
	cursor := col.Find(bson.Document())
	_, ok, err := cursor.FirstOrNone(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCursorTailableReturnsEmptyWithoutClosing(t *testing.T) {
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		return fakeResponse{documents: nil, cursorID: 7}
	})
	col := c.Database("testdb").Collection("items")
	cursor := col.Find(bson.Document()).Tailable(true)
	_, ok, err := cursor.Next(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, cursor.closed)
}
