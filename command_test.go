package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azyklus/mongo/bson"
)

func TestInsertGeneratesMissingID(t *testing.T) {
	var captured bson.Value
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		captured = req.query
		reply := bson.Document()
		_ = reply.AddKV("ok", bson.Double(1))
		return fakeResponse{documents: []bson.Value{reply}}
	})
	col := c.Database("testdb").Collection("items")

	doc := bson.Document()
	_ = doc.AddKV("label", bson.String("l"))

	sr, err := col.Insert(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, sr.OK)
	require.Len(t, sr.InsertedIDs, 1)

	require.True(t, captured.Contains("documents"))
	docsArr, err := captured.Get("documents")
	require.NoError(t, err)
	first, err := docsArr.Index(0)
	require.NoError(t, err)
	require.True(t, first.Contains("_id"))
}

func TestInsertKeepsExistingID(t *testing.T) {
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		reply := bson.Document()
		_ = reply.AddKV("ok", bson.Double(1))
		return fakeResponse{documents: []bson.Value{reply}}
	})
	col := c.Database("testdb").Collection("items")

	doc := bson.Document()
	_ = doc.AddKV("_id", bson.Int32(7))
	sr, err := col.Insert(context.Background(), doc)
	require.NoError(t, err)
	require.Empty(t, sr.InsertedIDs)
}

func TestStatusReplyParsesErrmsg(t *testing.T) {
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		reply := bson.Document()
		_ = reply.AddKV("ok", bson.Double(0))
		_ = reply.AddKV("errmsg", bson.String("boom"))
		return fakeResponse{documents: []bson.Value{reply}}
	})
	col := c.Database("testdb").Collection("items")
	sr, err := col.Count(context.Background(), bson.Document())
	require.NoError(t, err)
	require.False(t, sr.OK)
	require.Equal(t, "boom", sr.Err)
}

func TestUpdateCommandShape(t *testing.T) {
	var captured bson.Value
	c := newTestClient(t, func(req fakeRequest) fakeResponse {
		captured = req.query
		reply := bson.Document()
		_ = reply.AddKV("ok", bson.Double(1))
		return fakeResponse{documents: []bson.Value{reply}}
	})
	col := c.Database("testdb").Collection("items")

	filter := bson.Document()
	_ = filter.AddKV("integer", bson.Int32(100))
	set := bson.Document()
	inner := bson.Document()
	_ = inner.AddKV("integer", bson.Int32(200))
	_ = set.AddKV("$set", inner)

	_, err := col.Update(context.Background(), filter, set, true, false)
	require.NoError(t, err)

	updates, err := captured.Get("updates")
	require.NoError(t, err)
	first, err := updates.Index(0)
	require.NoError(t, err)
	multi, err := first.Get("multi")
	require.NoError(t, err)
	b, err := multi.ToBool()
	require.NoError(t, err)
	require.True(t, b)
}
