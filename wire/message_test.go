package wire

import (
	"bytes"
	"testing"

	"github.com/azyklus/mongo/bson"
	"github.com/stretchr/testify/require"
)

func TestEncodeQueryHeader(t *testing.T) {
	q := Query{
		Flags:              FlagSlaveOk,
		FullCollectionName: "db.coll",
		NumberToSkip:       0,
		NumberToReturn:     100,
		Query:              bson.Document(),
	}
	buf, err := Encode(7, q)
	require.NoError(t, err)
	require.Greater(t, len(buf), HeaderLen)

	h, err := ReadHeader(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, int32(len(buf)), h.MessageLength)
	require.Equal(t, int32(7), h.RequestID)
	require.Equal(t, int32(0), h.ResponseTo)
	require.Equal(t, OpQuery, h.OpCode)
}

func TestEncodeQueryWithProjection(t *testing.T) {
	filter := bson.Document()
	_ = filter.AddKV("label", bson.String("l"))
	fields := bson.Document()
	_ = fields.AddKV("_id", bson.Int32(0))

	q := Query{
		FullCollectionName: "test.things",
		NumberToReturn:     10,
		Query:              filter,
		ReturnFields:       fields,
	}
	buf, err := Encode(1, q)
	require.NoError(t, err)
	require.Greater(t, len(buf), HeaderLen+4+len("test.things")+1+4+4)
}

func TestEncodeGetMore(t *testing.T) {
	gm := GetMore{FullCollectionName: "test.things", NumberToReturn: 50, CursorID: 12345}
	buf, err := Encode(2, gm)
	require.NoError(t, err)
	h, err := ReadHeader(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, OpGetMore, h.OpCode)
}

func TestEncodeKillCursors(t *testing.T) {
	kc := KillCursors{CursorIDs: []int64{1, 2, 3}}
	buf, err := Encode(3, kc)
	require.NoError(t, err)
	require.Equal(t, HeaderLen+8+8*3, len(buf))
}
