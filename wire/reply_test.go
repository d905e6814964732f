package wire

import (
	"encoding/binary"
	"testing"

	"github.com/azyklus/mongo/bson"
	"github.com/stretchr/testify/require"
)

func buildReplyBytes(t *testing.T, flags int32, cursorID int64, docs ...bson.Value) []byte {
	t.Helper()
	var docBytes [][]byte
	total := 20
	for _, d := range docs {
		b, err := d.Bytes()
		require.NoError(t, err)
		docBytes = append(docBytes, b)
		total += len(b)
	}
	body := make([]byte, total)
	binary.LittleEndian.PutUint32(body[0:4], uint32(flags))
	binary.LittleEndian.PutUint64(body[4:12], uint64(cursorID))
	binary.LittleEndian.PutUint32(body[12:16], 0)
	binary.LittleEndian.PutUint32(body[16:20], uint32(len(docs)))
	off := 20
	for _, b := range docBytes {
		off += copy(body[off:], b)
	}

	full := make([]byte, HeaderLen+len(body))
	binary.LittleEndian.PutUint32(full[0:4], uint32(len(full)))
	binary.LittleEndian.PutUint32(full[4:8], 99)
	binary.LittleEndian.PutUint32(full[8:12], 7)
	binary.LittleEndian.PutUint32(full[12:16], uint32(OpReply))
	copy(full[HeaderLen:], body)
	return full
}

func TestParseReplyDocuments(t *testing.T) {
	d1 := bson.Document()
	_ = d1.AddKV("iter", bson.Int32(0))
	d2 := bson.Document()
	_ = d2.AddKV("iter", bson.Int32(1))

	full := buildReplyBytes(t, 0, 42, d1, d2)
	h := Header{MessageLength: int32(len(full)), RequestID: 99, ResponseTo: 7, OpCode: OpReply}
	rep, err := ParseReply(h, full[HeaderLen:])
	require.NoError(t, err)
	require.Equal(t, int64(42), rep.CursorID)
	require.Len(t, rep.Documents, 2)

	v, _ := rep.Documents[1].Get("iter")
	n, _ := v.ToInt32()
	require.Equal(t, int32(1), n)
}

func TestParseReplyCursorNotFoundForcesZero(t *testing.T) {
	full := buildReplyBytes(t, ReplyCursorNotFound, 999)
	h := Header{MessageLength: int32(len(full)), OpCode: OpReply}
	rep, err := ParseReply(h, full[HeaderLen:])
	require.NoError(t, err)
	require.True(t, rep.CursorNotFound())
	require.Equal(t, int64(0), rep.CursorID)
}

func TestParseReplyQueryFailure(t *testing.T) {
	errDoc := bson.Document()
	_ = errDoc.AddKV("$err", bson.String("timed out"))
	_ = errDoc.AddKV("code", bson.Int32(50))
	full := buildReplyBytes(t, ReplyQueryFailure, 0, errDoc)
	h := Header{MessageLength: int32(len(full)), OpCode: OpReply}
	rep, err := ParseReply(h, full[HeaderLen:])
	require.NoError(t, err)
	require.True(t, rep.QueryFailure())
	require.Len(t, rep.Documents, 1)
}
