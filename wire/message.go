package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/azyklus/mongo/bson"
)

// A Message is anything that can be framed with a wire-protocol header
// and written to a connection: a type byte sequence plus a request id.
// Grounded on gomongo's message interface (Bytes/RequestID/OpCode), with
// responseTo folded into Encode since this library never replies to a
// peer's request.
type Message interface {
	OpCode() OpCode
	body() ([]byte, error)
}

// Encode frames m with the 16-byte header and returns the full packet
// ready to write to the socket.
func Encode(requestID int32, m Message) ([]byte, error) {
	body, err := m.body()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderLen+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(HeaderLen+len(body)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(requestID))
	binary.LittleEndian.PutUint32(buf[8:12], 0)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(m.OpCode()))
	copy(buf[HeaderLen:], body)
	return buf, nil
}

// Query is an OP_QUERY message.
type Query struct {
	Flags              int32
	FullCollectionName string
	NumberToSkip       int32
	NumberToReturn     int32
	Query              bson.Value
	ReturnFields       bson.Value // zero Value means omitted
}

// OpCode implements Message.
func (Query) OpCode() OpCode { return OpQuery }

func (q Query) body() ([]byte, error) {
	queryBytes, err := q.Query.Bytes()
	if err != nil {
		return nil, fmt.Errorf("wire: encoding query document: %w", err)
	}
	var fieldsBytes []byte
	if !q.ReturnFields.IsNil() {
		fieldsBytes, err = q.ReturnFields.Bytes()
		if err != nil {
			return nil, fmt.Errorf("wire: encoding projection document: %w", err)
		}
	}

	size := 4 + len(q.FullCollectionName) + 1 + 4 + 4 + len(queryBytes) + len(fieldsBytes)
	buf := make([]byte, size)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], uint32(q.Flags))
	off += 4
	off += copy(buf[off:], q.FullCollectionName)
	buf[off] = 0
	off++
	binary.LittleEndian.PutUint32(buf[off:], uint32(q.NumberToSkip))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(q.NumberToReturn))
	off += 4
	off += copy(buf[off:], queryBytes)
	copy(buf[off:], fieldsBytes)
	return buf, nil
}

// GetMore is an OP_GET_MORE message.
type GetMore struct {
	FullCollectionName string
	NumberToReturn     int32
	CursorID           int64
}

// OpCode implements Message.
func (GetMore) OpCode() OpCode { return OpGetMore }

func (g GetMore) body() ([]byte, error) {
	size := 4 + len(g.FullCollectionName) + 1 + 4 + 8
	buf := make([]byte, size)
	off := 4 // reserved int32, left zero
	off += copy(buf[off:], g.FullCollectionName)
	buf[off] = 0
	off++
	binary.LittleEndian.PutUint32(buf[off:], uint32(g.NumberToReturn))
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], uint64(g.CursorID))
	return buf, nil
}

// KillCursors is an OP_KILL_CURSORS message, added per SPEC_FULL.md's
// resolution of spec.md §9's killCursors open question.
type KillCursors struct {
	CursorIDs []int64
}

// OpCode implements Message.
func (KillCursors) OpCode() OpCode { return OpKillCurs }

func (k KillCursors) body() ([]byte, error) {
	buf := make([]byte, 8+8*len(k.CursorIDs))
	off := 4 // reserved int32
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(k.CursorIDs)))
	off += 4
	for _, id := range k.CursorIDs {
		binary.LittleEndian.PutUint64(buf[off:], uint64(id))
		off += 8
	}
	return buf, nil
}
