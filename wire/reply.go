package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/azyklus/mongo/bson"
)

// Header is a decoded 16-byte wire-protocol message header.
type Header struct {
	MessageLength int32
	RequestID     int32
	ResponseTo    int32
	OpCode        OpCode
}

// ReadHeader reads and decodes the 16-byte header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("wire: reading header: %w", err)
	}
	return Header{
		MessageLength: int32(binary.LittleEndian.Uint32(buf[0:4])),
		RequestID:     int32(binary.LittleEndian.Uint32(buf[4:8])),
		ResponseTo:    int32(binary.LittleEndian.Uint32(buf[8:12])),
		OpCode:        OpCode(int32(binary.LittleEndian.Uint32(buf[12:16]))),
	}, nil
}

// Reply is a decoded OP_REPLY message.
type Reply struct {
	ResponseTo     int32
	ResponseFlags  int32
	CursorID       int64
	StartingFrom   int32
	NumberReturned int32
	Documents      []bson.Value
}

// CursorNotFound reports whether the server could not find the cursor
// this reply answers. Per spec.md §4.2, the cursor-id is forced to zero
// in that case regardless of the wire value.
func (r Reply) CursorNotFound() bool {
	return r.ResponseFlags&ReplyCursorNotFound != 0
}

// QueryFailure reports whether the server flagged this reply as an
// error (the sole document is then typically an "$err"/"code" document).
func (r Reply) QueryFailure() bool {
	return r.ResponseFlags&ReplyQueryFailure != 0
}

// ReadReply reads one complete OP_REPLY message (header already
// consumed by the caller via ReadHeader, with its MessageLength used to
// size the remaining read) from r.
func ReadReply(r io.Reader, h Header) (Reply, error) {
	if h.OpCode != OpReply {
		return Reply{}, fmt.Errorf("wire: expected OP_REPLY, got opcode %d", h.OpCode)
	}
	remaining := int(h.MessageLength) - HeaderLen
	if remaining < 20 {
		return Reply{}, fmt.Errorf("wire: reply body too short: %d bytes", remaining)
	}
	buf := make([]byte, remaining)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Reply{}, fmt.Errorf("wire: reading reply body: %w", err)
	}
	return ParseReply(h, buf)
}

// ParseReply decodes an OP_REPLY body (the bytes following the header)
// already fully buffered in buf.
func ParseReply(h Header, buf []byte) (Reply, error) {
	if len(buf) < 20 {
		return Reply{}, fmt.Errorf("wire: reply body too short: %d bytes", len(buf))
	}
	rep := Reply{
		ResponseTo:     h.ResponseTo,
		ResponseFlags:  int32(binary.LittleEndian.Uint32(buf[0:4])),
		CursorID:       int64(binary.LittleEndian.Uint64(buf[4:12])),
		StartingFrom:   int32(binary.LittleEndian.Uint32(buf[12:16])),
		NumberReturned: int32(binary.LittleEndian.Uint32(buf[16:20])),
	}
	if rep.CursorNotFound() {
		rep.CursorID = 0
	}
	off := 20
	for i := int32(0); i < rep.NumberReturned; i++ {
		if off+4 > len(buf) {
			return Reply{}, fmt.Errorf("wire: truncated reply: document %d missing", i)
		}
		docLen := int(binary.LittleEndian.Uint32(buf[off : off+4]))
		if off+docLen > len(buf) {
			return Reply{}, fmt.Errorf("wire: truncated reply: document %d length %d exceeds buffer", i, docLen)
		}
		doc, err := bson.Parse(buf[off : off+docLen])
		if err != nil {
			return Reply{}, fmt.Errorf("wire: parsing document %d: %w", i, err)
		}
		rep.Documents = append(rep.Documents, doc)
		off += docLen
	}
	return rep, nil
}
