package mongo

import (
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/azyklus/mongo/bson"
	"github.com/azyklus/mongo/wire"
)

// fakeMongod is the in-memory byte-duplex transport backing pool/cursor/
// client/command tests without a live mongod, per SPEC_FULL.md's Testing
// section. Each accepted connection is driven by a handler function that
// receives a decoded request and returns the documents (plus cursor id
// and flags) to answer with.
type fakeMongod struct {
	mu       sync.Mutex
	handlers []func(req fakeRequest) fakeResponse
	conns    []net.Conn
}

type fakeRequest struct {
	opCode wire.OpCode
	query  bson.Value
	coll   string
}

type fakeResponse struct {
	documents []bson.Value
	cursorID  int64
	flags     int32
}

func newFakeMongod() *fakeMongod {
	return &fakeMongod{}
}

// dialer returns a pool dialer function that spins up a fresh in-memory
// pipe per dial, wiring a handler goroutine to the server side.
func (f *fakeMongod) dialer(handler func(req fakeRequest) fakeResponse) func(Replica) (net.Conn, error) {
	return func(Replica) (net.Conn, error) {
		client, server := net.Pipe()
		go f.serve(server, handler)
		return client, nil
	}
}

func (f *fakeMongod) serve(conn net.Conn, handler func(req fakeRequest) fakeResponse) {
	defer func() { _ = conn.Close() }()
	for {
		header, err := wire.ReadHeader(conn)
		if err != nil {
			return
		}
		body := make([]byte, int(header.MessageLength)-wire.HeaderLen)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}

		req, err := decodeFakeRequest(header, body)
		if err != nil {
			return
		}
		resp := handler(req)

		packet, err := encodeFakeReply(header.RequestID, resp)
		if err != nil {
			return
		}
		if _, err := conn.Write(packet); err != nil {
			return
		}
	}
}

func decodeFakeRequest(h wire.Header, body []byte) (fakeRequest, error) {
	switch h.OpCode {
	case wire.OpQuery:
		off := 4
		end := off
		for body[end] != 0 {
			end++
		}
		coll := string(body[off:end])
		off = end + 1
		off += 8 // numberToSkip, numberToReturn
		query, err := bson.Parse(body[off:])
		if err != nil {
			return fakeRequest{}, err
		}
		return fakeRequest{opCode: h.OpCode, query: query, coll: coll}, nil
	case wire.OpGetMore:
		off := 4
		end := off
		for body[end] != 0 {
			end++
		}
		coll := string(body[off:end])
		return fakeRequest{opCode: h.OpCode, coll: coll}, nil
	default:
		return fakeRequest{opCode: h.OpCode}, nil
	}
}

func encodeFakeReply(responseTo int32, resp fakeResponse) ([]byte, error) {
	var docBytes [][]byte
	total := 0
	for _, d := range resp.documents {
		b, err := d.Bytes()
		if err != nil {
			return nil, err
		}
		docBytes = append(docBytes, b)
		total += len(b)
	}

	bodyLen := 20 + total
	buf := make([]byte, wire.HeaderLen+bodyLen)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[4:8], 1)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(responseTo))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(wire.OpReply))

	off := wire.HeaderLen
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(resp.flags))
	off += 4
	binary.LittleEndian.PutUint64(buf[off:off+8], uint64(resp.cursorID))
	off += 8
	binary.LittleEndian.PutUint32(buf[off:off+4], 0) // startingFrom
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(resp.documents)))
	off += 4
	for _, b := range docBytes {
		copy(buf[off:], b)
		off += len(b)
	}
	return buf, nil
}
