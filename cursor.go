package mongo

import (
	"context"
	"errors"

	"github.com/azyklus/mongo/bson"
	"github.com/azyklus/mongo/wire"
)

// Cursor is a client-side handle to a server-side iteration state,
// per spec.md §3/§4.5. Created by Collection.Find, mutated by its
// builder methods, drained by Next/Items, reaching a terminal state
// when closed is true.
type Cursor struct {
	collection *Collection
	query      bson.Value
	fields     bson.Value
	flags      int32
	skip       int32
	limit      int32
	batchSize  int32

	serverCursorID int64
	delivered      int32
	closed         bool
	started        bool

	buffer []bson.Value
	bufPos int
}

// Skip sets the number of documents to skip before the first returned
// result.
func (c *Cursor) Skip(n int32) *Cursor { c.skip = n; return c }

// Limit sets the maximum number of documents this cursor will deliver
// across all batches, per spec.md §4.2/§8.
func (c *Cursor) Limit(n int32) *Cursor { c.limit = n; return c }

// BatchSize sets how many documents to request per round trip.
func (c *Cursor) BatchSize(n int32) *Cursor { c.batchSize = n; return c }

// OrderBy injects a "$orderby" key into the query document, per
// spec.md §4.5.
func (c *Cursor) OrderBy(sort bson.Value) *Cursor {
	_ = c.query.Set("$orderby", sort)
	return c
}

// Tailable marks the cursor tailable and, if await is true, also sets
// AwaitData, per spec.md §4.5's tailable/await semantics.
func (c *Cursor) Tailable(await bool) *Cursor {
	c.flags |= wire.FlagTailableCursor
	if await {
		c.flags |= wire.FlagAwaitData
	}
	return c
}

// SlaveOk permits querying a secondary.
func (c *Cursor) SlaveOk() *Cursor {
	c.flags |= wire.FlagSlaveOk
	return c
}

func (c *Cursor) isTailable() bool {
	return c.flags&wire.FlagTailableCursor != 0
}

// refresh implements spec.md §4.5's seven-step algorithm: compute the
// next batch size, build the right message for whether a server cursor
// is already open, send it, and fold the reply into the cursor's state.
func (c *Cursor) refresh(ctx context.Context) ([]bson.Value, error) {
	if c.closed {
		return nil, wrapf(ErrCommunication, "cursor is closed")
	}

	n, ok := wire.NextBatchSize(c.limit, c.batchSize, c.delivered)
	if !ok {
		c.closed = true
		return nil, nil
	}

	s, err := c.collection.database.client.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.collection.database.client.release(s) }()

	var msg wire.Message
	if c.serverCursorID == 0 {
		msg = &wire.Query{
			Flags:               c.flags,
			FullCollectionName:  c.collection.Name(),
			NumberToSkip:        c.skip,
			NumberToReturn:      n,
			Query:               c.query,
			ReturnFields:        c.fields,
		}
	} else {
		msg = &wire.GetMore{
			FullCollectionName: c.collection.Name(),
			NumberToReturn:     n,
			CursorID:           c.serverCursorID,
		}
	}

	r, err := c.collection.database.client.runOnSlot(s, msg)
	if err != nil {
		return nil, err
	}

	if !c.started {
		c.started = true
	}
	if c.serverCursorID == 0 || !c.isTailable() {
		c.serverCursorID = r.cursorID
		if r.cursorID == 0 {
			c.closed = true
		}
	} else if r.cursorID != 0 {
		c.serverCursorID = r.cursorID
	}

	c.delivered += int32(len(r.documents))
	if c.collection.database.client.metrics != nil {
		c.collection.database.client.metrics.cursorBatchFetched(len(r.documents))
	}

	for _, doc := range r.documents {
		if doc.Contains("$err") {
			codeVal, getErr := doc.Get("code")
			if getErr == nil {
				if code, convErr := codeVal.ToInt(); convErr == nil && code == 50 {
					return nil, wrapf(ErrOperationTimeout, "server reported $maxTimeMS timeout")
				}
			}
		}
	}

	if len(r.documents) == 0 && n == 1 {
		return nil, wrapf(ErrNotFound, "query returned no documents")
	}

	return r.documents, nil
}

// Next advances the cursor and returns the next document, calling
// refresh whenever the local buffer is empty, per spec.md §4.5's
// iteration semantics.
func (c *Cursor) Next(ctx context.Context) (bson.Value, bool, error) {
	for c.bufPos >= len(c.buffer) {
		if c.closed {
			return bson.Value{}, false, nil
		}
		docs, err := c.refresh(ctx)
		if err != nil {
			if isKind(err, ErrNotFound) {
				return bson.Value{}, false, nil
			}
			return bson.Value{}, false, err
		}
		c.buffer = docs
		c.bufPos = 0
		if len(docs) == 0 {
			if c.closed {
				return bson.Value{}, false, nil
			}
			if c.isTailable() {
				return bson.Value{}, false, nil
			}
		}
	}
	doc := c.buffer[c.bufPos]
	c.bufPos++
	return doc, true, nil
}

// Items drains the cursor into a slice, honoring Limit. Mainly useful
// for non-tailable, bounded result sets (spec.md §8 scenarios 1, 2, 5).
func (c *Cursor) Items(ctx context.Context) ([]bson.Value, error) {
	var out []bson.Value
	for {
		doc, ok, err := c.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, doc)
		if c.limit > 0 && int32(len(out)) >= c.limit {
			return out, nil
		}
	}
}

// First consumes at most one batch, failing with ErrNotFound if empty,
// per spec.md §4.5.
func (c *Cursor) First(ctx context.Context) (bson.Value, error) {
	docs, err := c.refresh(ctx)
	if err != nil {
		return bson.Value{}, err
	}
	if len(docs) == 0 {
		return bson.Value{}, wrapf(ErrNotFound, "no matching document")
	}
	return docs[0], nil
}

// FirstOrNone is First with ErrNotFound converted to an absent result.
func (c *Cursor) FirstOrNone(ctx context.Context) (bson.Value, bool, error) {
	doc, err := c.First(ctx)
	if err != nil {
		if isKind(err, ErrNotFound) {
			return bson.Value{}, false, nil
		}
		return bson.Value{}, false, err
	}
	return doc, true, nil
}

// Close marks the cursor closed locally. Per spec.md §5/§9 this does
// not, by default, issue a server-side killCursors; call CloseRemote to
// opt into that.
func (c *Cursor) Close() {
	c.closed = true
}

// CloseRemote issues OP_KILL_CURSORS for this cursor's server-side
// cursor id (if any) before marking it closed locally. This is the
// opt-in path added to resolve spec.md §9's killCursors open question.
func (c *Cursor) CloseRemote(ctx context.Context) error {
	defer func() { c.closed = true }()
	if c.serverCursorID == 0 {
		return nil
	}
	s, err := c.collection.database.client.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.collection.database.client.release(s) }()

	msg := &wire.KillCursors{CursorIDs: []int64{c.serverCursorID}}
	_, err = c.collection.database.client.runOnSlot(s, msg)
	return err
}

func isKind(err error, kind Kind) bool {
	return errors.Is(err, kind)
}
