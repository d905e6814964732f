package mongo

import (
	"context"

	"github.com/azyklus/mongo/bson"
)

// Collection is a handle to one named collection within a Database. Its
// string form is "<db>.<name>", used as the wire protocol's
// fullCollectionName, per spec.md §3.
type Collection struct {
	database *Database
	name     string
}

// Name returns the collection's string form "<db>.<name>".
func (c *Collection) Name() string {
	return c.database.name + "." + c.name
}

// Find constructs a cursor over filter with no projection and no
// maxTimeMs, per spec.md §4.5.
func (c *Collection) Find(filter bson.Value) *Cursor {
	return c.FindWithOptions(filter, bson.Value{}, 0)
}

// FindWithOptions constructs a cursor over filter with an optional
// projection document and an optional server-side $maxTimeMS, per
// spec.md §4.5.
func (c *Collection) FindWithOptions(filter bson.Value, fields bson.Value, maxTimeMs int64) *Cursor {
	query := bson.Document()
	if filter.IsNil() {
		filter = bson.Document()
	}
	_ = query.AddKV("$query", filter)
	if maxTimeMs > 0 {
		_ = query.AddKV("$maxTimeMS", bson.Int64(maxTimeMs))
	}
	return &Cursor{
		collection: c,
		query:      query,
		fields:     fields,
		batchSize:  100,
	}
}

func (c *Collection) runCommand(ctx context.Context, cmd bson.Value) (StatusReply, error) {
	reply, err := c.database.RunCommand(ctx, cmd)
	if err != nil {
		return StatusReply{}, err
	}
	return newStatusReply(reply), nil
}
