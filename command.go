package mongo

import (
	"context"

	"github.com/azyklus/mongo/bson"
	"github.com/azyklus/mongo/wire"
)

// StatusReply is the uniform result of every command-facade call, per
// spec.md §4.7/§7: ok mirrors the server's "ok" field, err concatenates
// "errmsg"/"$err" when present, raw is the full reply document, and
// insertedIds carries the generated _ids for insert calls.
type StatusReply struct {
	OK           bool
	Err          string
	Raw          bson.Value
	InsertedIDs  []bson.Value
}

func newStatusReply(reply bson.Value) StatusReply {
	sr := StatusReply{Raw: reply}
	if okVal, err := reply.Get("ok"); err == nil {
		if n, convErr := okVal.ToFloat(); convErr == nil {
			sr.OK = n != 0
		} else if b, convErr := okVal.ToBool(); convErr == nil {
			sr.OK = b
		}
	}
	if msgVal, err := reply.Get("errmsg"); err == nil {
		if s, convErr := msgVal.ToString(); convErr == nil {
			sr.Err = s
		}
	}
	if msgVal, err := reply.Get("$err"); err == nil {
		if s, convErr := msgVal.ToString(); convErr == nil {
			if sr.Err != "" {
				sr.Err += "; "
			}
			sr.Err += s
		}
	}
	return sr
}

// runAdmin runs cmd against the admin database's $cmd, for commands
// spec.md §4.7 requires to run there (listDatabases, renameCollection).
func (c *Client) runAdmin(ctx context.Context, cmd bson.Value) (StatusReply, error) {
	reply, err := c.Database("admin").RunCommand(ctx, cmd)
	if err != nil {
		return StatusReply{}, err
	}
	return newStatusReply(reply), nil
}

// ListDatabases runs the listDatabases admin command.
func (c *Client) ListDatabases(ctx context.Context) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("listDatabases", bson.Int32(1))
	return c.runAdmin(ctx, cmd)
}

// ListCollections runs the listCollections command against d.
func (d *Database) ListCollections(ctx context.Context) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("listCollections", bson.Int32(1))
	reply, err := d.RunCommand(ctx, cmd)
	if err != nil {
		return StatusReply{}, err
	}
	return newStatusReply(reply), nil
}

// Create runs the create DDL command for a new collection, optionally
// with the options document opts (e.g. capped/size for spec.md §8
// scenario 4's tailable-cursor fixture).
func (d *Database) Create(ctx context.Context, name string, opts bson.Value) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("create", bson.String(name))
	if !opts.IsNil() {
		_ = cmd.Update(opts)
	}
	reply, err := d.RunCommand(ctx, cmd)
	if err != nil {
		return StatusReply{}, err
	}
	return newStatusReply(reply), nil
}

// Drop drops collection name in d.
func (d *Database) Drop(ctx context.Context, name string) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("drop", bson.String(name))
	reply, err := d.RunCommand(ctx, cmd)
	if err != nil {
		return StatusReply{}, err
	}
	return newStatusReply(reply), nil
}

// RenameCollection renames a collection via the admin database, per
// spec.md §4.7.
func (c *Client) RenameCollection(ctx context.Context, from, to string, dropTarget bool) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("renameCollection", bson.String(from))
	_ = cmd.AddKV("to", bson.String(to))
	_ = cmd.AddKV("dropTarget", bson.Bool(dropTarget))
	return c.runAdmin(ctx, cmd)
}

// Count runs the count command against filter.
func (col *Collection) Count(ctx context.Context, filter bson.Value) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("count", bson.String(col.name))
	if !filter.IsNil() {
		_ = cmd.AddKV("query", filter)
	}
	return col.runCommand(ctx, cmd)
}

// Distinct runs the distinct command for field under filter.
func (col *Collection) Distinct(ctx context.Context, field string, filter bson.Value) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("distinct", bson.String(col.name))
	_ = cmd.AddKV("key", bson.String(field))
	if !filter.IsNil() {
		_ = cmd.AddKV("query", filter)
	}
	return col.runCommand(ctx, cmd)
}

// Insert inserts docs, generating a fresh ObjectId for any document
// missing "_id", and reports the generated ids in InsertedIDs, per
// spec.md §4.7.
func (col *Collection) Insert(ctx context.Context, docs ...bson.Value) (StatusReply, error) {
	var inserted []bson.Value
	items := make([]bson.Value, 0, len(docs))
	for _, d := range docs {
		if !d.Contains("_id") {
			id := bson.NewObjectID()
			_ = d.AddKV("_id", id)
			inserted = append(inserted, id)
		}
		items = append(items, d)
	}

	arr, err := bson.NewArray()
	if err != nil {
		return StatusReply{}, err
	}
	if err := arr.Add(items...); err != nil {
		return StatusReply{}, err
	}

	cmd := bson.Document()
	_ = cmd.AddKV("insert", bson.String(col.name))
	_ = cmd.AddKV("documents", arr)

	sr, err := col.runCommand(ctx, cmd)
	if err != nil {
		return sr, err
	}
	sr.InsertedIDs = inserted
	return sr, nil
}

// Update runs the update command with multi/upsert flags, per spec.md
// §4.7 and §8 scenarios 2-3.
func (col *Collection) Update(ctx context.Context, filter, update bson.Value, multi, upsert bool) (StatusReply, error) {
	entry := bson.Document()
	_ = entry.AddKV("q", filter)
	_ = entry.AddKV("u", update)
	_ = entry.AddKV("multi", bson.Bool(multi))
	_ = entry.AddKV("upsert", bson.Bool(upsert))

	arr, err := bson.NewArray()
	if err != nil {
		return StatusReply{}, err
	}
	if err := arr.Add(entry); err != nil {
		return StatusReply{}, err
	}

	cmd := bson.Document()
	_ = cmd.AddKV("update", bson.String(col.name))
	_ = cmd.AddKV("updates", arr)
	return col.runCommand(ctx, cmd)
}

// Delete runs the delete command. limit follows the wire convention:
// 0 deletes every matching document, 1 deletes at most one.
func (col *Collection) Delete(ctx context.Context, filter bson.Value, limit int32) (StatusReply, error) {
	entry := bson.Document()
	_ = entry.AddKV("q", filter)
	_ = entry.AddKV("limit", bson.Int32(limit))

	arr, err := bson.NewArray()
	if err != nil {
		return StatusReply{}, err
	}
	if err := arr.Add(entry); err != nil {
		return StatusReply{}, err
	}

	cmd := bson.Document()
	_ = cmd.AddKV("delete", bson.String(col.name))
	_ = cmd.AddKV("deletes", arr)
	return col.runCommand(ctx, cmd)
}

// FindAndModify runs findAndModify with the given options document
// (expected keys: query, update/remove, new, upsert, sort, fields).
func (col *Collection) FindAndModify(ctx context.Context, opts bson.Value) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("findAndModify", bson.String(col.name))
	_ = cmd.Update(opts)
	return col.runCommand(ctx, cmd)
}

// CreateUser runs createUser against authDB with the given roles array
// and password, supporting spec.md §8 scenario 6's auth fixture.
func (c *Client) CreateUser(ctx context.Context, authDB, user, pass string, roles bson.Value) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("createUser", bson.String(user))
	_ = cmd.AddKV("pwd", bson.String(pass))
	if roles.IsNil() {
		empty, _ := bson.NewArray()
		roles = empty
	}
	_ = cmd.AddKV("roles", roles)
	return newStatusReplyFrom(c.Database(authDB).RunCommand(ctx, cmd))
}

// DropUser runs dropUser against authDB.
func (c *Client) DropUser(ctx context.Context, authDB, user string) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("dropUser", bson.String(user))
	return newStatusReplyFrom(c.Database(authDB).RunCommand(ctx, cmd))
}

// GetLastError runs getLastError against db.
func (c *Client) GetLastError(ctx context.Context, db string) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("getLastError", bson.Int32(1))
	return newStatusReplyFrom(c.Database(db).RunCommand(ctx, cmd))
}

// IsMaster runs the isMaster admin command, used for connection-health
// logging.
func (c *Client) IsMaster(ctx context.Context) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("isMaster", bson.Int32(1))
	return c.runAdmin(ctx, cmd)
}

// Ping runs the trivial {ping:1} admin command.
func (c *Client) Ping(ctx context.Context) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("ping", bson.Int32(1))
	return c.runAdmin(ctx, cmd)
}

// BuildInfo runs the buildInfo admin command.
func (c *Client) BuildInfo(ctx context.Context) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("buildInfo", bson.Int32(1))
	return c.runAdmin(ctx, cmd)
}

// CollStats runs collStats for col.
func (col *Collection) CollStats(ctx context.Context) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("collStats", bson.String(col.name))
	return col.runCommand(ctx, cmd)
}

// EnsureIndex is an alias for CreateIndexes with a single index
// document, matching the legacy driver name many callers expect.
func (col *Collection) EnsureIndex(ctx context.Context, keys bson.Value, name string) (StatusReply, error) {
	idx := bson.Document()
	_ = idx.AddKV("key", keys)
	_ = idx.AddKV("name", bson.String(name))
	return col.CreateIndexes(ctx, idx)
}

// CreateIndexes runs createIndexes with one or more index spec
// documents, each shaped {key: {...}, name: "..."}.
func (col *Collection) CreateIndexes(ctx context.Context, indexes ...bson.Value) (StatusReply, error) {
	arr, err := bson.NewArray()
	if err != nil {
		return StatusReply{}, err
	}
	if err := arr.Add(indexes...); err != nil {
		return StatusReply{}, err
	}
	cmd := bson.Document()
	_ = cmd.AddKV("createIndexes", bson.String(col.name))
	_ = cmd.AddKV("indexes", arr)
	return col.runCommand(ctx, cmd)
}

// DropIndexes drops the named index (or "*" for all indexes) on col.
func (col *Collection) DropIndexes(ctx context.Context, index string) (StatusReply, error) {
	cmd := bson.Document()
	_ = cmd.AddKV("dropIndexes", bson.String(col.name))
	_ = cmd.AddKV("index", bson.String(index))
	return col.runCommand(ctx, cmd)
}

// KillCursors issues an explicit OP_KILL_CURSORS command-style wrapper
// for server cursor ids not owned by a live Cursor value, added per
// SPEC_FULL.md's resolution of spec.md §9's killCursors open question.
func (c *Client) KillCursors(ctx context.Context, collName string, cursorIDs ...int64) error {
	s, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.release(s) }()

	msg := &wire.KillCursors{CursorIDs: cursorIDs}
	_, err = c.runOnSlot(s, msg)
	return err
}

func newStatusReplyFrom(reply bson.Value, err error) (StatusReply, error) {
	if err != nil {
		return StatusReply{}, err
	}
	return newStatusReply(reply), nil
}
