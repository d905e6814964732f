package mongo

import (
	"context"

	"github.com/azyklus/mongo/bson"
)

// Database is a handle to one named database on a Client. It is cheap
// to create: just a name plus the client handle, per spec.md §3.
type Database struct {
	name   string
	client *Client
}

// Name returns the database's name.
func (d *Database) Name() string { return d.name }

// Collection returns a handle to the named collection within d.
func (d *Database) Collection(name string) *Collection {
	return &Collection{database: d, name: name}
}

// RunCommand sends cmd against "<db>.$cmd" and returns the first reply
// document, per spec.md §4.7.
func (d *Database) RunCommand(ctx context.Context, cmd bson.Value) (bson.Value, error) {
	s, err := d.client.acquire(ctx)
	if err != nil {
		return bson.Value{}, err
	}
	defer func() { _ = d.client.release(s) }()

	runner := &slotCommandRunner{client: d.client, slot: s}
	return runner.RunCommand(ctx, d.name, cmd)
}
