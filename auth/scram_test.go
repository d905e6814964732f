package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xdg-go/scram"

	"github.com/azyklus/mongo/bson"
)

// fakeSaslRunner drives a real xdg-go/scram server conversation in
// response to the saslStart/saslContinue commands AuthenticateSCRAM
// sends, standing in for a mongod instance.
type fakeSaslRunner struct {
	conv *scram.ServerConversation
}

func newFakeSaslRunner(t *testing.T, user, pass string) *fakeSaslRunner {
	t.Helper()
	digest := PasswordDigest(user, pass)
	client, err := scram.SHA1.NewClient(user, digest, "")
	require.NoError(t, err)
	kf := scram.KeyFactors{Salt: "c2FsdA==", Iters: 4096}
	creds := client.GetStoredCredentials(kf)

	lookup := func(u string) (scram.StoredCredentials, error) {
		return creds, nil
	}
	server, err := scram.SHA1.NewServer(lookup)
	require.NoError(t, err)
	return &fakeSaslRunner{conv: server.NewConversation()}
}

func (f *fakeSaslRunner) RunCommand(ctx context.Context, db string, cmd bson.Value) (bson.Value, error) {
	reply := bson.Document()
	switch {
	case cmd.Contains("saslStart"):
		payload, _ := cmd.Get("payload")
		bin, err := payload.ToBinary()
		if err != nil {
			return bson.Value{}, err
		}
		resp, err := f.conv.Step(string(bin.Data))
		if err != nil {
			_ = reply.AddKV("ok", bson.Double(0))
			_ = reply.AddKV("code", bson.Int32(1))
			_ = reply.AddKV("errmsg", bson.String(err.Error()))
			return reply, nil
		}
		_ = reply.AddKV("ok", bson.Double(1))
		_ = reply.AddKV("conversationId", bson.Int32(1))
		_ = reply.AddKV("payload", bson.BinaryVal(bson.SubtypeGeneric, []byte(resp)))
		_ = reply.AddKV("done", bson.Bool(f.conv.Done()))
		return reply, nil
	case cmd.Contains("saslContinue"):
		payload, _ := cmd.Get("payload")
		bin, err := payload.ToBinary()
		if err != nil {
			return bson.Value{}, err
		}
		resp, err := f.conv.Step(string(bin.Data))
		if err != nil {
			_ = reply.AddKV("ok", bson.Double(0))
			_ = reply.AddKV("code", bson.Int32(1))
			_ = reply.AddKV("errmsg", bson.String(err.Error()))
			return reply, nil
		}
		_ = reply.AddKV("ok", bson.Double(1))
		_ = reply.AddKV("conversationId", bson.Int32(1))
		_ = reply.AddKV("payload", bson.BinaryVal(bson.SubtypeGeneric, []byte(resp)))
		_ = reply.AddKV("done", bson.Bool(f.conv.Done()))
		return reply, nil
	}
	return bson.Value{}, nil
}

func TestAuthenticateSCRAMSucceeds(t *testing.T) {
	runner := newFakeSaslRunner(t, "test1", "test")
	err := AuthenticateSCRAM(context.Background(), runner, "testdb", "test1", "test")
	require.NoError(t, err)
}

func TestAuthenticateSCRAMWrongPassword(t *testing.T) {
	runner := newFakeSaslRunner(t, "test1", "test")
	err := AuthenticateSCRAM(context.Background(), runner, "testdb", "test1", "wrong")
	require.Error(t, err)
}
