// Package auth drives the per-connection authentication state machines
// spec.md §4.6 describes: SCRAM-SHA-1 (via github.com/xdg-go/scram, the
// same mechanism library the official driver uses) and legacy
// MONGODB-CR. Both run over a CommandRunner so this package has no
// dependency on the connection pool or wire framing — it only needs
// something that can send a command document to "$cmd" and get a reply
// back.
package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/xdg-go/scram"

	"github.com/azyklus/mongo/bson"
)

// A CommandRunner sends a command document against a database's "$cmd"
// pseudo-collection and returns the first reply document. The mongo
// package's Database satisfies this.
type CommandRunner interface {
	RunCommand(ctx context.Context, db string, cmd bson.Value) (bson.Value, error)
}

// PasswordDigest computes the legacy MONGODB-CR/SCRAM-SHA-1 password
// digest: hex(md5(user + ":mongo:" + pass)), per spec.md §4.6 step 2.
func PasswordDigest(user, pass string) string {
	sum := md5.Sum([]byte(user + ":mongo:" + pass))
	return hex.EncodeToString(sum[:])
}

// AuthenticateSCRAM runs the four-step SCRAM-SHA-1 exchange (saslStart,
// saslContinue with the client-final message, and — if the server's
// saslContinue reply isn't done yet — an empty saslContinue to consume
// the server's final confirmation) against runner's $cmd pseudo-
// collection on authDB, per spec.md §4.6 steps 1-4.
func AuthenticateSCRAM(ctx context.Context, runner CommandRunner, authDB, user, pass string) error {
	digest := PasswordDigest(user, pass)
	client, err := scram.SHA1.NewClient(user, digest, "")
	if err != nil {
		return fmt.Errorf("auth: building SCRAM client: %w", err)
	}
	conv := client.NewConversation()

	clientFirst, err := conv.Step("")
	if err != nil {
		return fmt.Errorf("auth: SCRAM client-first: %w", err)
	}

	startCmd := bson.Document()
	_ = startCmd.AddKV("saslStart", bson.Int32(1))
	_ = startCmd.AddKV("mechanism", bson.String("SCRAM-SHA-1"))
	_ = startCmd.AddKV("payload", bson.BinaryVal(bson.SubtypeGeneric, []byte(clientFirst)))
	_ = startCmd.AddKV("autoAuthorize", bson.Int32(1))
	opts := bson.Document()
	_ = opts.AddKV("skipEmptyExchange", bson.Bool(true))
	_ = startCmd.AddKV("options", opts)

	reply, err := runner.RunCommand(ctx, authDB, startCmd)
	if err != nil {
		return fmt.Errorf("auth: saslStart: %w", err)
	}
	if err := checkSaslReply(reply); err != nil {
		return err
	}

	conversationID, payload, done, err := readSaslReply(reply)
	if err != nil {
		return err
	}

	clientFinal, err := conv.Step(string(payload))
	if err != nil {
		return fmt.Errorf("auth: SCRAM client-final: %w", err)
	}

	continueCmd := bson.Document()
	_ = continueCmd.AddKV("saslContinue", bson.Int32(1))
	_ = continueCmd.AddKV("conversationId", bson.Int32(conversationID))
	_ = continueCmd.AddKV("payload", bson.BinaryVal(bson.SubtypeGeneric, []byte(clientFinal)))

	reply, err = runner.RunCommand(ctx, authDB, continueCmd)
	if err != nil {
		return fmt.Errorf("auth: saslContinue (client-final): %w", err)
	}
	if err := checkSaslReply(reply); err != nil {
		return err
	}

	_, payload, done, err = readSaslReply(reply)
	if err != nil {
		return err
	}
	// conv.Step verifies the server's final-message signature internally
	// and returns an error on mismatch, satisfying spec.md §4.6 step 3.
	if _, err := conv.Step(string(payload)); err != nil {
		return fmt.Errorf("auth: server signature verification failed: %w", err)
	}

	if !done {
		emptyContinue := bson.Document()
		_ = emptyContinue.AddKV("saslContinue", bson.Int32(1))
		_ = emptyContinue.AddKV("conversationId", bson.Int32(conversationID))
		_ = emptyContinue.AddKV("payload", bson.BinaryVal(bson.SubtypeGeneric, nil))

		reply, err = runner.RunCommand(ctx, authDB, emptyContinue)
		if err != nil {
			return fmt.Errorf("auth: final empty saslContinue: %w", err)
		}
		if err := checkSaslReply(reply); err != nil {
			return err
		}
		_, _, done, err = readSaslReply(reply)
		if err != nil {
			return err
		}
		if !done {
			return fmt.Errorf("auth: server did not confirm completion of SCRAM exchange")
		}
	}
	return nil
}

func checkSaslReply(reply bson.Value) error {
	if reply.IsNil() {
		return fmt.Errorf("auth: no reply from server")
	}
	if reply.Contains("code") {
		errmsg, _ := reply.Get("errmsg")
		msg, _ := errmsg.ToString()
		return fmt.Errorf("auth: server rejected SCRAM exchange: %s", msg)
	}
	ok, err := reply.Get("ok")
	if err != nil {
		return err
	}
	if n, err := ok.ToFloat(); err == nil && n == 0 {
		errmsg, _ := reply.Get("errmsg")
		msg, _ := errmsg.ToString()
		return fmt.Errorf("auth: server rejected SCRAM exchange: %s", msg)
	}
	return nil
}

func readSaslReply(reply bson.Value) (conversationID int32, payload []byte, done bool, err error) {
	cidVal, getErr := reply.Get("conversationId")
	if getErr != nil {
		return 0, nil, false, getErr
	}
	conversationID, err = cidVal.ToInt32()
	if err != nil {
		return 0, nil, false, fmt.Errorf("auth: missing conversationId: %w", err)
	}
	payloadVal, getErr := reply.Get("payload")
	if getErr != nil {
		return 0, nil, false, getErr
	}
	bin, err := payloadVal.ToBinary()
	if err != nil {
		return 0, nil, false, fmt.Errorf("auth: malformed payload: %w", err)
	}
	doneVal, getErr := reply.Get("done")
	if getErr != nil {
		return 0, nil, false, getErr
	}
	done, _ = doneVal.ToBool()
	return conversationID, bin.Data, done, nil
}
