package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/azyklus/mongo/bson"
)

// AuthenticateCR runs the legacy MONGODB-CR exchange for pre-3.0
// servers: a getnonce/authenticate round using a single MD5 key derived
// from the server nonce, the username, and the password digest, per
// spec.md §4.6's final paragraph. Unlike SCRAM, no mechanism library is
// warranted for a single hash round.
func AuthenticateCR(ctx context.Context, runner CommandRunner, authDB, user, pass string) error {
	nonceCmd := bson.Document()
	_ = nonceCmd.AddKV("getnonce", bson.Int32(1))
	reply, err := runner.RunCommand(ctx, authDB, nonceCmd)
	if err != nil {
		return fmt.Errorf("auth: getnonce: %w", err)
	}
	if err := checkSaslReply(reply); err != nil {
		return err
	}
	nonceVal, err := reply.Get("nonce")
	if err != nil {
		return err
	}
	nonce, err := nonceVal.ToString()
	if err != nil {
		return fmt.Errorf("auth: getnonce reply missing nonce: %w", err)
	}

	digest := PasswordDigest(user, pass)
	sum := md5.Sum([]byte(nonce + user + digest))
	key := hex.EncodeToString(sum[:])

	authCmd := bson.Document()
	_ = authCmd.AddKV("authenticate", bson.Int32(1))
	_ = authCmd.AddKV("nonce", bson.String(nonce))
	_ = authCmd.AddKV("user", bson.String(user))
	_ = authCmd.AddKV("key", bson.String(key))

	reply, err = runner.RunCommand(ctx, authDB, authCmd)
	if err != nil {
		return fmt.Errorf("auth: authenticate: %w", err)
	}
	return checkSaslReply(reply)
}
