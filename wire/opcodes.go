// Package wire implements the legacy MongoDB wire protocol: the 16-byte
// message header and the OP_QUERY / OP_GET_MORE / OP_REPLY framing built
// on top of it. No OP_MSG support is provided — this package targets
// servers old enough to still accept the legacy opcodes.
package wire

// OpCode identifies a wire-protocol message kind.
type OpCode int32

// Legacy opcodes. OP_MSG (5.1+) and the pre-2.6 write opcodes
// (OP_INSERT/OP_UPDATE/OP_DELETE) are out of scope; writes go through
// the command facade's "$cmd" pseudo-collection instead.
const (
	OpReply    OpCode = 1
	OpQuery    OpCode = 2004
	OpGetMore  OpCode = 2005
	OpKillCurs OpCode = 2007
)

// OP_QUERY flag bits (spec.md §4.2).
const (
	FlagTailableCursor int32 = 1 << 1
	FlagSlaveOk        int32 = 1 << 2
	FlagNoCursorTO     int32 = 1 << 4
	FlagAwaitData      int32 = 1 << 5
	FlagExhaust        int32 = 1 << 6
	FlagPartial        int32 = 1 << 7
)

// OP_REPLY responseFlags bits.
const (
	ReplyCursorNotFound int32 = 1
	ReplyQueryFailure   int32 = 1 << 1
)

// HeaderLen is the fixed size of every wire-protocol message header.
const HeaderLen = 16
