package db

import "fmt"

// Op names a store operation for error context.
type Op string

// Store operations.
const (
	OpPing      Op = "ping"
	OpHSet      Op = "hset"
	OpHGetAll   Op = "hgetall"
	OpDel       Op = "del"
	OpSAdd      Op = "sadd"
	OpSRem      Op = "srem"
	OpSMembers  Op = "smembers"
	OpSIsMember Op = "sismember"
	OpSMove     Op = "smove"
)

// Error wraps a backend failure with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
