package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrUnsupported  = errors.New("db: unsupported expression")
	ErrNotConnected = errors.New("db: not connected")
	ErrDuplicateKey = errors.New("db: duplicate key")
	ErrIndexExists  = errors.New("db: index exists with different options")
)

// Op constants map to database command names for error context.
const (
	OpConnect       = "connect"
	OpDisconnect    = "disconnect"
	OpPing          = "ping"
	OpFind          = "find"
	OpUpdate        = "update"
	OpDelete        = "delete"
	OpAggregate     = "aggregate"
	OpCreateIndexes = "createIndexes"
	OpExplain       = "explain"
	OpInsert        = "insert"
	OpDrop          = "drop"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
