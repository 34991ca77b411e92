package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound    = errors.New("db: key not found")
	ErrIndexNotFound  = errors.New("db: index not found")
	ErrIndexExists    = errors.New("db: index already exists")
	ErrSchemaMismatch = errors.New("db: existing schema is incompatible")
)

// Op constants name the SQL statement class for error context.
const (
	OpCreateSchema    = "CREATE TABLE"
	OpCreatePartition = "CREATE TABLE PARTITION"
	OpCreateIndex     = "CREATE INDEX"
	OpDropIndex       = "DROP INDEX"
	OpUpsert          = "INSERT"
	OpDelete          = "DELETE"
	OpSearch          = "SELECT"
	OpPing            = "PING"
	OpGet             = "GET"
	OpSet             = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
