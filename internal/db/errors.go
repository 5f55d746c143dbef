package db

import "errors"

// Sentinel errors reported by stores.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op names the store command that failed.
type Op string

// Commands issued by the course index and the embedding cache.
const (
	OpCreateIndex Op = "FT.CREATE"
	OpDropIndex   Op = "FT.DROPINDEX"
	OpIndexInfo   Op = "FT.INFO"
	OpAliasUpdate Op = "FT.ALIASUPDATE"
	OpSearch      Op = "FT.SEARCH"
	OpHSet        Op = "HSET"
	OpHGetAll     Op = "HGETALL"
	OpDel         Op = "DEL"
	OpScan        Op = "SCAN"
	OpGet         Op = "GET"
	OpSet         Op = "SET"
)

// Error carries the failed command alongside the driver error.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string { return string(e.Op) + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }
