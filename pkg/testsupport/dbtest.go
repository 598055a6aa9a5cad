package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var dbSeq atomic.Int64

// NewSQLiteMemoryDB opens a fresh in-memory SQLite database. Each call gets
// its own named database so parallel tests never share state.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("pagesync_test_%d", dbSeq.Add(1))
	return sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}
