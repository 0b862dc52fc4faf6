// Package sqlite implements a SQLite-backed storage.Repository on the pure-Go
// modernc.org/sqlite driver.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:ispetl.db?_pragma=busy_timeout(5000)"
	//   "ispetl.db"
	//   ":memory:"
	DSN string

	// BatchSize is the number of rows inserted per prepared-statement batch.
	BatchSize int
}
