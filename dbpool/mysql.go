package dbpool

import (
	"database/sql"
	"fmt"
	"time"
)

// openMySQL opens a MySQL (or MySQL-compatible) connection with retry.
// Unlike the file engines there is no lock contention to work around, but the
// pool keeps network connections alive, so ConnMaxLifetime stays under the
// common wait_timeout defaults to avoid handing out connections the server
// already dropped.
// NOTE: The caller's application must import the MySQL driver
// (e.g., _ "github.com/go-sql-driver/mysql").
func (m *DBManager) openMySQL(opts OpenOptions) (*sql.DB, error) {
	maxRetries, baseMs := retryParams(opts)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		db, err := sql.Open("mysql", opts.Path)
		if err == nil {
			db.SetConnMaxLifetime(3 * time.Minute)
			db.SetMaxOpenConns(4)
			err = db.Ping()
			if err != nil {
				db.Close()
			}
		}

		if err != nil {
			lastErr = err
			m.logger(fmt.Sprintf("[dbpool] MySQL attempt %d/%d failed: %v", i+1, maxRetries, err))
			if maxRetries > 1 {
				time.Sleep(time.Duration(baseMs*(i+1)) * time.Millisecond)
			}
			continue
		}

		return db, nil
	}

	return nil, fmt.Errorf("dbpool: failed to open MySQL after %d retries: %w", maxRetries, lastErr)
}
