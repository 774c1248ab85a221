package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenDB opens a SQL database for driver, checks the connection and makes
// sure the records table exists.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := ensureSchema(db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB, driver string) error {
	// seq keeps insertion order stable among records sharing an id
	seq := `seq INTEGER PRIMARY KEY AUTOINCREMENT`
	if driver == DriverPostgres {
		seq = `seq BIGSERIAL PRIMARY KEY`
	}
	schema := `
CREATE TABLE IF NOT EXISTS records(
  ` + seq + `,
  id BIGINT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  price DOUBLE PRECISION NOT NULL DEFAULT 0,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  sold BOOLEAN NOT NULL DEFAULT FALSE,
  date_of_sale BIGINT NOT NULL            -- unix milliseconds, UTC
);
CREATE INDEX IF NOT EXISTS idx_records_id           ON records(id);
CREATE INDEX IF NOT EXISTS idx_records_date_of_sale ON records(date_of_sale);
CREATE INDEX IF NOT EXISTS idx_records_category     ON records(category);
`
	_, err := db.Exec(schema)
	return err
}
