package repos

import (
	"context"
	"strings"

	"txdash/internal/domain"
)

// RecordStore is the persistence boundary for sale records. Every read is
// ordered by id so paging is deterministic.
type RecordStore interface {
	// ReplaceAll discards every stored record and inserts recs in one
	// atomic step where the backend allows it.
	ReplaceAll(ctx context.Context, recs []domain.Record) error
	All(ctx context.Context) ([]domain.Record, error)
	// Page returns limit records after skipping offset, keeping those whose
	// title, description or price text contains search (case-insensitive).
	Page(ctx context.Context, search string, limit, offset int) ([]domain.Record, error)

	SoldAmount(ctx context.Context, w domain.Window) (float64, error)
	CountBySold(ctx context.Context, w domain.Window, sold bool) (int64, error)
	CountInBucket(ctx context.Context, w domain.Window, b domain.PriceBucket) (int64, error)
	CountByCategory(ctx context.Context, w domain.Window) ([]domain.CategoryCount, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open picks a backend from the shape of dsn: mongodb:// and
// mongodb+srv:// go to MongoDB, postgres:// and postgresql:// to
// PostgreSQL, anything else is a SQLite path.
func Open(ctx context.Context, dsn, dbName string) (RecordStore, error) {
	switch Backend(dsn) {
	case "mongo":
		return OpenMongo(ctx, dsn, dbName)
	case DriverPostgres:
		db, err := OpenDB(DriverPostgres, dsn)
		if err != nil {
			return nil, err
		}
		return NewRecordRepo(db), nil
	default:
		db, err := OpenDB(DriverSQLite, dsn)
		if err != nil {
			return nil, err
		}
		return NewRecordRepo(db), nil
	}
}

// Backend names the store kind Open would choose for dsn.
func Backend(dsn string) string {
	l := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(l, "mongodb://"), strings.HasPrefix(l, "mongodb+srv://"):
		return "mongo"
	case strings.HasPrefix(l, "postgres://"), strings.HasPrefix(l, "postgresql://"):
		return DriverPostgres
	default:
		return DriverSQLite
	}
}
