package repos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"txdash/internal/domain"
)

// insertBatch keeps each INSERT under SQLite's bound-parameter limit.
const insertBatch = 100

const recordColumns = `id, title, price, description, category, image, sold, date_of_sale`

// priceText renders price for search the way MongoDB's $toString does:
// whole prices without a fractional part ("50", not "50.0").
const priceText = `CASE WHEN price = CAST(price AS BIGINT)
      THEN CAST(CAST(price AS BIGINT) AS TEXT)
      ELSE CAST(price AS TEXT) END`

type recordRow struct {
	domain.Record
	DateOfSaleMS int64 `db:"date_of_sale"`
}

func (r recordRow) toDomain() domain.Record {
	rec := r.Record
	rec.DateOfSale = time.UnixMilli(r.DateOfSaleMS).UTC()
	return rec
}

func toDomain(rows []recordRow) []domain.Record {
	out := make([]domain.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}

// RecordRepo is the SQL RecordStore (SQLite or PostgreSQL).
type RecordRepo struct{ db *sqlx.DB }

func NewRecordRepo(db *sqlx.DB) *RecordRepo { return &RecordRepo{db: db} }

func (r *RecordRepo) ReplaceAll(ctx context.Context, recs []domain.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}

	for start := 0; start < len(recs); start += insertBatch {
		end := min(start+insertBatch, len(recs))
		batch := recs[start:end]

		var sb strings.Builder
		sb.WriteString(`INSERT INTO records(` + recordColumns + `) VALUES `)
		args := make([]any, 0, len(batch)*8)
		for i, rec := range batch {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?,?,?,?,?,?,?,?)")
			args = append(args,
				rec.ID, rec.Title, rec.Price, rec.Description, rec.Category, rec.Image, rec.Sold,
				rec.DateOfSale.UTC().UnixMilli(),
			)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sb.String()), args...); err != nil {
			return fmt.Errorf("insert records %d-%d: %w", start, end, err)
		}
	}
	return tx.Commit()
}

func (r *RecordRepo) All(ctx context.Context) ([]domain.Record, error) {
	var rows []recordRow
	err := r.db.SelectContext(ctx, &rows, `
  SELECT `+recordColumns+`
  FROM records
  ORDER BY id, seq
`)
	if err != nil {
		return nil, err
	}
	return toDomain(rows), nil
}

func (r *RecordRepo) Page(ctx context.Context, search string, limit, offset int) ([]domain.Record, error) {
	where := `1 = 1`
	args := []any{}
	if search != "" {
		pat := "%" + escapeLike(strings.ToLower(search)) + "%"
		where += ` AND (LOWER(title) LIKE ? ESCAPE '\'
    OR LOWER(description) LIKE ? ESCAPE '\'
    OR ` + priceText + ` LIKE ? ESCAPE '\')`
		args = append(args, pat, pat, pat)
	}

	query := `
  SELECT ` + recordColumns + `
  FROM records
  WHERE ` + where + `
  ORDER BY id, seq
  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return toDomain(rows), nil
}

func (r *RecordRepo) SoldAmount(ctx context.Context, w domain.Window) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total, r.db.Rebind(`
  SELECT COALESCE(SUM(price), 0)
  FROM records
  WHERE sold = ? AND date_of_sale >= ? AND date_of_sale < ?
`), true, w.Start.UnixMilli(), w.End.UnixMilli())
	return total, err
}

func (r *RecordRepo) CountBySold(ctx context.Context, w domain.Window, sold bool) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
  SELECT COUNT(*)
  FROM records
  WHERE sold = ? AND date_of_sale >= ? AND date_of_sale < ?
`), sold, w.Start.UnixMilli(), w.End.UnixMilli())
	return n, err
}

func (r *RecordRepo) CountInBucket(ctx context.Context, w domain.Window, b domain.PriceBucket) (int64, error) {
	where := `date_of_sale >= ? AND date_of_sale < ?`
	args := []any{w.Start.UnixMilli(), w.End.UnixMilli()}
	if b.Inclusive {
		where += ` AND price >= ?`
	} else {
		where += ` AND price > ?`
	}
	args = append(args, b.Low)
	if !b.Open {
		where += ` AND price <= ?`
		args = append(args, b.Max)
	}

	var n int64
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM records WHERE `+where), args...)
	return n, err
}

func (r *RecordRepo) CountByCategory(ctx context.Context, w domain.Window) ([]domain.CategoryCount, error) {
	out := []domain.CategoryCount{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
  SELECT category, COUNT(*) AS count
  FROM records
  WHERE date_of_sale >= ? AND date_of_sale < ?
  GROUP BY category
  ORDER BY category
`), w.Start.UnixMilli(), w.End.UnixMilli())
	return out, err
}

func (r *RecordRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *RecordRepo) Close() error { return r.db.Close() }

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
