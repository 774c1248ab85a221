package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"txdash/internal/domain"
)

// Item is one entry of the remote seed document.
type Item struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Sold        bool    `json:"sold"`
	DateOfSale  string  `json:"dateOfSale"`
}

// Source yields the seed document.
type Source interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// HTTPSource downloads the seed document with fiber's client agent.
type HTTPSource struct {
	URL     string
	Timeout time.Duration
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Timeout: timeout}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := s.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	a := fiber.Get(s.URL)
	if timeout > 0 {
		a.Timeout(timeout)
	}
	code, body, errs := a.Bytes()
	if code != 0 && code != fiber.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.URL, code)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, errors.Join(errs...))
	}
	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.URL, err)
	}
	return items, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps and a couple of looser forms;
// the result is always UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func (it Item) Record() (domain.Record, error) {
	when, err := ParseDate(it.DateOfSale)
	if err != nil {
		return domain.Record{}, err
	}
	return domain.Record{
		ID:          it.ID,
		Title:       it.Title,
		Price:       it.Price,
		Description: it.Description,
		Category:    it.Category,
		Image:       it.Image,
		Sold:        it.Sold,
		DateOfSale:  when,
	}, nil
}

// Records maps every item; one bad entry fails the whole set.
func Records(items []Item) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(items))
	for i, it := range items {
		rec, err := it.Record()
		if err != nil {
			return nil, fmt.Errorf("item %d (id %d): %w", i, it.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
