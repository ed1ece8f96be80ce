package repository

import (
	"fmt"
	"time"

	"github.com/lifedash/portfolio-engine/internal/model"
)

// QuoteRepository persists the quote cache to the cached_quote table so the
// in-memory cache survives restarts. Reads go through memory; this table is
// write-through storage plus warm-start data.
type QuoteRepository struct {
	db DBTX
}

// NewQuoteRepository creates a new QuoteRepository with the provided database connection.
func NewQuoteRepository(db DBTX) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Upsert writes the latest quote for a symbol.
func (r *QuoteRepository) Upsert(q model.Quote) error {
	_, err := r.db.Exec(`
		INSERT INTO cached_quote (symbol, price, daily_change, percent_change, previous_close, fetched_at, market_open)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			daily_change = excluded.daily_change,
			percent_change = excluded.percent_change,
			previous_close = excluded.previous_close,
			fetched_at = excluded.fetched_at,
			market_open = excluded.market_open`,
		q.Symbol,
		q.Price.String(),
		q.DailyChange.String(),
		q.PercentChange.String(),
		q.PreviousClose.String(),
		q.FetchedAt.UTC().Format(time.RFC3339),
		q.MarketOpen,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cached quote: %w", err)
	}
	return nil
}

// All retrieves every persisted quote, used to warm the cache at startup.
func (r *QuoteRepository) All() ([]model.Quote, error) {
	rows, err := r.db.Query(`
		SELECT symbol, price, daily_change, percent_change, previous_close, fetched_at, market_open
		FROM cached_quote`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached quotes: %w", err)
	}
	defer rows.Close()

	var quotes []model.Quote
	for rows.Next() {
		var (
			q                                      model.Quote
			priceStr, changeStr, pctStr, closeStr  string
			fetchedStr                             string
		)
		if err := rows.Scan(&q.Symbol, &priceStr, &changeStr, &pctStr, &closeStr, &fetchedStr, &q.MarketOpen); err != nil {
			return nil, fmt.Errorf("failed to scan cached quote: %w", err)
		}
		if q.Price, err = ParseDecimal(priceStr); err != nil {
			return nil, err
		}
		if q.DailyChange, err = ParseDecimal(changeStr); err != nil {
			return nil, err
		}
		if q.PercentChange, err = ParseDecimal(pctStr); err != nil {
			return nil, err
		}
		if q.PreviousClose, err = ParseDecimal(closeStr); err != nil {
			return nil, err
		}
		if q.FetchedAt, err = ParseTime(fetchedStr); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached quotes: %w", err)
	}
	return quotes, nil
}

// Delete removes persisted quotes for the given symbols.
func (r *QuoteRepository) Delete(symbols ...string) error {
	for _, symbol := range symbols {
		if _, err := r.db.Exec(`DELETE FROM cached_quote WHERE symbol = ?`, symbol); err != nil {
			return fmt.Errorf("failed to delete cached quote: %w", err)
		}
	}
	return nil
}
