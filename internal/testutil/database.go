package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Account table
		CREATE TABLE IF NOT EXISTS account (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			type VARCHAR(20) NOT NULL,
			balance TEXT NOT NULL DEFAULT '0',
			allow_negative BOOLEAN NOT NULL DEFAULT FALSE,
			is_manual BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Stock transaction table
		CREATE TABLE IF NOT EXISTS stock_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(12) NOT NULL,
			type VARCHAR(4) NOT NULL,
			quantity TEXT NOT NULL,
			price_per_share TEXT NOT NULL,
			total_cost TEXT NOT NULL,
			transaction_date DATE NOT NULL,
			account_id VARCHAR(36),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE SET NULL
		);

		-- Holding table
		CREATE TABLE IF NOT EXISTS holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(12) NOT NULL,
			quantity TEXT NOT NULL,
			average_cost TEXT NOT NULL,
			current_price TEXT,
			daily_change TEXT,
			last_price_update DATETIME,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_user_symbol UNIQUE (user_id, symbol)
		);

		-- Account transaction table (ledger)
		CREATE TABLE IF NOT EXISTS account_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			transaction_date DATE NOT NULL,
			amount TEXT NOT NULL,
			old_balance TEXT NOT NULL,
			new_balance TEXT NOT NULL,
			type VARCHAR(6) NOT NULL,
			description TEXT,
			related_stock_transaction_id VARCHAR(36),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE
		);

		-- Balance history table
		CREATE TABLE IF NOT EXISTS account_balance_history (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			balance TEXT NOT NULL,
			recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE,
			CONSTRAINT unique_account_date UNIQUE (account_id, date)
		);

		-- Cached quote table
		CREATE TABLE IF NOT EXISTS cached_quote (
			symbol VARCHAR(12) NOT NULL PRIMARY KEY,
			price TEXT NOT NULL,
			daily_change TEXT NOT NULL DEFAULT '0',
			percent_change TEXT NOT NULL DEFAULT '0',
			previous_close TEXT NOT NULL DEFAULT '0',
			fetched_at DATETIME NOT NULL,
			market_open BOOLEAN NOT NULL DEFAULT FALSE
		);

		-- Global setting table
		CREATE TABLE IF NOT EXISTS global_setting (
			key VARCHAR(50) NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := db.Exec(schema)
	return err
}
