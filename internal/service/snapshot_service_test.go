package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/config"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/repository"
	"github.com/lifedash/portfolio-engine/internal/testutil"
)

func TestSnapshotAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cash := testutil.NewAccount().WithBalance("2500").Build(t, db)
	stock := testutil.NewAccount().WithName("Stocks").OfType(model.AccountStockPortfolio).Build(t, db)
	svc := testutil.NewTestSnapshotService(t, db, config.BaselineExact)

	// Stock account value comes from holdings times cached prices, not from
	// the stored balance.
	testutil.NewTransaction("AAPL").Buy("10", "100").On("2024-01-02").Build(t, db)
	holdingSvc := testutil.NewTestHoldingService(t, db)
	if _, err := holdingSvc.Recalculate(model.DefaultUserID); err != nil {
		t.Fatal(err)
	}
	holdings := repository.NewHoldingRepository(db)
	if err := holdings.UpdatePrice(model.DefaultUserID, "AAPL", testutil.Dec(t, "150"), testutil.Dec(t, "0"), time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.SnapshotAll(date); err != nil {
		t.Fatalf("SnapshotAll returned error: %v", err)
	}

	cashBalance, err := svc.BalanceAsOf(cash.ID, date)
	if err != nil {
		t.Fatalf("BalanceAsOf returned error: %v", err)
	}
	if !cashBalance.Equal(testutil.Dec(t, "2500")) {
		t.Errorf("Expected cash snapshot 2500, got %s", cashBalance)
	}

	stockBalance, err := svc.BalanceAsOf(stock.ID, date)
	if err != nil {
		t.Fatalf("BalanceAsOf returned error: %v", err)
	}
	if !stockBalance.Equal(testutil.Dec(t, "1500")) {
		t.Errorf("Expected stock snapshot 1500 (10 x 150), got %s", stockBalance)
	}
}

func TestSnapshotAllOverwritesSameDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cash := testutil.NewAccount().WithBalance("1000").Build(t, db)
	svc := testutil.NewTestSnapshotService(t, db, config.BaselineExact)

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.SnapshotAll(date); err != nil {
		t.Fatal(err)
	}

	if err := repository.NewAccountRepository(db).UpdateBalance(cash.ID, testutil.Dec(t, "1750")); err != nil {
		t.Fatal(err)
	}
	if err := svc.SnapshotAll(date); err != nil {
		t.Fatal(err)
	}

	balance, err := svc.BalanceAsOf(cash.ID, date)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(testutil.Dec(t, "1750")) {
		t.Errorf("Expected re-snapshot to overwrite, got %s", balance)
	}

	history, err := repository.NewHistoryRepository(db).ListByAccount(cash.ID, date.AddDate(0, 0, -1), date.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("Expected exactly one history row per account-date, got %d", len(history))
	}
}

func TestBalanceAsOfExactPolicy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cash := testutil.NewAccount().Build(t, db)
	svc := testutil.NewTestSnapshotService(t, db, config.BaselineExact)

	testutil.SnapshotBalance(t, db, cash.ID, "2024-05-28", "900")

	_, err := svc.BalanceAsOf(cash.ID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, apperrors.ErrBaselineUnavailable) {
		t.Errorf("Expected ErrBaselineUnavailable under exact policy, got %v", err)
	}
}

func TestBalanceAsOfNearestPriorPolicy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cash := testutil.NewAccount().Build(t, db)
	svc := testutil.NewTestSnapshotService(t, db, config.BaselineNearestPrior)

	testutil.SnapshotBalance(t, db, cash.ID, "2024-05-25", "800")
	testutil.SnapshotBalance(t, db, cash.ID, "2024-05-28", "900")

	balance, err := svc.BalanceAsOf(cash.ID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected nearest-prior fallback, got %v", err)
	}
	if !balance.Equal(testutil.Dec(t, "900")) {
		t.Errorf("Expected most recent prior snapshot 900, got %s", balance)
	}

	// No snapshot at or before the date at all.
	_, err = svc.BalanceAsOf(cash.ID, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, apperrors.ErrBaselineUnavailable) {
		t.Errorf("Expected ErrBaselineUnavailable with no prior snapshot, got %v", err)
	}
}
