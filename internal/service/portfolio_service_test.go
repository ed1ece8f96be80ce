package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/lifedash/portfolio-engine/internal/config"
	"github.com/lifedash/portfolio-engine/internal/model"
	"github.com/lifedash/portfolio-engine/internal/repository"
	"github.com/lifedash/portfolio-engine/internal/testutil"
)

func daysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format("2006-01-02")
}

func TestSummaryValuation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.NewAccount().WithName("Stocks").OfType(model.AccountStockPortfolio).Build(t, db)

	testutil.NewTransaction("AAPL").Buy("10", "100").On(daysAgo(30)).Build(t, db)
	testutil.NewTransaction("MSFT").Buy("5", "400").On(daysAgo(30)).Build(t, db)
	if _, err := testutil.NewTestHoldingService(t, db).Recalculate(model.DefaultUserID); err != nil {
		t.Fatal(err)
	}

	// AAPL is priced, MSFT has no data.
	quotes := testutil.NewStubQuotes().SetPrice("AAPL", "150", "2")
	svc := testutil.NewTestPortfolioService(t, db, quotes, config.BaselineExact)

	summary, err := svc.Summary(context.Background(), model.DefaultUserID)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}

	if summary.TotalPositions != 2 {
		t.Errorf("Expected 2 positions, got %d", summary.TotalPositions)
	}
	if summary.PositionsWithoutData != 1 {
		t.Errorf("Expected 1 position without data, got %d", summary.PositionsWithoutData)
	}
	// Cost basis covers everything; market value only the priced position.
	if !summary.TotalInvestment.Equal(testutil.Dec(t, "3000")) {
		t.Errorf("Expected total investment 3000, got %s", summary.TotalInvestment)
	}
	if !summary.CurrentValue.Equal(testutil.Dec(t, "1500")) {
		t.Errorf("Expected current value 1500 over priced positions, got %s", summary.CurrentValue)
	}
	if !summary.DailyChange.Equal(testutil.Dec(t, "20")) {
		t.Errorf("Expected daily change 20 (10 x 2), got %s", summary.DailyChange)
	}

	for _, pos := range summary.Positions {
		switch pos.Symbol {
		case "AAPL":
			if !pos.HasCurrentData {
				t.Error("Expected AAPL to have current data")
			}
			if !pos.GainLoss.Equal(testutil.Dec(t, "500")) {
				t.Errorf("Expected AAPL gain 500, got %s", pos.GainLoss)
			}
		case "MSFT":
			if pos.HasCurrentData {
				t.Error("Expected MSFT to be reported without data, not valued at zero")
			}
		}
	}

	// The cached price is written back to the holding row.
	holding, err := repository.NewHoldingRepository(db).Find(model.DefaultUserID, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if holding.CurrentPrice == nil || !holding.CurrentPrice.Equal(testutil.Dec(t, "150")) {
		t.Errorf("Expected hydrated price 150 on holding, got %v", holding.CurrentPrice)
	}
}

func TestSummarySyncsStockAccountBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	stock := testutil.NewAccount().WithName("Stocks").OfType(model.AccountStockPortfolio).WithBalance("123").Build(t, db)

	testutil.NewTransaction("AAPL").Buy("10", "100").On(daysAgo(30)).Build(t, db)
	if _, err := testutil.NewTestHoldingService(t, db).Recalculate(model.DefaultUserID); err != nil {
		t.Fatal(err)
	}

	quotes := testutil.NewStubQuotes().SetPrice("AAPL", "150", "0")
	svc := testutil.NewTestPortfolioService(t, db, quotes, config.BaselineExact)

	if _, err := svc.Summary(context.Background(), model.DefaultUserID); err != nil {
		t.Fatal(err)
	}

	account, err := repository.NewAccountRepository(db).Get(stock.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !account.Balance.Equal(testutil.Dec(t, "1500")) {
		t.Errorf("Expected stock account balance synced to 1500, got %s", account.Balance)
	}
}

func TestPeriodReturnDepositIsNotGain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	stock := testutil.NewAccount().WithName("Stocks").OfType(model.AccountStockPortfolio).Build(t, db)

	// A 100-share position from before the window plus a 10-share buy inside
	// it. The portfolio "grew" by exactly the deposited 1000; the return must
	// be zero, not 10%.
	testutil.NewTransaction("AAPL").Buy("100", "100").On(daysAgo(60)).Build(t, db)
	testutil.NewTransaction("AAPL").Buy("10", "100").On(daysAgo(3)).Build(t, db)
	if _, err := testutil.NewTestHoldingService(t, db).Recalculate(model.DefaultUserID); err != nil {
		t.Fatal(err)
	}

	testutil.SnapshotBalance(t, db, stock.ID, daysAgo(7), "10000")

	quotes := testutil.NewStubQuotes().SetPrice("AAPL", "100", "0")
	svc := testutil.NewTestPortfolioService(t, db, quotes, config.BaselineExact)

	summary, err := svc.Summary(context.Background(), model.DefaultUserID)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}

	if !summary.Return7d.Available() {
		t.Fatal("Expected 7d return to be available")
	}
	if !summary.Return7d.GainLoss.IsZero() {
		t.Errorf("Expected zero gain after pure deposit, got %s", summary.Return7d.GainLoss)
	}
	if !summary.Return7d.Percentage.IsZero() {
		t.Errorf("Expected zero percentage after pure deposit, got %s", summary.Return7d.Percentage)
	}
}

func TestPeriodReturnWithdrawalAdjusted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	stock := testutil.NewAccount().WithName("Stocks").OfType(model.AccountStockPortfolio).Build(t, db)

	// 100 shares bought long ago, 20 sold inside the window for 2000. Current
	// value 9000 against a 10000 baseline looks like a loss, but adding the
	// withdrawn 2000 back reveals a 1000 gain on the 8000 still invested.
	testutil.NewTransaction("AAPL").Buy("100", "100").On(daysAgo(60)).Build(t, db)
	testutil.NewTransaction("AAPL").Sell("20", "100").On(daysAgo(3)).Build(t, db)
	if _, err := testutil.NewTestHoldingService(t, db).Recalculate(model.DefaultUserID); err != nil {
		t.Fatal(err)
	}

	testutil.SnapshotBalance(t, db, stock.ID, daysAgo(7), "10000")

	quotes := testutil.NewStubQuotes().SetPrice("AAPL", "112.5", "0")
	svc := testutil.NewTestPortfolioService(t, db, quotes, config.BaselineExact)

	summary, err := svc.Summary(context.Background(), model.DefaultUserID)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}

	if !summary.Return7d.Available() {
		t.Fatal("Expected 7d return to be available")
	}
	if !summary.Return7d.GainLoss.Equal(testutil.Dec(t, "1000")) {
		t.Errorf("Expected gain 1000 after withdrawal adjustment, got %s", summary.Return7d.GainLoss)
	}
	if !summary.Return7d.Percentage.Equal(testutil.Dec(t, "12.5")) {
		t.Errorf("Expected 12.5%% return, got %s", summary.Return7d.Percentage)
	}
}

func TestPeriodReturnUnavailableWithoutBaseline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.NewAccount().WithName("Stocks").OfType(model.AccountStockPortfolio).Build(t, db)

	testutil.NewTransaction("AAPL").Buy("10", "100").On(daysAgo(60)).Build(t, db)
	if _, err := testutil.NewTestHoldingService(t, db).Recalculate(model.DefaultUserID); err != nil {
		t.Fatal(err)
	}

	quotes := testutil.NewStubQuotes().SetPrice("AAPL", "150", "0")
	svc := testutil.NewTestPortfolioService(t, db, quotes, config.BaselineExact)

	summary, err := svc.Summary(context.Background(), model.DefaultUserID)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}

	// No snapshots exist, so every window is unavailable rather than zero.
	for name, ret := range map[string]model.PeriodReturn{
		"7d": summary.Return7d, "1m": summary.Return1m, "3m": summary.Return3m, "ytd": summary.ReturnYTD,
	} {
		if ret.Available() {
			t.Errorf("Expected %s return to be unavailable without a baseline", name)
		}
	}
}

func TestIndices(t *testing.T) {
	db := testutil.SetupTestDB(t)
	quotes := testutil.NewStubQuotes().SetPrice("^DJI", "39000", "120").SetPrice("BTC-USD", "64000", "-500")
	svc := testutil.NewTestPortfolioService(t, db, quotes, config.BaselineExact)

	indices := svc.Indices(context.Background())
	if len(indices) != 2 {
		t.Fatalf("Expected 2 available indices, got %d", len(indices))
	}
}
