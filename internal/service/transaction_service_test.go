package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-yield-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-yield-tracker/internal/importer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/repository"
	"github.com/ndewijer/portfolio-yield-tracker/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestTransactionService_CRUD(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTransactionService(t, db)
	account := testutil.NewAccount().Build(t, db)

	created, err := svc.CreateTransaction(ctx, request.CreateTransactionRequest{
		AccountID:     account.ID,
		Symbol:        " vti ",
		Date:          "2020-01-01",
		Type:          "BUY",
		Quantity:      decimal.NewFromInt(10),
		PricePerShare: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, "VTI", created.Symbol)
	assert.Equal(t, model.TransactionTypeBuy, created.Type)
	assert.NotEmpty(t, created.ID)

	updated, err := svc.UpdateTransaction(ctx, created.ID, request.UpdateTransactionRequest{
		Type:     ptr("sell"),
		Quantity: ptr(decimal.NewFromInt(4)),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTypeSell, updated.Type)
	assertDecimal(t, "4", updated.Quantity)
	assertDecimal(t, "100", updated.PricePerShare)

	got, err := svc.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTypeSell, got.Type)

	list, err := svc.GetTransactions(ctx, repository.TransactionFilter{AccountID: account.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteTransaction(ctx, created.ID))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, created.ID), apperrors.ErrTransactionNotFound)
}

func TestTransactionService_Errors(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTransactionService(t, db)
	account := testutil.NewAccount().Build(t, db)
	valid := request.CreateTransactionRequest{
		AccountID:     account.ID,
		Symbol:        "VTI",
		Date:          "2020-01-01",
		Type:          "buy",
		Quantity:      decimal.NewFromInt(1),
		PricePerShare: decimal.NewFromInt(1),
	}

	tests := []struct {
		name    string
		mutate  func(*request.CreateTransactionRequest)
		wantErr error
	}{
		{"unknown account", func(r *request.CreateTransactionRequest) { r.AccountID = "missing" }, apperrors.ErrAccountNotFound},
		{"bad date", func(r *request.CreateTransactionRequest) { r.Date = "01/02/2020" }, apperrors.ErrInvalidDate},
		{"bad type", func(r *request.CreateTransactionRequest) { r.Type = "split" }, apperrors.ErrInvalidTransactionType},
		{"negative price", func(r *request.CreateTransactionRequest) { r.PricePerShare = decimal.NewFromInt(-1) }, apperrors.ErrNegativeAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := svc.CreateTransaction(ctx, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("update of unknown transaction", func(t *testing.T) {
		_, err := svc.UpdateTransaction(ctx, testutil.MakeID(), request.UpdateTransactionRequest{})
		assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
	})

	t.Run("update to unknown account", func(t *testing.T) {
		tx := testutil.NewTransaction(account.ID, "VTI").Build(t, db)
		_, err := svc.UpdateTransaction(ctx, tx.ID, request.UpdateTransactionRequest{AccountID: ptr("missing")})
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	})
}

// TestTransactionService_ImportCSV checks account creation and all-or-nothing import.
//
// WHY: A ledger is only meaningful as a whole; a half-imported file would
// silently change cost bases and yields.
func TestTransactionService_ImportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing accounts and keeps file order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		testutil.NewAccount().WithID("broker").Build(t, db)

		csv := "account_id,symbol,date,type,quantity,price_per_share\n" +
			"broker,VTI,2020-01-01,buy,10,100\n" +
			"ira,BND,2020-01-01,buy,5,80\n" +
			",VTI,2020-01-01,sell,2,\"1,100\"\n"

		result, err := svc.ImportCSV(ctx, strings.NewReader(csv), "")
		require.NoError(t, err)
		assert.Equal(t, 3, result.Transactions)
		assert.Equal(t, []string{"ira", analyzer.DefaultAccountID}, result.CreatedAccounts)

		all, err := svc.GetTransactions(ctx, repository.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "broker", all[0].AccountID)
		assert.Equal(t, "ira", all[1].AccountID)
		assert.Equal(t, analyzer.DefaultAccountID, all[2].AccountID)
		assertDecimal(t, "1100", all[2].PricePerShare)
	})

	t.Run("bad row rolls back everything", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)

		csv := "account_id,symbol,date,type,quantity,price_per_share\n" +
			"broker,VTI,2020-01-01,buy,10,100\n" +
			"broker,VTI,2020-13-01,buy,10,100\n"

		_, err := svc.ImportCSV(ctx, strings.NewReader(csv), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrFailedToImportTransactions)
		assert.ErrorIs(t, err, apperrors.ErrInvalidDate)

		var lineErr *importer.LineError
		require.ErrorAs(t, err, &lineErr)
		assert.Equal(t, 3, lineErr.Line)

		testutil.AssertRowCount(t, db, "transaction", 0)
		testutil.AssertRowCount(t, db, "account", 0)
	})

	t.Run("reserved account is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)

		csv := "account_id,symbol,date,type,quantity,price_per_share\n" +
			"total,VTI,2020-01-01,buy,10,100\n"

		_, err := svc.ImportCSV(ctx, strings.NewReader(csv), "")
		assert.ErrorIs(t, err, apperrors.ErrReservedAccountID)
		testutil.AssertRowCount(t, db, "transaction", 0)
	})

	t.Run("export round trips", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		account := testutil.NewAccount().WithID("broker").Build(t, db)
		testutil.NewTransaction(account.ID, "VTI").WithQuantity("2.5").Build(t, db)

		var buf bytes.Buffer
		require.NoError(t, svc.ExportCSV(ctx, &buf, repository.TransactionFilter{}))
		assert.Contains(t, buf.String(), "broker,VTI,2020-01-01,buy,2.5,100")

		other := testutil.SetupTestDB(t)
		result, err := testutil.NewTestTransactionService(t, other).ImportCSV(ctx, &buf, "")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Transactions)
		assert.Equal(t, []string{"broker"}, result.CreatedAccounts)
	})
}
