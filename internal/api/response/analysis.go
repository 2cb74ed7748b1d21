package response

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
	"github.com/ndewijer/portfolio-yield-tracker/internal/service"
)

// HoldingResponse is one symbol's position inside a snapshot.
type HoldingResponse struct {
	Symbol              string          `json:"symbol"`
	Shares              decimal.Decimal `json:"shares"`
	AverageCost         decimal.Decimal `json:"averageCost"`
	DividendsReceived   decimal.Decimal `json:"dividendsReceived"`
	LastTransactionDate string          `json:"lastTransactionDate,omitempty"`
	LastTransactionType string          `json:"lastTransactionType,omitempty"`
}

// CashFlowResponse is a signed external flow. Buys are positive.
type CashFlowResponse struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// SnapshotResponse is the wire form of analyzer.Snapshot.
type SnapshotResponse struct {
	TotalInvested      decimal.Decimal    `json:"totalInvested"`
	TotalWithdrawn     decimal.Decimal    `json:"totalWithdrawn"`
	TotalDividends     decimal.Decimal    `json:"totalDividends"`
	PortfolioGain      decimal.Decimal    `json:"portfolioGain"`
	CurrentValue       decimal.Decimal    `json:"currentValue"`
	ModifiedDietzYield float64            `json:"modifiedDietzYield"`
	AnnualizedYield    float64            `json:"annualizedYield"`
	SimpleYield        float64            `json:"simpleYield"`
	DaysSinceStart     int                `json:"daysSinceStart"`
	Holdings           []HoldingResponse  `json:"holdings"`
	CashFlows          []CashFlowResponse `json:"cashFlows"`
	MissingPrices      []string           `json:"missingPrices,omitempty"`
}

// PortfolioResponse is the result of GET /api/analysis. Snapshots is keyed
// by account ID and "total"; Accounts keeps first-appearance order.
type PortfolioResponse struct {
	Currency     string                      `json:"currency"`
	AsOf         string                      `json:"asOf"`
	ExchangeRate decimal.Decimal             `json:"exchangeRate"`
	Accounts     []string                    `json:"accounts"`
	Snapshots    map[string]SnapshotResponse `json:"snapshots"`
}

// AccountAnalysisResponse is the result of GET /api/analysis/{accountId}.
type AccountAnalysisResponse struct {
	AccountID    string           `json:"accountId"`
	Currency     string           `json:"currency"`
	AsOf         string           `json:"asOf"`
	ExchangeRate decimal.Decimal  `json:"exchangeRate"`
	Snapshot     SnapshotResponse `json:"snapshot"`
}

// NewSnapshotResponse flattens s. Holdings are sorted by symbol.
func NewSnapshotResponse(s *analyzer.Snapshot) SnapshotResponse {
	out := SnapshotResponse{
		TotalInvested:      s.TotalInvested,
		TotalWithdrawn:     s.TotalWithdrawn,
		TotalDividends:     s.TotalDividends,
		PortfolioGain:      s.PortfolioGain,
		CurrentValue:       s.CurrentValue,
		ModifiedDietzYield: s.ModifiedDietzYield,
		AnnualizedYield:    s.AnnualizedYield,
		SimpleYield:        s.SimpleYield,
		DaysSinceStart:     s.DaysSinceStart,
		Holdings:           make([]HoldingResponse, 0, len(s.Shares)),
		CashFlows:          make([]CashFlowResponse, 0, len(s.CashFlows)),
		MissingPrices:      s.MissingPrices,
	}

	for _, symbol := range s.Symbols() {
		h := HoldingResponse{
			Symbol:            symbol,
			Shares:            s.Shares[symbol],
			AverageCost:       s.AverageCost[symbol],
			DividendsReceived: s.DividendsReceived[symbol],
		}
		if last, ok := s.LastTransactions[symbol]; ok {
			h.LastTransactionDate = formatDate(last.Date)
			h.LastTransactionType = string(last.Type)
		}
		out.Holdings = append(out.Holdings, h)
	}

	for _, cf := range s.CashFlows {
		out.CashFlows = append(out.CashFlows, CashFlowResponse{
			Date:   formatDate(cf.Date),
			Amount: cf.Amount,
		})
	}
	return out
}

// NewPortfolioResponse builds the wire form of a portfolio report.
func NewPortfolioResponse(r *service.PortfolioReport) PortfolioResponse {
	out := PortfolioResponse{
		Currency:     r.Currency,
		AsOf:         formatDate(r.AsOf),
		ExchangeRate: r.ExchangeRate,
		Accounts:     r.Portfolio.AccountIDs,
		Snapshots:    make(map[string]SnapshotResponse, len(r.Portfolio.Snapshots)),
	}
	for _, id := range r.Portfolio.Keys() {
		out.Snapshots[id] = NewSnapshotResponse(r.Portfolio.Snapshot(id))
	}
	return out
}

// NewAccountAnalysisResponse builds the wire form of an account report.
func NewAccountAnalysisResponse(r *service.AccountReport) AccountAnalysisResponse {
	return AccountAnalysisResponse{
		AccountID:    r.AccountID,
		Currency:     r.Currency,
		AsOf:         formatDate(r.AsOf),
		ExchangeRate: r.ExchangeRate,
		Snapshot:     NewSnapshotResponse(r.Snapshot),
	}
}

// PriceResponse is the wire form of model.SymbolPrice.
type PriceResponse struct {
	Symbol   string          `json:"symbol"`
	Date     string          `json:"date"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adjClose"`
	Currency string          `json:"currency,omitempty"`
}

// NewPriceResponse converts a stored or fetched quote.
func NewPriceResponse(p model.SymbolPrice) PriceResponse {
	return PriceResponse{
		Symbol:   p.Symbol,
		Date:     formatDate(p.Date),
		Close:    p.Close,
		AdjClose: p.AdjClose,
		Currency: p.Currency,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateFormat)
}
