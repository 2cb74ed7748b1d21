package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-yield-tracker/internal/analyzer"
	"github.com/ndewijer/portfolio-yield-tracker/internal/model"
)

var summaryHeader = []string{
	"Account", "Invested", "Withdrawn", "Dividends", "Value", "Gain",
	"Modified Dietz", "Annualized", "Simple", "Days",
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

func summaryRow(id string, s *analyzer.Snapshot) []string {
	return []string{
		id,
		money(s.TotalInvested),
		money(s.TotalWithdrawn),
		money(s.TotalDividends),
		money(s.CurrentValue),
		money(s.PortfolioGain),
		percent(s.ModifiedDietzYield),
		percent(s.AnnualizedYield),
		percent(s.SimpleYield),
		fmt.Sprint(s.DaysSinceStart),
	}
}

// renderPortfolio writes one summary row per account and the total last.
func renderPortfolio(w io.Writer, p *analyzer.Portfolio) {
	table := newTable(w, summaryHeader)
	for _, id := range p.AccountIDs {
		table.Append(summaryRow(id, p.Snapshot(id)))
	}
	table.SetFooter(summaryRow(analyzer.TotalKey, p.Total()))
	table.Render()
}

// renderHoldings writes the per-symbol positions of s.
func renderHoldings(w io.Writer, s *analyzer.Snapshot) {
	table := newTable(w, []string{"Symbol", "Shares", "Average Cost", "Dividends", "Last Trade"})
	for _, symbol := range s.Symbols() {
		last := ""
		if lt, ok := s.LastTransactions[symbol]; ok {
			last = fmt.Sprintf("%s %s", lt.Type, lt.Date.Format(model.DateFormat))
		}
		table.Append([]string{
			symbol,
			s.Shares[symbol].String(),
			money(s.AverageCost[symbol]),
			money(s.DividendsReceived[symbol]),
			last,
		})
	}
	table.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
