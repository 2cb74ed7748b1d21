package yahoo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-yield-tracker/internal/yahoo"
)

const quoteBody = `{"chart":{"result":[{
	"meta":{"currency":"USD","symbol":"VTI","regularMarketPrice":251.5,"regularMarketTime":1704326400},
	"timestamp":[1704153600,1704240000,1704326400],
	"indicators":{
		"quote":[{"close":[240.0,245.5,null]}],
		"adjclose":[{"adjclose":[239.0,244.25,null]}]
	}
}],"error":null}}`

const dividendBody = `{"chart":{"result":[{
	"meta":{"currency":"USD","symbol":"VTI"},
	"timestamp":[1593561600],
	"indicators":{"quote":[{"close":[150]}]},
	"events":{"dividends":{
		"1601472600":{"amount":0.82,"date":1601472600},
		"1593523800":{"amount":0.54,"date":1593523800}
	}}
}],"error":null}}`

const errorBody = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/BAD"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(errorBody))
		case r.URL.Query().Get("events") == "div":
			_, _ = w.Write([]byte(dividendBody))
		case strings.HasSuffix(r.URL.Path, "/USDEUR=X"):
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"USDEUR=X"},"timestamp":[1704326400],"indicators":{"quote":[{"close":[0.9125]}]}}]}}`))
		default:
			_, _ = w.Write([]byte(quoteBody))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestLatestPrices_SkipsNullSessions checks the last non-null session is used.
//
// WHY: Yahoo reports the in-progress session as null; picking it would value
// every holding at zero during market hours.
func TestLatestPrices_SkipsNullSessions(t *testing.T) {
	client := yahoo.NewFinanceClient(yahoo.WithBaseURL(newServer(t).URL))

	prices, err := client.LatestPrices(context.Background(), []string{"VTI"})
	require.NoError(t, err)
	require.Contains(t, prices, "VTI")

	p := prices["VTI"]
	assert.Equal(t, "245.5", p.Close.String())
	assert.Equal(t, "244.25", p.AdjClose.String())
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), p.Date)
}

func TestLatestPrices_PartialFailure(t *testing.T) {
	client := yahoo.NewFinanceClient(yahoo.WithBaseURL(newServer(t).URL))

	prices, err := client.LatestPrices(context.Background(), []string{"VTI", "BAD"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD")
	assert.Contains(t, err.Error(), "delisted")
	assert.Len(t, prices, 1)
	assert.Contains(t, prices, "VTI")
}

func TestDividends(t *testing.T) {
	client := yahoo.NewFinanceClient(yahoo.WithBaseURL(newServer(t).URL))

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	divs, err := client.Dividends(context.Background(), []string{"VTI"}, from, from.AddDate(1, 0, 0))
	require.NoError(t, err)
	require.Len(t, divs["VTI"], 2)

	first := divs["VTI"][0]
	assert.Equal(t, time.Date(2020, 6, 30, 0, 0, 0, 0, time.UTC), first.ExDate)
	assert.Equal(t, "0.54", first.Amount.String())
	assert.Equal(t, "VTI", first.Symbol)
	assert.Equal(t, "0.82", divs["VTI"][1].Amount.String())
}

func TestRate(t *testing.T) {
	client := yahoo.NewFinanceClient(yahoo.WithBaseURL(newServer(t).URL))

	rate, err := client.Rate(context.Background(), "usd", "eur")
	require.NoError(t, err)
	assert.Equal(t, "USD", rate.Base)
	assert.Equal(t, "EUR", rate.Quote)
	assert.Equal(t, "0.9125", rate.Rate.String())

	same, err := client.Rate(context.Background(), "EUR", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "1", same.Rate.String())
}

func TestParseQuote_MetaFallback(t *testing.T) {
	price := 12.5
	var resp yahoo.Response
	resp.Chart.Result = []yahoo.Result{{
		Meta: yahoo.Meta{Symbol: "X", RegularMarketPrice: price, RegularMarketTime: 1704326400},
	}}

	q, err := yahoo.ParseQuote(resp)
	require.NoError(t, err)
	assert.Equal(t, price, q.Close)
	assert.Equal(t, price, q.AdjClose)

	_, err = yahoo.ParseQuote(yahoo.Response{})
	assert.ErrorIs(t, err, yahoo.ErrNoResult)
}
