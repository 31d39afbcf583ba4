package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/pkg/httputil"
	"github.com/wonny/bist-swing/pkg/logger"
)

// DefaultBaseURL is the public chart endpoint host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches daily bars from the Yahoo Finance chart API
// ⭐ SSOT: Yahoo Finance calls are made here only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Yahoo Finance client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// chartResponse mirrors /v8/finance/chart. Nullable quote fields are pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns daily bars covering lookback, oldest first
func (c *Client) Fetch(ctx context.Context, ticker string, lookback time.Duration) (*contracts.PriceHistory, error) {
	end := c.now()
	start := end.Add(-lookback)

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	params.Set("period2", fmt.Sprintf("%d", end.Unix()))
	params.Set("includePrePost", "false")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var chart chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, nil, &chart); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: yahoo %s: %w", contracts.ErrFetchFailed, ticker, err)
	}

	bars, err := parseChart(&chart)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo %s: %v", contracts.ErrFetchFailed, ticker, err)
	}

	c.logger.WithTicker(ticker).WithField("bars", len(bars)).Debug("Fetched chart")

	return &contracts.PriceHistory{Ticker: ticker, Bars: bars}, nil
}

// parseChart converts the chart payload into ascending bars, skipping sessions with missing fields
func parseChart(chart *chartResponse) ([]contracts.Bar, error) {
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned")
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data returned")
	}
	quote := result.Indicators.Quote[0]

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		cl, okC := at(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			continue // holidays and halted sessions come back as nulls
		}
		v, _ := at(quote.Volume, i)

		bars = append(bars, contracts.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: v,
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no data returned")
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

var _ contracts.TimeSeriesProvider = (*Client)(nil)
