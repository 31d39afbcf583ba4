package s1_universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bist-swing/internal/strategyconfig"
	"github.com/wonny/bist-swing/pkg/config"
	"github.com/wonny/bist-swing/pkg/httputil"
	"github.com/wonny/bist-swing/pkg/logger"
	"github.com/wonny/bist-swing/pkg/redis"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       []string
		suffix   string
		want     []string
		excluded map[string]string
	}{
		{
			name:   "suffix added to bare codes",
			in:     []string{"thyao", " ASELS ", "GARAN.IS"},
			suffix: ".IS",
			want:   []string{"THYAO.IS", "ASELS.IS", "GARAN.IS"},
		},
		{
			name:     "duplicates keep first occurrence",
			in:       []string{"THYAO", "ASELS", "thyao.is", "ASELS"},
			suffix:   ".IS",
			want:     []string{"THYAO.IS", "ASELS.IS"},
			excluded: map[string]string{"thyao.is": ReasonDuplicate, "ASELS": ReasonDuplicate},
		},
		{
			name:     "blanks skipped and junk excluded",
			in:       []string{"", "  ", "BIM AS", "SISE"},
			suffix:   ".IS",
			want:     []string{"SISE.IS"},
			excluded: map[string]string{"BIM AS": ReasonInvalid},
		},
		{
			name:   "no suffix",
			in:     []string{"AAPL", "msft"},
			suffix: "",
			want:   []string{"AAPL", "MSFT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, excluded := Normalize(tt.in, tt.suffix)
			assert.Equal(t, tt.want, got)
			if tt.excluded == nil {
				assert.Empty(t, excluded)
			} else {
				assert.Equal(t, tt.excluded, excluded)
			}
		})
	}
}

func TestDefaultBISTIsClean(t *testing.T) {
	tickers, excluded := Normalize(DefaultBIST, ".IS")
	assert.Len(t, tickers, 30)
	assert.Empty(t, excluded)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "THYAO", Display("THYAO.IS"))
	assert.Equal(t, "AAPL", Display("AAPL"))
}

const constituentsHTML = `<html><body>
<table id="bist">
  <tr><th>Code</th><th>Name</th></tr>
  <tr><td class="code">THYAO</td><td>Turk Hava Yollari</td></tr>
  <tr><td class="code">asels Aselsan</td><td>Aselsan</td></tr>
  <tr><td class="code"></td><td>blank</td></tr>
  <tr><td class="code">- n/a</td><td>noise</td></tr>
  <tr><td class="code">GARAN</td><td>Garanti</td></tr>
</table></body></html>`

func TestParseConstituents(t *testing.T) {
	codes, err := ParseConstituents(strings.NewReader(constituentsHTML), "td.code")
	require.NoError(t, err)
	assert.Equal(t, []string{"THYAO", "ASELS", "GARAN"}, codes)

	_, err = ParseConstituents(strings.NewReader(constituentsHTML), "td.missing")
	assert.Error(t, err)
}

func newScraper() *Scraper {
	client := httputil.New(config.ProviderConfig{Timeout: time.Second}, logger.NewNop()).DisableRetry()
	return NewScraper(client, redis.NewCache(redis.Disabled(), "test"), logger.NewNop())
}

func TestBuilder_Precedence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentsHTML))
	}))
	defer server.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	tests := []struct {
		name       string
		cfg        strategyconfig.Universe
		explicit   []string
		wantSource string
		wantFirst  string
		wantCount  int
	}{
		{
			name:       "explicit wins",
			cfg:        strategyconfig.Universe{Suffix: ".IS", Tickers: []string{"SISE"}},
			explicit:   []string{"kchol", "akbnk"},
			wantSource: SourceExplicit, wantFirst: "KCHOL.IS", wantCount: 2,
		},
		{
			name:       "strategy list",
			cfg:        strategyconfig.Universe{Suffix: ".IS", Tickers: []string{"SISE", "EREGL"}},
			wantSource: SourceStrategy, wantFirst: "SISE.IS", wantCount: 2,
		},
		{
			name:       "scraped page",
			cfg:        strategyconfig.Universe{Suffix: ".IS", SourceURL: server.URL, Selector: "td.code"},
			wantSource: SourceScrape, wantFirst: "THYAO.IS", wantCount: 3,
		},
		{
			name:       "scrape failure falls back to default",
			cfg:        strategyconfig.Universe{Suffix: ".IS", SourceURL: broken.URL, Selector: "td.code"},
			wantSource: SourceDefault, wantFirst: "THYAO.IS", wantCount: 30,
		},
		{
			name:       "default list",
			cfg:        strategyconfig.Universe{Suffix: ".IS"},
			wantSource: SourceDefault, wantFirst: "THYAO.IS", wantCount: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewBuilder(tt.cfg, tt.explicit, newScraper(), logger.NewNop()).Build(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantSource, u.Source)
			assert.Equal(t, tt.wantCount, u.Count())
			assert.Equal(t, tt.wantFirst, u.Tickers[0])
			assert.True(t, u.Contains(tt.wantFirst))
		})
	}
}

func TestBuilder_EmptyAfterNormalize(t *testing.T) {
	_, err := NewBuilder(strategyconfig.Universe{}, []string{"!!!"}, nil, logger.NewNop()).Build(context.Background())
	assert.Error(t, err)
}
