package seed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yomariano/futurezxyback/internal/model"
)

// seedDepth is how many bars back the REST seeder asks for. A little above
// the 500-bar series cap so the window survives exchange-side gaps.
const seedDepth = 520

// intervalNames maps internal timeframes to the contract kline API names.
var intervalNames = map[model.Timeframe]string{
	model.TF1m:  "Min1",
	model.TF5m:  "Min5",
	model.TF15m: "Min15",
	model.TF1h:  "Min60",
	model.TF4h:  "Hour4",
	model.TF1d:  "Day1",
	model.TF1w:  "Week1",
}

// klineResponse is the columnar kline payload: parallel arrays indexed by
// bar, timestamps in seconds.
type klineResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Time  []int64   `json:"time"`
		Open  []float64 `json:"open"`
		High  []float64 `json:"high"`
		Low   []float64 `json:"low"`
		Close []float64 `json:"close"`
		Vol   []float64 `json:"vol"`
	} `json:"data"`
}

// REST seeds from the contract kline endpoint.
type REST struct {
	client *resty.Client
}

// NewREST builds a seeder against baseURL (e.g. "https://contract.mexc.com").
func NewREST(baseURL string, timeout time.Duration) *REST {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2)
	return &REST{client: client}
}

// Load fetches up to seedDepth bars ending now and returns them
// newest-first.
func (r *REST) Load(ctx context.Context, symbol string, tf model.Timeframe) ([]model.Candle, error) {
	interval, ok := intervalNames[tf]
	if !ok {
		return nil, fmt.Errorf("seed: no kline interval for %s", tf)
	}

	bucketSec := tf.BucketMs() / 1000
	end := time.Now().Unix()
	start := end - bucketSec*seedDepth

	var out klineResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": interval,
			"start":    fmt.Sprintf("%d", start),
			"end":      fmt.Sprintf("%d", end),
		}).
		SetResult(&out).
		Get("/api/v1/contract/kline/" + symbol)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("seed: kline %s %s: status %d", symbol, tf, resp.StatusCode())
	}

	d := out.Data
	n := len(d.Time)
	if len(d.Open) != n || len(d.High) != n || len(d.Low) != n || len(d.Close) != n {
		return nil, fmt.Errorf("seed: kline %s %s: ragged columns", symbol, tf)
	}

	candles := make([]model.Candle, 0, n)
	for i := 0; i < n; i++ {
		var vol float64
		if i < len(d.Vol) {
			vol = d.Vol[i]
		}
		candles = append(candles, model.Candle{
			OpenTime: d.Time[i] * 1000,
			Open:     d.Open[i],
			High:     d.High[i],
			Low:      d.Low[i],
			Close:    d.Close[i],
			Volume:   vol,
		})
	}
	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime > candles[j].OpenTime })
	return candles, nil
}
