package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Duddu64/economia/internal/dataset"
)

// FinancingRateSeries is the SGS series of the average rate on market-rate
// real-estate financing for individuals (% a.m.).
const FinancingRateSeries = "25497"

const bcbDateLayout = "02/01/2006"

// DateWindow restricts a series to [From, To]. Zero bounds are left open.
type DateWindow struct {
	From time.Time
	To   time.Time
}

type sgsPoint struct {
	Data  string     `json:"data"`
	Valor flexNumber `json:"valor"`
}

// flexNumber accepts both "1.23" and 1.23.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = flexNumber(s)
		return nil
	}
	*n = flexNumber(b)
	return nil
}

// Series fetches one SGS series and returns it ordered by date.
func (c *Client) Series(ctx context.Context, seriesID string, w *DateWindow) ([]dataset.InterestRateObservation, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("error building series request: series id is required")
	}
	q := url.Values{"formato": {"json"}}
	if w != nil {
		if !w.From.IsZero() {
			q.Set("dataInicial", w.From.Format(bcbDateLayout))
		}
		if !w.To.IsZero() {
			q.Set("dataFinal", w.To.Format(bcbDateLayout))
		}
	}
	u := fmt.Sprintf("%s/bcdata.sgs.%s/dados?%s", strings.TrimRight(c.bcbBase, "/"), url.PathEscape(seriesID), q.Encode())

	body, err := c.get(ctx, "bcb series", u)
	if err != nil {
		return nil, err
	}
	return parseSeries(u, body)
}

func parseSeries(source string, body []byte) ([]dataset.InterestRateObservation, error) {
	var points []sgsPoint
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, &dataset.ParseError{Source: source, Err: err}
	}

	obs := make([]dataset.InterestRateObservation, 0, len(points))
	for i, p := range points {
		date, err := time.Parse(bcbDateLayout, strings.TrimSpace(p.Data))
		if err != nil {
			return nil, &dataset.ParseError{Source: source, Err: fmt.Errorf("point %d: invalid date %q: %w", i, p.Data, err)}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(p.Valor)), 64)
		if err != nil {
			return nil, &dataset.ParseError{Source: source, Err: fmt.Errorf("point %d: invalid value %q: %w", i, p.Valor, err)}
		}
		obs = append(obs, dataset.InterestRateObservation{Date: date, Value: v})
	}
	dataset.SortByDate(obs)
	return obs, nil
}
