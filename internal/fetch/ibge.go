package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/Duddu64/economia/internal/dataset"
)

// AggregateRequest selects variables of one SIDRA table.
type AggregateRequest struct {
	Table     string
	Variables []string
	Periods   string     // optional, e.g. "2012-2024" or "201201|201202"
	Params    url.Values // optional query, e.g. localidades, classificacao
}

func (r AggregateRequest) path() string {
	vars := strings.Join(r.Variables, ",")
	if r.Periods != "" {
		return fmt.Sprintf("%s/periodos/%s/variaveis/%s", url.PathEscape(r.Table), url.PathEscape(r.Periods), vars)
	}
	return fmt.Sprintf("%s/variaveis/%s", url.PathEscape(r.Table), vars)
}

// Aggregates fetches a SIDRA table and returns the decoded JSON untouched.
func (c *Client) Aggregates(ctx context.Context, req AggregateRequest) (json.RawMessage, error) {
	if req.Table == "" || len(req.Variables) == 0 {
		return nil, fmt.Errorf("error building aggregates request: table and variables are required")
	}
	u := strings.TrimRight(c.ibgeBase, "/") + "/" + req.path()
	if len(req.Params) > 0 {
		u += "?" + req.Params.Encode()
	}

	body, err := c.get(ctx, "ibge aggregates", u)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &dataset.ParseError{Source: u, Err: err}
	}
	return raw, nil
}
