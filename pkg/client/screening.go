package client

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"github.com/turtacn/druglike/pkg/errors"
	dto "github.com/turtacn/druglike/pkg/types/screening"
)

// Rules lists the filters the server knows.
func (c *Client) Rules(ctx context.Context) ([]dto.Rule, error) {
	var rules []dto.Rule
	if err := c.get(ctx, "/api/v1/rules", &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// Rule fetches one filter by name, e.g. "ro5".
func (c *Client) Rule(ctx context.Context, name string) (*dto.Rule, error) {
	if name == "" {
		return nil, errors.InvalidParam("rule name is required")
	}
	var rule dto.Rule
	if err := c.get(ctx, "/api/v1/rules/"+url.PathEscape(name), &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Screen applies rule with the given cutoffs.  Descriptors missing from req
// take the rule's defaults.
func (c *Client) Screen(ctx context.Context, rule string, req dto.ScreenRequest) (*dto.View, error) {
	if rule == "" {
		return nil, errors.InvalidParam("rule name is required")
	}
	if req.Cutoffs == nil {
		req.Cutoffs = map[string]float64{}
	}
	var view dto.View
	if err := c.post(ctx, "/api/v1/screen/"+url.PathEscape(rule), req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// DashboardRequest holds per-rule cutoffs keyed by rule name.
type DashboardRequest struct {
	Cutoffs     map[string]map[string]float64
	IncludeGrid bool
}

// Query encodes r as "<rule>.<descriptor>" query parameters.
func (r DashboardRequest) Query() url.Values {
	q := url.Values{}
	rules := make([]string, 0, len(r.Cutoffs))
	for name := range r.Cutoffs {
		rules = append(rules, name)
	}
	sort.Strings(rules)
	for _, name := range rules {
		for kind, v := range r.Cutoffs[name] {
			q.Set(name+"."+kind, strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	if r.IncludeGrid {
		q.Set("grid", "true")
	}
	return q
}

// Dashboard renders every rule's view in one call.
func (c *Client) Dashboard(ctx context.Context, req DashboardRequest) (*dto.Dashboard, error) {
	path := "/api/v1/dashboard"
	if q := req.Query().Encode(); q != "" {
		path += "?" + q
	}
	var dash dto.Dashboard
	if err := c.get(ctx, path, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// Dataset fetches the full annotated table.
func (c *Client) Dataset(ctx context.Context) (*dto.AnnotatedDataset, error) {
	var ds dto.AnnotatedDataset
	if err := c.get(ctx, "/api/v1/dataset", &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
