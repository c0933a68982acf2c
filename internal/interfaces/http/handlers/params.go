package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/pkg/errors"
)

// reservedParams are query keys that never name a descriptor.
var reservedParams = map[string]bool{
	"grid":   true,
	"format": true,
}

// parseCutoffs reads descriptor cutoffs from query values.  With an empty
// prefix every key is a descriptor name ("MW=400"); otherwise only keys of
// the form "<prefix>.<descriptor>" are read and the rest ignored.  Empty
// values leave the default in place.
func parseCutoffs(values url.Values, prefix string) (screening.Cutoffs, error) {
	out := screening.Cutoffs{}
	for key, vals := range values {
		name := key
		if prefix != "" {
			p := prefix + "."
			if !strings.HasPrefix(key, p) {
				continue
			}
			name = strings.TrimPrefix(key, p)
		} else if reservedParams[strings.ToLower(key)] {
			continue
		}
		if len(vals) == 0 || strings.TrimSpace(vals[len(vals)-1]) == "" {
			continue
		}

		kind, err := screening.ParseKind(name)
		if err != nil {
			return nil, err
		}
		raw := strings.TrimSpace(vals[len(vals)-1])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeBadRequest, "cutoff is not a number").
				WithDetail(fmt.Sprintf("%s=%q", key, raw))
		}
		out[kind] = v
	}
	return out, nil
}

// parseDashboardRequest reads one cutoff panel per rule, each under the
// rule's name as prefix ("ro5.MW=450&ro3.LogP=2").
func parseDashboardRequest(values url.Values, rules []*screening.Rule) (screening.Request, error) {
	req := make(screening.Request, len(rules))
	for _, r := range rules {
		c, err := parseCutoffs(values, string(r.Name))
		if err != nil {
			return nil, err
		}
		if len(c) > 0 {
			req[r.Name] = c
		}
	}
	return req, nil
}

// boolParam treats "1", "true", "yes" and "on" as true.
func boolParam(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
