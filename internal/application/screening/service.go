// Package screening is the drug-likeness pipeline: load the dataset once,
// annotate every compound with its descriptors, and derive the Rule of Five
// and Rule of Three views from user supplied cutoffs.  Each call runs the
// pipeline from the cached dataset forward and holds no per-user state.
package screening

import (
	"context"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/errors"
)

// Service runs Loader → Annotator → Filter.
type Service struct {
	loader    *DatasetCache
	annotator *Annotator
	rules     map[RuleName]*Rule
	logger    logging.Logger
	metrics   Metrics
}

// NewService wires the pipeline.  rules defaults to Rule of Five and Rule of
// Three when empty.
func NewService(loader *DatasetCache, annotator *Annotator, logger logging.Logger, metrics Metrics, rules ...*Rule) *Service {
	if len(rules) == 0 {
		rules = []*Rule{RuleOfFive(), RuleOfThree()}
	}
	s := &Service{
		loader:    loader,
		annotator: annotator,
		rules:     make(map[RuleName]*Rule, len(rules)),
		logger:    logging.OrNop(logger),
		metrics:   orNopMetrics(metrics),
	}
	for _, r := range rules {
		s.rules[r.Name] = r
	}
	return s
}

// Rules returns the configured rules in display order.
func (s *Service) Rules() []*Rule {
	out := make([]*Rule, 0, len(s.rules))
	for _, name := range []RuleName{RuleFive, RuleThree} {
		if r, ok := s.rules[name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Rule looks up a rule by name.
func (s *Service) Rule(name RuleName) (*Rule, error) {
	r, ok := s.rules[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownRule, "unknown rule").WithDetail("rule=" + string(name))
	}
	return r, nil
}

// Ready reports whether the dataset has been loaded.
func (s *Service) Ready() bool {
	return s.loader.Loaded()
}

// Annotated loads the dataset and returns an annotated copy.
func (s *Service) Annotated(ctx context.Context) (*compound.Dataset, error) {
	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.annotator.Annotate(ctx, ds)
}

// Screen produces one rule's view.  Cutoffs not given take the rule defaults.
func (s *Service) Screen(ctx context.Context, name RuleName, overrides Cutoffs) (*View, error) {
	rule, err := s.Rule(name)
	if err != nil {
		return nil, err
	}
	if err := rule.Validate(overrides); err != nil {
		return nil, err
	}
	ds, err := s.Annotated(ctx)
	if err != nil {
		return nil, err
	}
	return s.apply(rule, ds, overrides)
}

// Request carries the independent cutoff panels of one dashboard render.
type Request map[RuleName]Cutoffs

// Dashboard produces a view for every configured rule from a single
// annotation pass.  Each rule only sees its own cutoffs.
func (s *Service) Dashboard(ctx context.Context, req Request) ([]*View, error) {
	rules := s.Rules()
	for name, c := range req {
		rule, err := s.Rule(name)
		if err != nil {
			return nil, err
		}
		if err := rule.Validate(c); err != nil {
			return nil, err
		}
	}
	ds, err := s.Annotated(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*View, 0, len(rules))
	for _, rule := range rules {
		v, err := s.apply(rule, ds, req[rule.Name])
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) apply(rule *Rule, ds *compound.Dataset, overrides Cutoffs) (*View, error) {
	v, err := rule.Apply(ds, overrides)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveFilter(string(rule.Name), ds.Len(), v.Data.Len())
	s.logger.Debug("view filtered",
		logging.String("rule", string(rule.Name)),
		logging.String("cutoffs", v.Cutoffs.String()),
		logging.Int("in", ds.Len()),
		logging.Int("out", v.Data.Len()))
	return v, nil
}
