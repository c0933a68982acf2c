package screening

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/pkg/errors"
)

// RuleName identifies one of the threshold filter instantiations.
type RuleName string

const (
	RuleFive  RuleName = "ro5"
	RuleThree RuleName = "ro3"
)

// ParseRuleName accepts the short names and a few common spellings.
func ParseRuleName(s string) (RuleName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ro5", "rule-of-five", "rule_of_five", "lipinski", "five", "5":
		return RuleFive, nil
	case "ro3", "rule-of-three", "rule_of_three", "leadlike", "three", "3":
		return RuleThree, nil
	}
	return "", errors.New(errors.ErrCodeUnknownRule, "unknown rule").WithDetail(fmt.Sprintf("rule=%q", s))
}

// ParseKind resolves a descriptor name given on a query string, flag or
// config key.  Full names match case-insensitively; mw, logp, hbd, hba and
// rotb are accepted as short forms.
func ParseKind(s string) (molecule.Kind, error) {
	name := strings.TrimSpace(s)
	switch strings.ToLower(name) {
	case "mw", "molwt":
		return molecule.KindMolWt, nil
	case "logp":
		return molecule.KindLogP, nil
	case "hbd", "numhdonors":
		return molecule.KindHBondDonors, nil
	case "hba", "numhacceptors":
		return molecule.KindHBondAcceptors, nil
	case "rotb", "numrotatablebonds":
		return molecule.KindRotatableBonds, nil
	}
	return "", errors.New(errors.ErrCodeUnknownDescriptor, "unknown descriptor").WithDetail(fmt.Sprintf("descriptor=%q", s))
}

// Range bounds one slider.  Every cutoff the user can pick lies in
// [Min, Max]; Step is the slider increment.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min && v <= r.Max
}

// Ranges are shared by both rules.
var Ranges = map[molecule.Kind]Range{
	molecule.KindMolWt:          {Min: 0, Max: 1000, Step: 10},
	molecule.KindLogP:           {Min: -10, Max: 10, Step: 1},
	molecule.KindHBondDonors:    {Min: 0, Max: 15, Step: 1},
	molecule.KindHBondAcceptors: {Min: 0, Max: 20, Step: 1},
	molecule.KindRotatableBonds: {Min: 0, Max: 20, Step: 1},
}

// Labels are the slider captions.
var Labels = map[molecule.Kind]string{
	molecule.KindMolWt:          "Molecular weight",
	molecule.KindLogP:           "LogP",
	molecule.KindHBondDonors:    "NumHDonors",
	molecule.KindHBondAcceptors: "NumHAcceptors",
	molecule.KindRotatableBonds: "NumRotatableBonds",
}

// Cutoffs maps a descriptor kind to its exclusive upper bound.
type Cutoffs map[molecule.Kind]float64

// Clone returns an independent copy.
func (c Cutoffs) Clone() Cutoffs {
	out := make(Cutoffs, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Kinds returns the configured kinds in the fixed filter order.
func (c Cutoffs) Kinds() []molecule.Kind {
	kinds := make([]molecule.Kind, 0, len(c))
	for _, k := range molecule.Kinds {
		if _, ok := c[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// String renders the cutoffs in filter order, e.g. "MW<500 LogP<5".
func (c Cutoffs) String() string {
	parts := make([]string, 0, len(c))
	for _, k := range c.Kinds() {
		parts = append(parts, fmt.Sprintf("%s<%g", k, c[k]))
	}
	return strings.Join(parts, " ")
}

// Rule is one filter instantiation: the descriptors it thresholds, their
// defaults, and the columns shown in its grid.
type Rule struct {
	Name        RuleName
	Title       string
	Description string
	Kinds       []molecule.Kind
	Defaults    Cutoffs
}

// RuleOfFive is Lipinski's drug-likeness rule.
func RuleOfFive() *Rule {
	return &Rule{
		Name:        RuleFive,
		Title:       "Filter FDA Approved Drugs by Lipinski's Rule-of-Five",
		Description: "Display compounds having values less than the following thresholds.",
		Kinds: []molecule.Kind{
			molecule.KindMolWt, molecule.KindLogP,
			molecule.KindHBondDonors, molecule.KindHBondAcceptors,
		},
		Defaults: Cutoffs{
			molecule.KindMolWt:          500,
			molecule.KindLogP:           5,
			molecule.KindHBondDonors:    5,
			molecule.KindHBondAcceptors: 10,
		},
	}
}

// RuleOfThree is the lead-likeness rule, which adds rotatable bonds.
func RuleOfThree() *Rule {
	return &Rule{
		Name:  RuleThree,
		Title: "Rule of three (RO3) for defining lead-like compounds",
		Description: "Screening libraries biased toward lower molecular weight and lipophilicity " +
			"leave room to optimise hits into drug-like candidates.",
		Kinds: []molecule.Kind{
			molecule.KindMolWt, molecule.KindLogP,
			molecule.KindHBondDonors, molecule.KindHBondAcceptors,
			molecule.KindRotatableBonds,
		},
		Defaults: Cutoffs{
			molecule.KindMolWt:          300,
			molecule.KindLogP:           3,
			molecule.KindHBondDonors:    3,
			molecule.KindHBondAcceptors: 3,
			molecule.KindRotatableBonds: 3,
		},
	}
}

// Uses reports whether the rule thresholds kind k.
func (r *Rule) Uses(k molecule.Kind) bool {
	for _, kk := range r.Kinds {
		if kk == k {
			return true
		}
	}
	return false
}

// Validate rejects kinds the rule does not use and values outside the
// slider ranges.
func (r *Rule) Validate(c Cutoffs) error {
	kinds := make([]string, 0, len(c))
	for k := range c {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, name := range kinds {
		k := molecule.Kind(name)
		if !r.Uses(k) {
			return errors.New(errors.ErrCodeUnknownDescriptor, "descriptor not used by rule").
				WithDetail(fmt.Sprintf("rule=%s descriptor=%s", r.Name, k))
		}
		rng := Ranges[k]
		if !rng.Contains(c[k]) {
			return errors.New(errors.ErrCodeCutoffOutOfRange, "cutoff out of range").
				WithDetail(fmt.Sprintf("%s=%g allowed=[%g, %g]", k, c[k], rng.Min, rng.Max))
		}
	}
	return nil
}

// Resolve validates overrides and fills every unset kind from the defaults.
func (r *Rule) Resolve(overrides Cutoffs) (Cutoffs, error) {
	if err := r.Validate(overrides); err != nil {
		return nil, err
	}
	out := r.Defaults.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out, nil
}

// WithDefaults returns a copy of r whose defaults are replaced by the given
// values.  Used to apply configured defaults at startup.
func (r *Rule) WithDefaults(defaults Cutoffs) (*Rule, error) {
	resolved, err := r.Resolve(defaults)
	if err != nil {
		return nil, err
	}
	cp := *r
	cp.Kinds = append([]molecule.Kind(nil), r.Kinds...)
	cp.Defaults = resolved
	return &cp, nil
}

// GridColumns is the grid column subset: the image, the name, then the
// rule's descriptors.
func (r *Rule) GridColumns() []string {
	cols := []string{ColumnImage, ColumnDisplayName}
	for _, k := range r.Kinds {
		cols = append(cols, string(k))
	}
	return cols
}
