package screening

import (
	"fmt"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/domain/molecule"
)

// Step records the surviving row count after one descriptor was applied.
type Step struct {
	Kind      molecule.Kind `json:"kind"`
	Bound     float64       `json:"bound"`
	Remaining int           `json:"remaining"`
}

// View is a filtered subset of an annotated dataset.  Views are derived,
// never mutated in place.
type View struct {
	Rule    RuleName
	Title   string
	Cutoffs Cutoffs
	Steps   []Step
	Data    *compound.Dataset

	// GridColumns is the grid column subset for the rule, after renaming.
	GridColumns []string
}

// Shape returns (rows, columns) of the view's table.
func (v *View) Shape() (int, int) {
	return v.Data.Len(), len(v.Data.AllColumns())
}

// ShapeString renders the shape as "(rows, columns)".
func (v *View) ShapeString() string {
	rows, cols := v.Shape()
	return fmt.Sprintf("(%d, %d)", rows, cols)
}

// Filter keeps the rows whose value is strictly less than the bound for
// every descriptor in cutoffs.  Descriptors are applied in the fixed order
// MW, LogP, NumHDonors, NumHAcceptors, NumRotatableBonds and the count after
// each one is recorded.  A NaN descriptor never passes.  The input dataset
// is not modified.
func Filter(ds *compound.Dataset, cutoffs Cutoffs) *View {
	positions := make([]int, ds.Len())
	for i := range positions {
		positions[i] = i
	}

	steps := make([]Step, 0, len(cutoffs))
	for _, k := range cutoffs.Kinds() {
		bound := cutoffs[k]
		kept := make([]int, 0, len(positions))
		for _, p := range positions {
			if ds.Records[p].Descriptor(k) < bound {
				kept = append(kept, p)
			}
		}
		positions = kept
		steps = append(steps, Step{Kind: k, Bound: bound, Remaining: len(positions)})
	}

	return &View{
		Cutoffs: cutoffs.Clone(),
		Steps:   steps,
		Data:    ds.Subset(positions),
	}
}

// Apply filters ds with the rule's resolved cutoffs and labels the view.
func (r *Rule) Apply(ds *compound.Dataset, overrides Cutoffs) (*View, error) {
	cutoffs, err := r.Resolve(overrides)
	if err != nil {
		return nil, err
	}
	v := Filter(ds, cutoffs)
	v.Rule = r.Name
	v.Title = r.Title
	v.GridColumns = r.GridColumns()
	return v, nil
}
