package screening

import (
	"math"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/domain/molecule"
	dto "github.com/turtacn/druglike/pkg/types/screening"
)

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// CompoundDTO converts a record to its wire form.
func CompoundDTO(rec *compound.Record, annotated bool) dto.Compound {
	out := dto.Compound{
		Index:  rec.Index,
		Name:   rec.Name,
		SMILES: rec.SMILES,
		Fields: rec.Fields,
	}
	if annotated {
		d := rec.Descriptors
		out.Descriptors = &dto.Descriptors{
			MW:                optional(d.MolWt),
			LogP:              optional(d.LogP),
			NumHDonors:        optional(d.HBondDonors),
			NumHAcceptors:     optional(d.HBondAcceptors),
			NumRotatableBonds: optional(d.RotatableBonds),
		}
	}
	if rec.ParseError != nil {
		out.ParseError = rec.ParseError.Error()
	}
	return out
}

// DatasetDTO converts an annotated dataset.
func DatasetDTO(ds *compound.Dataset) dto.AnnotatedDataset {
	cols := ds.AllColumns()
	out := dto.AnnotatedDataset{
		Shape:     [2]int{ds.Len(), len(cols)},
		Columns:   cols,
		Compounds: make([]dto.Compound, 0, ds.Len()),
	}
	for i := range ds.Records {
		out.Compounds = append(out.Compounds, CompoundDTO(&ds.Records[i], ds.Annotated))
	}
	return out
}

// ViewDTO converts a view.  imageTemplate is used only when withGrid is set.
func ViewDTO(v *View, withGrid bool, imageTemplate string) dto.View {
	rows, cols := v.Shape()
	out := dto.View{
		Rule:      string(v.Rule),
		Title:     v.Title,
		Cutoffs:   make(map[string]float64, len(v.Cutoffs)),
		Shape:     [2]int{rows, cols},
		Steps:     make([]dto.Step, 0, len(v.Steps)),
		Columns:   v.Data.AllColumns(),
		Compounds: make([]dto.Compound, 0, rows),
	}
	for k, b := range v.Cutoffs {
		out.Cutoffs[string(k)] = b
	}
	for _, s := range v.Steps {
		out.Steps = append(out.Steps, dto.Step{Kind: string(s.Kind), Bound: s.Bound, Remaining: s.Remaining})
	}
	for i := range v.Data.Records {
		out.Compounds = append(out.Compounds, CompoundDTO(&v.Data.Records[i], v.Data.Annotated))
	}
	if withGrid {
		g := BuildGrid(v, imageTemplate)
		wire := &dto.Grid{Columns: g.Columns, Cells: make([]dto.GridCell, 0, len(g.Cells))}
		for _, c := range g.Cells {
			wire.Cells = append(wire.Cells, dto.GridCell{SMILES: c.SMILES, Image: c.Image, Values: c.Values})
		}
		out.Grid = wire
	}
	return out
}

// RuleDTO describes a rule and its sliders.
func RuleDTO(r *Rule) dto.Rule {
	out := dto.Rule{
		Name:        string(r.Name),
		Title:       r.Title,
		Description: r.Description,
		Sliders:     make([]dto.Slider, 0, len(r.Kinds)),
		GridColumns: r.GridColumns(),
	}
	for _, k := range r.Kinds {
		rng := Ranges[k]
		out.Sliders = append(out.Sliders, dto.Slider{
			Kind:    string(k),
			Label:   Labels[k],
			Min:     rng.Min,
			Max:     rng.Max,
			Step:    rng.Step,
			Default: r.Defaults[k],
		})
	}
	return out
}

// CutoffsFromMap converts wire cutoffs.  Unknown descriptor names are
// rejected by Rule.Validate later, so they are carried through as-is.
func CutoffsFromMap(m map[string]float64) Cutoffs {
	out := make(Cutoffs, len(m))
	for k, v := range m {
		out[molecule.Kind(k)] = v
	}
	return out
}
