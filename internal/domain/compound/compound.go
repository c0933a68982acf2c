// Package compound models the screening dataset: an ordered table of drug
// compounds loaded from a delimited source and, once annotated, carrying the
// five molecular descriptors used by the drug-likeness filters.
package compound

import (
	"github.com/turtacn/druglike/internal/domain/molecule"
)

// Source column names the rest of the system relies on.
const (
	ColumnName   = "generic_name"
	ColumnSMILES = "smiles"
)

// RequiredColumns must be present in every dataset header.
var RequiredColumns = []string{ColumnName, ColumnSMILES}

// Record is one row of the dataset.  Identity is the row position (Index)
// in the loaded table.
type Record struct {
	Index  int
	Name   string
	SMILES string

	// Fields holds every raw column of the source row keyed by header,
	// including generic_name and smiles.
	Fields map[string]string

	// Descriptors is populated by annotation.  When ParseError is set every
	// value is NaN.
	Descriptors molecule.Descriptors
	ParseError  error
}

// Valid reports whether the record has usable descriptors.
func (r *Record) Valid() bool {
	return r.ParseError == nil && !r.Descriptors.IsMissing()
}

// Value returns the column value as a display string.  Descriptor columns
// are reported numerically by Descriptor instead.
func (r *Record) Value(column string) string {
	return r.Fields[column]
}

// Descriptor returns the annotated value for kind k.
func (r *Record) Descriptor(k molecule.Kind) float64 {
	v, _ := r.Descriptors.Get(k)
	return v
}

func (r Record) clone() Record {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

// Dataset is an ordered collection of records plus the source header.
type Dataset struct {
	Columns   []string
	Records   []Record
	Annotated bool
}

// New builds an unannotated dataset.  Records are re-indexed by position.
func New(columns []string, records []Record) *Dataset {
	for i := range records {
		records[i].Index = i
	}
	return &Dataset{Columns: columns, Records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// AllColumns returns the source header followed by the descriptor columns
// when the dataset has been annotated.
func (d *Dataset) AllColumns() []string {
	cols := make([]string, 0, len(d.Columns)+len(molecule.Kinds))
	cols = append(cols, d.Columns...)
	if d.Annotated {
		for _, k := range molecule.Kinds {
			cols = append(cols, string(k))
		}
	}
	return cols
}

// Clone returns a deep copy.  Mutating the copy never affects d.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		Columns:   append([]string(nil), d.Columns...),
		Records:   make([]Record, len(d.Records)),
		Annotated: d.Annotated,
	}
	for i, r := range d.Records {
		out.Records[i] = r.clone()
	}
	return out
}

// Subset returns a new dataset holding copies of the records at the given
// positions, in the given order.  Record indexes are preserved so rows
// remain traceable to the full table.
func (d *Dataset) Subset(positions []int) *Dataset {
	out := &Dataset{
		Columns:   append([]string(nil), d.Columns...),
		Records:   make([]Record, 0, len(positions)),
		Annotated: d.Annotated,
	}
	for _, p := range positions {
		out.Records = append(out.Records, d.Records[p].clone())
	}
	return out
}
