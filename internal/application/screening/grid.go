package screening

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/domain/molecule"
)

// Grid column names after renaming.
const (
	ColumnImage       = "img"
	ColumnDisplayName = "Name"
	ColumnDisplaySMI  = "SMILES"
)

// DefaultImageTemplate renders a depiction through the CDK depict service.
const DefaultImageTemplate = "https://www.simolecule.com/cdkdepict/depict/bow/svg?smi={{smiles}}"

// Mapping renames source columns for display in the grid.
var Mapping = map[string]string{
	compound.ColumnSMILES: ColumnDisplaySMI,
	compound.ColumnName:   ColumnDisplayName,
}

// ImageURL expands tmpl for one SMILES.  The placeholder {{smiles}} is
// replaced by the query-escaped string.
func ImageURL(tmpl, smiles string) string {
	if tmpl == "" {
		tmpl = DefaultImageTemplate
	}
	return strings.ReplaceAll(tmpl, "{{smiles}}", url.QueryEscape(smiles))
}

// GridCell is one molecule tile.
type GridCell struct {
	SMILES string
	Image  string
	// Values follows Grid.Columns, excluding the image column.
	Values []string
}

// Grid is the renderable molecule grid of a view.
type Grid struct {
	Columns []string
	Cells   []GridCell
}

// BuildGrid renders v as a grid keyed by SMILES with the view's column
// subset.  Columns are looked up by their display name through Mapping.
func BuildGrid(v *View, imageTemplate string) Grid {
	reverse := make(map[string]string, len(Mapping))
	for src, dst := range Mapping {
		reverse[dst] = src
	}

	g := Grid{Columns: v.GridColumns, Cells: make([]GridCell, 0, v.Data.Len())}
	for i := range v.Data.Records {
		rec := &v.Data.Records[i]
		cell := GridCell{SMILES: rec.SMILES, Image: ImageURL(imageTemplate, rec.SMILES)}
		for _, col := range v.GridColumns {
			if col == ColumnImage {
				continue
			}
			src := col
			if s, ok := reverse[col]; ok {
				src = s
			}
			cell.Values = append(cell.Values, CellValue(rec, src))
		}
		g.Cells = append(g.Cells, cell)
	}
	return g
}

// CellValue formats one column of rec.  Descriptor columns are formatted
// numerically; everything else comes from the raw fields.
func CellValue(rec *compound.Record, column string) string {
	k := molecule.Kind(column)
	if v, ok := rec.Descriptors.Get(k); ok {
		return FormatDescriptor(k, v)
	}
	return rec.Value(column)
}

// FormatDescriptor renders a descriptor value.  Counts print as integers,
// MW and LogP with up to four decimals, and missing values as "NaN".
func FormatDescriptor(k molecule.Kind, v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	switch k {
	case molecule.KindMolWt, molecule.KindLogP:
		return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// Table returns the header and string rows of v's full table.
func Table(v *View) ([]string, [][]string) {
	return DatasetTable(v.Data)
}

// DatasetTable returns the header and string rows of ds.
func DatasetTable(ds *compound.Dataset) ([]string, [][]string) {
	header := ds.AllColumns()
	rows := make([][]string, 0, ds.Len())
	for i := range ds.Records {
		rec := &ds.Records[i]
		row := make([]string, len(header))
		for j, col := range header {
			row[j] = CellValue(rec, col)
		}
		rows = append(rows, row)
	}
	return header, rows
}
