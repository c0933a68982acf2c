// Package screening defines the wire types of the screening API shared by the
// HTTP and gRPC surfaces and the CLI's JSON output.  No logic lives here.
package screening

// Descriptors carries the five descriptor values.  A nil pointer stands for
// a value that could not be computed, since JSON has no NaN.
type Descriptors struct {
	MW                *float64 `json:"MW"`
	LogP              *float64 `json:"LogP"`
	NumHDonors        *float64 `json:"NumHDonors"`
	NumHAcceptors     *float64 `json:"NumHAcceptors"`
	NumRotatableBonds *float64 `json:"NumRotatableBonds"`
}

// Compound is one dataset row.
type Compound struct {
	Index       int               `json:"index"`
	Name        string            `json:"name"`
	SMILES      string            `json:"smiles"`
	Fields      map[string]string `json:"fields,omitempty"`
	Descriptors *Descriptors      `json:"descriptors,omitempty"`
	ParseError  string            `json:"parse_error,omitempty"`
}

// Slider describes one cutoff control.
type Slider struct {
	Kind    string  `json:"kind"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Rule describes one filter instantiation.
type Rule struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Sliders     []Slider `json:"sliders"`
	GridColumns []string `json:"grid_columns"`
}

// Step is the surviving row count after one descriptor was applied.
type Step struct {
	Kind      string  `json:"kind"`
	Bound     float64 `json:"bound"`
	Remaining int     `json:"remaining"`
}

// GridCell is one molecule tile.
type GridCell struct {
	SMILES string   `json:"smiles"`
	Image  string   `json:"image"`
	Values []string `json:"values"`
}

// Grid is the molecule image grid of a view.
type Grid struct {
	Columns []string   `json:"columns"`
	Cells   []GridCell `json:"cells"`
}

// View is one filtered view.
type View struct {
	Rule      string             `json:"rule"`
	Title     string             `json:"title"`
	Cutoffs   map[string]float64 `json:"cutoffs"`
	Shape     [2]int             `json:"shape"`
	Steps     []Step             `json:"steps"`
	Columns   []string           `json:"columns"`
	Compounds []Compound         `json:"compounds"`
	Grid      *Grid              `json:"grid,omitempty"`
}

// Dashboard holds every view of one render.
type Dashboard struct {
	Views []View `json:"views"`
}

// AnnotatedDataset is the full annotated table.
type AnnotatedDataset struct {
	Shape     [2]int     `json:"shape"`
	Columns   []string   `json:"columns"`
	Compounds []Compound `json:"compounds"`
}

// ScreenRequest is the body of POST /api/v1/screen/{rule}.
type ScreenRequest struct {
	Cutoffs     map[string]float64 `json:"cutoffs"`
	IncludeGrid bool               `json:"include_grid"`
}
