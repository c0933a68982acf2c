package compound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/druglike/internal/domain/molecule"
)

func sample() *Dataset {
	return New([]string{ColumnName, ColumnSMILES, "category"}, []Record{
		{Name: "ethanol", SMILES: "CCO", Fields: map[string]string{ColumnName: "ethanol", ColumnSMILES: "CCO", "category": "solvent"}},
		{Name: "benzene", SMILES: "c1ccccc1", Fields: map[string]string{ColumnName: "benzene", ColumnSMILES: "c1ccccc1", "category": "solvent"}},
	})
}

func TestNew_IndexesByPosition(t *testing.T) {
	ds := sample()
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 0, ds.Records[0].Index)
	assert.Equal(t, 1, ds.Records[1].Index)
}

func TestDataset_CloneIsIndependent(t *testing.T) {
	ds := sample()
	cp := ds.Clone()

	cp.Records[0].Fields["category"] = "changed"
	cp.Records[0].Name = "changed"
	cp.Records[1].Descriptors.MolWt = 1
	cp.Columns[2] = "changed"
	cp.Annotated = true

	assert.Equal(t, "solvent", ds.Records[0].Fields["category"])
	assert.Equal(t, "ethanol", ds.Records[0].Name)
	assert.Equal(t, 0.0, ds.Records[1].Descriptors.MolWt)
	assert.Equal(t, "category", ds.Columns[2])
	assert.False(t, ds.Annotated)
}

func TestDataset_CloneNil(t *testing.T) {
	var ds *Dataset
	assert.Nil(t, ds.Clone())
	assert.Equal(t, 0, ds.Len())
}

func TestDataset_AllColumns(t *testing.T) {
	ds := sample()
	assert.Equal(t, []string{ColumnName, ColumnSMILES, "category"}, ds.AllColumns())

	ds.Annotated = true
	assert.Equal(t, []string{ColumnName, ColumnSMILES, "category",
		"MW", "LogP", "NumHDonors", "NumHAcceptors", "NumRotatableBonds"}, ds.AllColumns())
}

func TestDataset_SubsetKeepsIndexes(t *testing.T) {
	ds := sample()
	sub := ds.Subset([]int{1})
	require.Equal(t, 1, sub.Len())
	assert.Equal(t, 1, sub.Records[0].Index)
	assert.Equal(t, "benzene", sub.Records[0].Name)

	sub.Records[0].Fields["category"] = "x"
	assert.Equal(t, "solvent", ds.Records[1].Fields["category"])
}

func TestRecord_Valid(t *testing.T) {
	r := Record{Descriptors: molecule.Descriptors{MolWt: 46}}
	assert.True(t, r.Valid())
	assert.Equal(t, 46.0, r.Descriptor(molecule.KindMolWt))

	r = Record{Descriptors: molecule.Missing()}
	assert.False(t, r.Valid())
}
