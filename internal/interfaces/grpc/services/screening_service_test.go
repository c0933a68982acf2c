package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/pkg/errors"
	dto "github.com/turtacn/druglike/pkg/types/screening"
)

type mockApp struct {
	mock.Mock
}

func (m *mockApp) Rules() []*screening.Rule {
	return []*screening.Rule{screening.RuleOfFive(), screening.RuleOfThree()}
}

func (m *mockApp) Rule(name screening.RuleName) (*screening.Rule, error) {
	switch name {
	case screening.RuleFive:
		return screening.RuleOfFive(), nil
	case screening.RuleThree:
		return screening.RuleOfThree(), nil
	}
	return nil, errors.New(errors.ErrCodeUnknownRule, "unknown rule")
}

func (m *mockApp) Annotated(ctx context.Context) (*compound.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*compound.Dataset)
	return ds, args.Error(1)
}

func (m *mockApp) Screen(ctx context.Context, name screening.RuleName, c screening.Cutoffs) (*screening.View, error) {
	args := m.Called(ctx, name, c)
	v, _ := args.Get(0).(*screening.View)
	return v, args.Error(1)
}

func (m *mockApp) Dashboard(ctx context.Context, req screening.Request) ([]*screening.View, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).([]*screening.View)
	return v, args.Error(1)
}

func annotatedDataset() *compound.Dataset {
	ds := compound.New([]string{compound.ColumnName, compound.ColumnSMILES}, []compound.Record{
		{Name: "ethanol", SMILES: "CCO", Fields: map[string]string{compound.ColumnName: "ethanol", compound.ColumnSMILES: "CCO"},
			Descriptors: molecule.Descriptors{MolWt: 46.04, LogP: -0.0014, HBondDonors: 1, HBondAcceptors: 1}},
		{Name: "broken", SMILES: "C1CC", Fields: map[string]string{compound.ColumnName: "broken", compound.ColumnSMILES: "C1CC"},
			Descriptors: molecule.Missing(), ParseError: errors.New(errors.ErrCodeUnclosedRing, "unclosed ring bond")},
	})
	ds.Annotated = true
	return ds
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	st, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return st
}

func TestScreeningService_Screen(t *testing.T) {
	app := new(mockApp)
	want := screening.Cutoffs{molecule.KindMolWt: 100}
	view, err := screening.RuleOfFive().Apply(annotatedDataset(), want)
	require.NoError(t, err)
	app.On("Screen", mock.Anything, screening.RuleFive, want).Return(view, nil)

	svc := NewScreeningService(app, "https://img.test/{{smiles}}", nil)
	out, err := svc.Screen(context.Background(), mustStruct(t, map[string]any{
		"rule":         "lipinski",
		"cutoffs":      map[string]any{"mw": 100},
		"include_grid": true,
	}))
	require.NoError(t, err)

	var v dto.View
	require.NoError(t, FromStruct(out, &v))
	assert.Equal(t, "ro5", v.Rule)
	require.Len(t, v.Compounds, 1)
	assert.Equal(t, "ethanol", v.Compounds[0].Name)
	require.NotNil(t, v.Grid)
	assert.Equal(t, "https://img.test/CCO", v.Grid.Cells[0].Image)
	app.AssertExpectations(t)
}

func TestScreeningService_ScreenInvalidInput(t *testing.T) {
	svc := NewScreeningService(new(mockApp), "", nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{"unknown rule", map[string]any{"rule": "ro4"}, codes.NotFound},
		{"cutoffs not an object", map[string]any{"rule": "ro5", "cutoffs": "MW<500"}, codes.InvalidArgument},
		{"cutoff not a number", map[string]any{"rule": "ro5", "cutoffs": map[string]any{"MW": "500"}}, codes.InvalidArgument},
		{"unknown descriptor", map[string]any{"rule": "ro5", "cutoffs": map[string]any{"TPSA": 90}}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Screen(ctx, mustStruct(t, tt.req))
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestScreeningService_Dashboard(t *testing.T) {
	app := new(mockApp)
	ds := annotatedDataset()
	ro5, err := screening.RuleOfFive().Apply(ds, nil)
	require.NoError(t, err)
	ro3, err := screening.RuleOfThree().Apply(ds, screening.Cutoffs{molecule.KindLogP: 1})
	require.NoError(t, err)
	app.On("Dashboard", mock.Anything, screening.Request{
		screening.RuleThree: {molecule.KindLogP: 1},
	}).Return([]*screening.View{ro5, ro3}, nil)

	svc := NewScreeningService(app, "", nil)
	out, err := svc.Dashboard(context.Background(), mustStruct(t, map[string]any{
		"cutoffs": map[string]any{"ro3": map[string]any{"LogP": 1}},
	}))
	require.NoError(t, err)

	var d dto.Dashboard
	require.NoError(t, FromStruct(out, &d))
	require.Len(t, d.Views, 2)
	assert.Equal(t, float64(1), d.Views[1].Cutoffs["LogP"])
	assert.Nil(t, d.Views[0].Grid)

	_, err = svc.Dashboard(context.Background(), mustStruct(t, map[string]any{
		"cutoffs": map[string]any{"ro7": map[string]any{}},
	}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestScreeningService_Dataset(t *testing.T) {
	app := new(mockApp)
	app.On("Annotated", mock.Anything).Return(annotatedDataset(), nil).Once()
	app.On("Annotated", mock.Anything).Return(nil, errors.New(errors.ErrCodeDatasetFetchFailed, "GET failed")).Once()
	svc := NewScreeningService(app, "", nil)

	out, err := svc.Dataset(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	var ds dto.AnnotatedDataset
	require.NoError(t, FromStruct(out, &ds))
	assert.Equal(t, [2]int{2, 7}, ds.Shape)
	assert.Nil(t, ds.Compounds[1].Descriptors.MW)
	assert.NotEmpty(t, ds.Compounds[1].ParseError)

	_, err = svc.Dataset(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestScreeningService_Rules(t *testing.T) {
	svc := NewScreeningService(new(mockApp), "", nil)
	out, err := svc.ListRules(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Len(t, out.Fields["rules"].GetListValue().GetValues(), 2)

	out, err = svc.GetRule(context.Background(), mustStruct(t, map[string]any{"rule": "ro3"}))
	require.NoError(t, err)
	assert.Equal(t, "ro3", out.Fields["name"].GetStringValue())
	assert.Len(t, out.Fields["sliders"].GetListValue().GetValues(), 5)
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, ToStatus(nil, nil))

	err := ToStatus(errors.New(errors.ErrCodeCutoffOutOfRange, "cutoff out of range").WithDetail("MW=5000"), nil)
	st := status.Convert(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "[SCREEN_001] cutoff out of range: MW=5000", st.Message())

	already := status.Error(codes.Aborted, "x")
	assert.Equal(t, already, ToStatus(already, nil))

	assert.Equal(t, codes.Internal, status.Code(ToStatus(assert.AnError, nil)))
}

func TestToStruct_RejectsNonObjects(t *testing.T) {
	_, err := ToStruct([]int{1, 2})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}
