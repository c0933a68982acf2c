package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/internal/interfaces/http/middleware"
	dto "github.com/turtacn/druglike/pkg/types/screening"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticSource struct {
	ds  *compound.Dataset
	err error
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Fetch(context.Context) (*compound.Dataset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ds.Clone(), nil
}

func testDataset() *compound.Dataset {
	rows := [][2]string{
		{"ethanol", "CCO"},
		{"aspirin", "CC(=O)Oc1ccccc1C(=O)O"},
		{"benzene", "c1ccccc1"},
		{"paracetamol", "CC(=O)Nc1ccc(O)cc1"},
		{"ibuprofen", "CC(C)Cc1ccc(cc1)C(C)C(=O)O"},
		{"broken", "C1CC"},
	}
	records := make([]compound.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, compound.Record{
			Name:   r[0],
			SMILES: r[1],
			Fields: map[string]string{compound.ColumnName: r[0], compound.ColumnSMILES: r[1]},
		})
	}
	return compound.New([]string{compound.ColumnName, compound.ColumnSMILES}, records)
}

func newTestService(src screening.Source) *screening.Service {
	cache := screening.NewDatasetCache(src, nil, nil)
	return screening.NewService(cache, screening.NewAnnotator(molecule.NewEngine()), nil, nil)
}

// newTestEngine mounts register on a fresh engine with request IDs enabled.
func newTestEngine(register func(r *gin.Engine)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// envelope is the decoded form of common.APIResponse.
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func compoundNames(items []dto.Compound) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}
