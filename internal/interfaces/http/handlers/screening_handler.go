package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/pkg/errors"
	dto "github.com/turtacn/druglike/pkg/types/screening"
)

// ScreeningHandler serves the JSON screening API.
type ScreeningHandler struct {
	svc           ScreeningService
	imageTemplate string
}

// NewScreeningHandler creates a ScreeningHandler.  An empty imageTemplate
// falls back to screening.DefaultImageTemplate.
func NewScreeningHandler(svc ScreeningService, imageTemplate string) *ScreeningHandler {
	if imageTemplate == "" {
		imageTemplate = screening.DefaultImageTemplate
	}
	return &ScreeningHandler{svc: svc, imageTemplate: imageTemplate}
}

// RegisterRoutes mounts the API under rg, normally /api/v1.
func (h *ScreeningHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rules", h.ListRules)
	rg.GET("/rules/:rule", h.GetRule)
	rg.GET("/screen/:rule", h.Screen)
	rg.POST("/screen/:rule", h.ScreenWithBody)
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/dataset", h.Dataset)
}

// ListRules handles GET /rules.
func (h *ScreeningHandler) ListRules(c *gin.Context) {
	rules := h.svc.Rules()
	out := make([]dto.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, screening.RuleDTO(r))
	}
	respondOK(c, out)
}

// GetRule handles GET /rules/:rule.
func (h *ScreeningHandler) GetRule(c *gin.Context) {
	rule, err := h.lookupRule(c.Param("rule"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, screening.RuleDTO(rule))
}

// Screen handles GET /screen/:rule?MW=400&LogP=4&grid=true.
func (h *ScreeningHandler) Screen(c *gin.Context) {
	rule, err := h.lookupRule(c.Param("rule"))
	if err != nil {
		respondError(c, err)
		return
	}
	cutoffs, err := parseCutoffs(c.Request.URL.Query(), "")
	if err != nil {
		respondError(c, err)
		return
	}
	h.screen(c, rule.Name, cutoffs, boolParam(c.Query("grid")))
}

// ScreenWithBody handles POST /screen/:rule with a ScreenRequest body.
func (h *ScreeningHandler) ScreenWithBody(c *gin.Context) {
	rule, err := h.lookupRule(c.Param("rule"))
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.ScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}
	cutoffs := screening.Cutoffs{}
	for name, v := range req.Cutoffs {
		kind, err := screening.ParseKind(name)
		if err != nil {
			respondError(c, err)
			return
		}
		cutoffs[kind] = v
	}
	h.screen(c, rule.Name, cutoffs, req.IncludeGrid)
}

func (h *ScreeningHandler) screen(c *gin.Context, name screening.RuleName, cutoffs screening.Cutoffs, withGrid bool) {
	v, err := h.svc.Screen(c.Request.Context(), name, cutoffs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, screening.ViewDTO(v, withGrid, h.imageTemplate))
}

// Dashboard handles GET /dashboard?ro5.MW=450&ro3.LogP=2&grid=true and
// returns every rule's view from one annotation pass.
func (h *ScreeningHandler) Dashboard(c *gin.Context) {
	req, err := parseDashboardRequest(c.Request.URL.Query(), h.svc.Rules())
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := h.svc.Dashboard(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	withGrid := boolParam(c.Query("grid"))
	out := dto.Dashboard{Views: make([]dto.View, 0, len(views))}
	for _, v := range views {
		out.Views = append(out.Views, screening.ViewDTO(v, withGrid, h.imageTemplate))
	}
	respondOK(c, out)
}

// Dataset handles GET /dataset and returns the full annotated table.
func (h *ScreeningHandler) Dataset(c *gin.Context) {
	ds, err := h.svc.Annotated(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, screening.DatasetDTO(ds))
}

func (h *ScreeningHandler) lookupRule(raw string) (*screening.Rule, error) {
	name, err := screening.ParseRuleName(raw)
	if err != nil {
		return nil, err
	}
	return h.svc.Rule(name)
}
