package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/types/common"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	dashboardTemplate = "dashboard.html"
	dashboardTitle    = "Drug-likeness dashboard"
)

// DashboardHandler renders the HTML dashboard: one panel per rule, each with
// its own slider form, shape line, table and molecule grid.
type DashboardHandler struct {
	svc           ScreeningService
	imageTemplate string
	tmpl          *template.Template
	logger        logging.Logger
}

// NewDashboardHandler parses the embedded templates.
func NewDashboardHandler(svc ScreeningService, imageTemplate string, logger logging.Logger) (*DashboardHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if imageTemplate == "" {
		imageTemplate = screening.DefaultImageTemplate
	}
	return &DashboardHandler{
		svc:           svc,
		imageTemplate: imageTemplate,
		tmpl:          tmpl,
		logger:        logging.OrNop(logger),
	}, nil
}

// RegisterRoutes mounts the dashboard at / on the engine root group.
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Render)
}

type sliderView struct {
	Name  string
	Label string
	Min   string
	Max   string
	Step  string
	Value string
}

type hiddenInput struct {
	Name  string
	Value string
}

type panelView struct {
	Rule        string
	Title       string
	Description string
	Sliders     []sliderView
	Hidden      []hiddenInput
	Shape       string
	Header      []string
	Rows        [][]string
	GridColumns []string
	Cells       []screening.GridCell
}

type pageView struct {
	Title  string
	Error  *common.ErrorDetail
	Panels []panelView
}

// Render handles GET /.  Query keys are "<rule>.<descriptor>", so each
// panel's form only changes its own cutoffs and carries the other panels'
// current values as hidden inputs.
func (h *DashboardHandler) Render(c *gin.Context) {
	rules := h.svc.Rules()
	req, err := parseDashboardRequest(c.Request.URL.Query(), rules)
	if err != nil {
		h.renderError(c, err)
		return
	}
	views, err := h.svc.Dashboard(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	page := pageView{Title: dashboardTitle, Panels: make([]panelView, 0, len(views))}
	for _, v := range views {
		rule, err := h.svc.Rule(v.Rule)
		if err != nil {
			h.renderError(c, err)
			return
		}
		page.Panels = append(page.Panels, h.panel(rule, v, views))
	}
	h.html(c, http.StatusOK, page)
}

func (h *DashboardHandler) panel(rule *screening.Rule, v *screening.View, all []*screening.View) panelView {
	p := panelView{
		Rule:        string(rule.Name),
		Title:       rule.Title,
		Description: rule.Description,
		Shape:       v.ShapeString(),
	}
	for _, k := range rule.Kinds {
		rng := screening.Ranges[k]
		p.Sliders = append(p.Sliders, sliderView{
			Name:  string(rule.Name) + "." + string(k),
			Label: screening.Labels[k],
			Min:   formatNumber(rng.Min),
			Max:   formatNumber(rng.Max),
			Step:  formatNumber(rng.Step),
			Value: formatNumber(v.Cutoffs[k]),
		})
	}
	for _, other := range all {
		if other.Rule == rule.Name {
			continue
		}
		for _, k := range other.Cutoffs.Kinds() {
			p.Hidden = append(p.Hidden, hiddenInput{
				Name:  string(other.Rule) + "." + string(k),
				Value: formatNumber(other.Cutoffs[k]),
			})
		}
	}

	p.Header, p.Rows = screening.Table(v)
	g := screening.BuildGrid(v, h.imageTemplate)
	for _, col := range g.Columns {
		if col != screening.ColumnImage {
			p.GridColumns = append(p.GridColumns, col)
		}
	}
	p.Cells = g.Cells
	return p
}

func (h *DashboardHandler) renderError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := statusAndBody(c, err)
	h.logger.Warn("dashboard render failed",
		logging.Err(err),
		logging.Int("status", status),
		logging.String("request_id", body.RequestID))
	h.html(c, status, pageView{Title: dashboardTitle, Error: body.Error})
}

func (h *DashboardHandler) html(c *gin.Context, status int, page pageView) {
	c.Render(status, render.HTML{Template: h.tmpl, Name: dashboardTemplate, Data: page})
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
