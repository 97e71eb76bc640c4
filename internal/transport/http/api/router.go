package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

// DAOService serves health reports and governance metrics.
type DAOService interface {
	HealthReport(ctx context.Context, address string) (types.HealthReport, error)
	GovernanceMetrics(ctx context.Context, address string) (types.GovernanceMetrics, error)
}

// TreasuryService serves treasury analyses, alerts, forecasts and the HTML
// chart report.
type TreasuryService interface {
	Analysis(ctx context.Context, address string) (types.TreasuryAnalysis, error)
	Alerts(ctx context.Context, address string) ([]types.TreasuryAlert, error)
	Forecast(ctx context.Context, address string, days int) (types.TreasuryForecast, error)
	Report(ctx context.Context, address string, w io.Writer) error
}

// ProposalService serves proposal analysis, summaries, history, analytics
// and predictions.
type ProposalService interface {
	Analyze(ctx context.Context, proposalID, daoAddress string) (types.ProposalAnalysisReport, error)
	Summary(ctx context.Context, proposalID string) (types.ProposalSummary, error)
	History(ctx context.Context, address string, limit int) ([]types.ProposalHistoryItem, error)
	Analytics(ctx context.Context, address string) (types.ProposalAnalytics, error)
	Predictions(ctx context.Context, address string, limit int) ([]types.ProposalPrediction, error)
}

// ActionDispatcher executes automated actions and quotes gas.
type ActionDispatcher interface {
	Execute(ctx context.Context, req types.ActionRequest) (types.ActionResult, error)
	EstimateGas(ctx context.Context, req types.ActionRequest) (types.GasEstimate, error)
}

// ChainGateway answers the direct chain queries not owned by a service.
type ChainGateway interface {
	NanoContractStatus(ctx context.Context, contractID string) (types.ContractStatus, error)
	CrossChainAssets(ctx context.Context, address string) (types.CrossChainView, error)
}

// Router exposes the analyst API.
type Router struct {
	dao       DAOService
	treasury  TreasuryService
	proposals ProposalService
	actions   ActionDispatcher
	chain     ChainGateway
}

// RouterConfig names the router's service dependencies. Nil entries disable
// the corresponding routes with a 503 instead of a panic.
type RouterConfig struct {
	DAO       DAOService
	Treasury  TreasuryService
	Proposals ProposalService
	Actions   ActionDispatcher
	Chain     ChainGateway
}

func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		dao:       cfg.DAO,
		treasury:  cfg.Treasury,
		proposals: cfg.Proposals,
		actions:   cfg.Actions,
		chain:     cfg.Chain,
	}
}

// Register mounts the analyst routes under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/dao/:address/health", r.handleDAOHealth)
	group.GET("/dao/:address/proposals", r.handleProposalHistory)
	group.GET("/dao/:address/analytics", r.handleProposalAnalytics)
	group.GET("/governance/:address/metrics", r.handleGovernanceMetrics)
	group.POST("/proposals/analyze", r.handleProposalAnalyze)
	group.GET("/proposals/:id/summary", r.handleProposalSummary)
	group.GET("/predictions/:address/proposals", r.handleProposalPredictions)
	group.GET("/treasury/:address/analysis", r.handleTreasuryAnalysis)
	group.GET("/treasury/:address/alerts", r.handleTreasuryAlerts)
	group.GET("/treasury/:address/forecast", r.handleTreasuryForecast)
	group.GET("/treasury/:address/report", r.handleTreasuryReport)
	group.POST("/actions/execute", r.handleActionExecute)
	group.POST("/actions/estimate-gas", r.handleActionEstimateGas)
	group.GET("/contracts/:id/status", r.handleContractStatus)
	group.GET("/cross-chain/:address/assets", r.handleCrossChainAssets)
}

// renderError maps a service error to {"error": msg} with the status of its
// kind. Internal errors get a generic message; the detail goes to the log.
func renderError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	msg := apperr.Message(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("[api] %s %s ip=%s err=%v", c.Request.Method, c.Request.URL.Path, c.ClientIP(), err)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func (r *Router) handleDAOHealth(c *gin.Context) {
	if r.dao == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dao analysis unavailable"})
		return
	}
	address := c.Param("address")
	report, err := r.dao.HealthReport(c.Request.Context(), address)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) handleGovernanceMetrics(c *gin.Context) {
	if r.dao == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dao analysis unavailable"})
		return
	}
	address := c.Param("address")
	metrics, err := r.dao.GovernanceMetrics(c.Request.Context(), address)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (r *Router) handleProposalHistory(c *gin.Context) {
	if r.proposals == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "proposal analysis unavailable"})
		return
	}
	address := c.Param("address")
	limit := queryInt(c, "limit", 0)
	history, err := r.proposals.History(c.Request.Context(), address, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dao_address": address,
		"proposals":   history,
		"count":       len(history),
	})
}

func (r *Router) handleProposalAnalytics(c *gin.Context) {
	if r.proposals == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "proposal analysis unavailable"})
		return
	}
	analytics, err := r.proposals.Analytics(c.Request.Context(), c.Param("address"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

type analyzeProposalRequest struct {
	ProposalID string `json:"proposal_id"`
	DAOAddress string `json:"dao_address"`
}

func (r *Router) handleProposalAnalyze(c *gin.Context) {
	if r.proposals == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "proposal analysis unavailable"})
		return
	}
	var req analyzeProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Errorf("[api] proposal analyze bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	report, err := r.proposals.Analyze(c.Request.Context(), req.ProposalID, req.DAOAddress)
	if err != nil {
		renderError(c, err)
		return
	}
	logger.Infof("[api] proposal analyzed ip=%s proposal=%s dao=%s outcome=%.2f",
		c.ClientIP(), report.ProposalID, report.DAOAddress, report.PredictedOutcome)
	c.JSON(http.StatusOK, report)
}

func (r *Router) handleProposalSummary(c *gin.Context) {
	if r.proposals == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "proposal analysis unavailable"})
		return
	}
	summary, err := r.proposals.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (r *Router) handleProposalPredictions(c *gin.Context) {
	if r.proposals == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "proposal analysis unavailable"})
		return
	}
	address := c.Param("address")
	limit := queryInt(c, "limit", 0)
	predictions, err := r.proposals.Predictions(c.Request.Context(), address, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dao_address": address,
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (r *Router) handleTreasuryAnalysis(c *gin.Context) {
	if r.treasury == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "treasury analysis unavailable"})
		return
	}
	analysis, err := r.treasury.Analysis(c.Request.Context(), c.Param("address"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (r *Router) handleTreasuryAlerts(c *gin.Context) {
	if r.treasury == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "treasury analysis unavailable"})
		return
	}
	address := c.Param("address")
	alerts, err := r.treasury.Alerts(c.Request.Context(), address)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dao_address": address,
		"alerts":      alerts,
		"count":       len(alerts),
	})
}

func (r *Router) handleTreasuryForecast(c *gin.Context) {
	if r.treasury == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "treasury analysis unavailable"})
		return
	}
	address := c.Param("address")
	days := queryInt(c, "days", 30)
	forecast, err := r.treasury.Forecast(c.Request.Context(), address, days)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (r *Router) handleTreasuryReport(c *gin.Context) {
	if r.treasury == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "treasury analysis unavailable"})
		return
	}
	address := c.Param("address")
	// render to a buffer so a failed chart build still yields a JSON error
	var buf bytes.Buffer
	if err := r.treasury.Report(c.Request.Context(), address, &buf); err != nil {
		renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (r *Router) handleActionExecute(c *gin.Context) {
	if r.actions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "action dispatch unavailable"})
		return
	}
	var req types.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Errorf("[api] action execute bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := r.actions.Execute(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}
	logger.Infof("[api] action dispatched ip=%s type=%s dao=%s status=%s",
		c.ClientIP(), req.ActionType, req.DAOAddress, result.Status)
	c.JSON(http.StatusOK, result)
}

func (r *Router) handleActionEstimateGas(c *gin.Context) {
	if r.actions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "action dispatch unavailable"})
		return
	}
	var req types.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Errorf("[api] gas estimate bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	estimate, err := r.actions.EstimateGas(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (r *Router) handleContractStatus(c *gin.Context) {
	if r.chain == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chain gateway unavailable"})
		return
	}
	contractID := strings.TrimSpace(c.Param("id"))
	status, err := r.chain.NanoContractStatus(c.Request.Context(), contractID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (r *Router) handleCrossChainAssets(c *gin.Context) {
	if r.chain == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chain gateway unavailable"})
		return
	}
	view, err := r.chain.CrossChainAssets(c.Request.Context(), c.Param("address"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
