package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

type stubDAO struct {
	report  types.HealthReport
	metrics types.GovernanceMetrics
	err     error
}

func (s *stubDAO) HealthReport(ctx context.Context, address string) (types.HealthReport, error) {
	if s.err != nil {
		return types.HealthReport{}, s.err
	}
	report := s.report
	report.DAOAddress = address
	return report, nil
}

func (s *stubDAO) GovernanceMetrics(ctx context.Context, address string) (types.GovernanceMetrics, error) {
	if s.err != nil {
		return types.GovernanceMetrics{}, s.err
	}
	metrics := s.metrics
	metrics.DAOAddress = address
	return metrics, nil
}

type stubTreasury struct {
	analysis types.TreasuryAnalysis
	alerts   []types.TreasuryAlert
	forecast types.TreasuryForecast
	html     string
	err      error
	gotDays  int
}

func (s *stubTreasury) Analysis(ctx context.Context, address string) (types.TreasuryAnalysis, error) {
	if s.err != nil {
		return types.TreasuryAnalysis{}, s.err
	}
	analysis := s.analysis
	analysis.DAOAddress = address
	return analysis, nil
}

func (s *stubTreasury) Alerts(ctx context.Context, address string) ([]types.TreasuryAlert, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.alerts, nil
}

func (s *stubTreasury) Forecast(ctx context.Context, address string, days int) (types.TreasuryForecast, error) {
	s.gotDays = days
	if s.err != nil {
		return types.TreasuryForecast{}, s.err
	}
	forecast := s.forecast
	forecast.DAOAddress = address
	forecast.ForecastDays = days
	return forecast, nil
}

func (s *stubTreasury) Report(ctx context.Context, address string, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, s.html)
	return err
}

type stubProposals struct {
	report      types.ProposalAnalysisReport
	summary     types.ProposalSummary
	history     []types.ProposalHistoryItem
	analytics   types.ProposalAnalytics
	predictions []types.ProposalPrediction
	err         error
	gotLimit    int
}

func (s *stubProposals) Analyze(ctx context.Context, proposalID, daoAddress string) (types.ProposalAnalysisReport, error) {
	if s.err != nil {
		return types.ProposalAnalysisReport{}, s.err
	}
	report := s.report
	report.ProposalID = proposalID
	report.DAOAddress = daoAddress
	return report, nil
}

func (s *stubProposals) Summary(ctx context.Context, proposalID string) (types.ProposalSummary, error) {
	if s.err != nil {
		return types.ProposalSummary{}, s.err
	}
	summary := s.summary
	summary.ProposalID = proposalID
	return summary, nil
}

func (s *stubProposals) History(ctx context.Context, address string, limit int) ([]types.ProposalHistoryItem, error) {
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

func (s *stubProposals) Analytics(ctx context.Context, address string) (types.ProposalAnalytics, error) {
	if s.err != nil {
		return types.ProposalAnalytics{}, s.err
	}
	analytics := s.analytics
	analytics.DAOAddress = address
	return analytics, nil
}

func (s *stubProposals) Predictions(ctx context.Context, address string, limit int) ([]types.ProposalPrediction, error) {
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.predictions, nil
}

type stubActions struct {
	result   types.ActionResult
	estimate types.GasEstimate
	err      error
	gotReq   types.ActionRequest
}

func (s *stubActions) Execute(ctx context.Context, req types.ActionRequest) (types.ActionResult, error) {
	s.gotReq = req
	if s.err != nil {
		return types.ActionResult{}, s.err
	}
	return s.result, nil
}

func (s *stubActions) EstimateGas(ctx context.Context, req types.ActionRequest) (types.GasEstimate, error) {
	s.gotReq = req
	if s.err != nil {
		return types.GasEstimate{}, s.err
	}
	return s.estimate, nil
}

type stubChainGateway struct {
	status types.ContractStatus
	view   types.CrossChainView
	err    error
}

func (s *stubChainGateway) NanoContractStatus(ctx context.Context, contractID string) (types.ContractStatus, error) {
	if s.err != nil {
		return types.ContractStatus{}, s.err
	}
	status := s.status
	status.ContractID = contractID
	return status, nil
}

func (s *stubChainGateway) CrossChainAssets(ctx context.Context, address string) (types.CrossChainView, error) {
	if s.err != nil {
		return types.CrossChainView{}, s.err
	}
	view := s.view
	view.DAOAddress = address
	return view, nil
}

func newTestEngine(r *Router) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	r.Register(engine.Group("/api"))
	return engine
}

func perform(engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRouter_DAOHealth(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		dao := &stubDAO{report: types.HealthReport{OverallScore: 0.74, Confidence: 0.85}}
		engine := newTestEngine(NewRouter(RouterConfig{DAO: dao}))

		w := perform(engine, http.MethodGet, "/api/dao/0xdao/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "0xdao", body["dao_address"])
		assert.InDelta(t, 0.74, body["overall_health_score"], 1e-9)
	})

	t.Run("Unknown DAO", func(t *testing.T) {
		dao := &stubDAO{err: apperr.NoData("dao", "0xmissing")}
		engine := newTestEngine(NewRouter(RouterConfig{DAO: dao}))

		w := perform(engine, http.MethodGet, "/api/dao/0xmissing/health", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "dao not found: 0xmissing", decodeBody(t, w)["error"])
	})

	t.Run("Internal Error Stays Generic", func(t *testing.T) {
		dao := &stubDAO{err: io.ErrUnexpectedEOF}
		engine := newTestEngine(NewRouter(RouterConfig{DAO: dao}))

		w := perform(engine, http.MethodGet, "/api/dao/0xdao/health", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decodeBody(t, w)["error"])
	})
}

func TestRouter_GovernanceMetrics(t *testing.T) {
	dao := &stubDAO{metrics: types.GovernanceMetrics{TotalProposals: 45, SuccessRate: 0.711}}
	engine := newTestEngine(NewRouter(RouterConfig{DAO: dao}))

	w := perform(engine, http.MethodGet, "/api/governance/0xdao/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "0xdao", body["dao_address"])
	assert.EqualValues(t, 45, body["total_proposals"])
}

func TestRouter_ProposalAnalyze(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		proposals := &stubProposals{report: types.ProposalAnalysisReport{
			AnalysisResult:       types.AnalysisResult{PredictedOutcome: 0.72},
			VotingRecommendation: "Recommend voting YES - good success probability with low risk",
		}}
		engine := newTestEngine(NewRouter(RouterConfig{Proposals: proposals}))

		w := perform(engine, http.MethodPost, "/api/proposals/analyze",
			`{"proposal_id":"prop_1","dao_address":"0xdao"}`)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "prop_1", body["proposal_id"])
		assert.Equal(t, "0xdao", body["dao_address"])
		assert.Contains(t, body["voting_recommendation"], "Recommend voting YES")
	})

	t.Run("Malformed Body", func(t *testing.T) {
		engine := newTestEngine(NewRouter(RouterConfig{Proposals: &stubProposals{}}))

		w := perform(engine, http.MethodPost, "/api/proposals/analyze", `{"proposal_id": `)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", decodeBody(t, w)["error"])
	})

	t.Run("Blank Identifiers", func(t *testing.T) {
		proposals := &stubProposals{err: apperr.InvalidParams("proposal id and dao address are required", nil)}
		engine := newTestEngine(NewRouter(RouterConfig{Proposals: proposals}))

		w := perform(engine, http.MethodPost, "/api/proposals/analyze", `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "required")
	})
}

func TestRouter_ProposalSummary(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		proposals := &stubProposals{summary: types.ProposalSummary{
			Title:     "Raise Quorum to 20%",
			RiskLevel: types.RiskLow,
		}}
		engine := newTestEngine(NewRouter(RouterConfig{Proposals: proposals}))

		w := perform(engine, http.MethodGet, "/api/proposals/prop_9/summary", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "prop_9", body["proposal_id"])
		assert.Equal(t, "Raise Quorum to 20%", body["title"])
	})

	t.Run("Store Error", func(t *testing.T) {
		proposals := &stubProposals{err: apperr.Internal("proposal store unreadable", nil)}
		engine := newTestEngine(NewRouter(RouterConfig{Proposals: proposals}))

		w := perform(engine, http.MethodGet, "/api/proposals/prop_9/summary", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decodeBody(t, w)["error"])
	})
}

func TestRouter_ProposalHistory(t *testing.T) {
	proposals := &stubProposals{history: []types.ProposalHistoryItem{
		{ProposalID: "prop_h1", Status: types.ProposalStatusPassed},
		{ProposalID: "prop_h2", Status: types.ProposalStatusFailed},
	}}
	engine := newTestEngine(NewRouter(RouterConfig{Proposals: proposals}))

	w := perform(engine, http.MethodGet, "/api/dao/0xdao/proposals?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, proposals.gotLimit)
	body := decodeBody(t, w)
	assert.Equal(t, "0xdao", body["dao_address"])
	assert.EqualValues(t, 2, body["count"])
	require.Len(t, body["proposals"], 2)

	// absent or garbage limits fall through to the service default
	perform(engine, http.MethodGet, "/api/dao/0xdao/proposals", "")
	assert.Equal(t, 0, proposals.gotLimit)
	perform(engine, http.MethodGet, "/api/dao/0xdao/proposals?limit=abc", "")
	assert.Equal(t, 0, proposals.gotLimit)
}

func TestRouter_ProposalAnalytics(t *testing.T) {
	proposals := &stubProposals{analytics: types.ProposalAnalytics{
		TotalProposals:   5,
		SettledProposals: 4,
		ApprovalRate:     0.75,
	}}
	engine := newTestEngine(NewRouter(RouterConfig{Proposals: proposals}))

	w := perform(engine, http.MethodGet, "/api/dao/0xdao/analytics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "0xdao", body["dao_address"])
	assert.EqualValues(t, 4, body["settled_proposals"])
	assert.InDelta(t, 0.75, body["approval_rate"], 1e-9)
}

func TestRouter_ProposalPredictions(t *testing.T) {
	proposals := &stubProposals{predictions: []types.ProposalPrediction{
		{ProposalID: "prop_1", PredictedSuccess: 0.7},
	}}
	engine := newTestEngine(NewRouter(RouterConfig{Proposals: proposals}))

	w := perform(engine, http.MethodGet, "/api/predictions/0xdao/proposals?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, proposals.gotLimit)
	body := decodeBody(t, w)
	assert.Equal(t, "0xdao", body["dao_address"])
	assert.EqualValues(t, 1, body["count"])
}

func TestRouter_TreasuryAnalysis(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		treasury := &stubTreasury{analysis: types.TreasuryAnalysis{TotalValueUSD: 2_500_000}}
		engine := newTestEngine(NewRouter(RouterConfig{Treasury: treasury}))

		w := perform(engine, http.MethodGet, "/api/treasury/0xdao/analysis", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "0xdao", body["dao_address"])
		assert.InDelta(t, 2_500_000, body["total_value_usd"], 1e-9)
	})

	t.Run("Empty Portfolio", func(t *testing.T) {
		treasury := &stubTreasury{err: apperr.NoData("treasury data", "0xempty")}
		engine := newTestEngine(NewRouter(RouterConfig{Treasury: treasury}))

		w := perform(engine, http.MethodGet, "/api/treasury/0xempty/analysis", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "not found")
	})
}

func TestRouter_TreasuryAlerts(t *testing.T) {
	treasury := &stubTreasury{alerts: []types.TreasuryAlert{
		{Type: "risk_alert", Severity: "medium", Timestamp: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
	}}
	engine := newTestEngine(NewRouter(RouterConfig{Treasury: treasury}))

	w := perform(engine, http.MethodGet, "/api/treasury/0xdao/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])
	require.Len(t, body["alerts"], 1)
}

func TestRouter_TreasuryForecast(t *testing.T) {
	t.Run("Custom Window", func(t *testing.T) {
		treasury := &stubTreasury{forecast: types.TreasuryForecast{CurrentValue: 2_500_000}}
		engine := newTestEngine(NewRouter(RouterConfig{Treasury: treasury}))

		w := perform(engine, http.MethodGet, "/api/treasury/0xdao/forecast?days=7", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 7, treasury.gotDays)
		assert.EqualValues(t, 7, decodeBody(t, w)["forecast_period"])
	})

	t.Run("Default Window", func(t *testing.T) {
		treasury := &stubTreasury{}
		engine := newTestEngine(NewRouter(RouterConfig{Treasury: treasury}))

		w := perform(engine, http.MethodGet, "/api/treasury/0xdao/forecast", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 30, treasury.gotDays)
	})

	t.Run("Invalid Window", func(t *testing.T) {
		treasury := &stubTreasury{err: apperr.InvalidParams("forecast window must cover at least one day", nil)}
		engine := newTestEngine(NewRouter(RouterConfig{Treasury: treasury}))

		w := perform(engine, http.MethodGet, "/api/treasury/0xdao/forecast?days=-3", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, -3, treasury.gotDays)
	})
}

func TestRouter_TreasuryReport(t *testing.T) {
	t.Run("Serves HTML", func(t *testing.T) {
		treasury := &stubTreasury{html: "<!DOCTYPE html><html><body>treasury</body></html>"}
		engine := newTestEngine(NewRouter(RouterConfig{Treasury: treasury}))

		w := perform(engine, http.MethodGet, "/api/treasury/0xdao/report", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "<html>")
	})

	t.Run("Failed Build Yields JSON Error", func(t *testing.T) {
		treasury := &stubTreasury{err: apperr.NoData("treasury data", "0xempty")}
		engine := newTestEngine(NewRouter(RouterConfig{Treasury: treasury}))

		w := perform(engine, http.MethodGet, "/api/treasury/0xempty/report", "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.Contains(t, decodeBody(t, w)["error"], "not found")
	})
}

func TestRouter_ActionExecute(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		actions := &stubActions{result: types.ActionResult{
			ActionID:        "action_1",
			Status:          types.ActionStatusExecuted,
			TransactionHash: "0xtx",
		}}
		engine := newTestEngine(NewRouter(RouterConfig{Actions: actions}))

		w := perform(engine, http.MethodPost, "/api/actions/execute",
			`{"action_type":"token_transfer","dao_address":"0xdao","parameters":{"recipient":"0xabc","amount":1000,"token_address":"0xusdc"}}`)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, types.ActionStatusExecuted, body["status"])
		assert.Equal(t, types.ActionTokenTransfer, actions.gotReq.ActionType)
		assert.Equal(t, "0xabc", actions.gotReq.Parameters["recipient"])
	})

	t.Run("Rejected Request", func(t *testing.T) {
		actions := &stubActions{err: apperr.InvalidParams("DAO address is required", nil)}
		engine := newTestEngine(NewRouter(RouterConfig{Actions: actions}))

		w := perform(engine, http.MethodPost, "/api/actions/execute",
			`{"action_type":"token_transfer"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "DAO address is required", decodeBody(t, w)["error"])
	})

	t.Run("Malformed Body", func(t *testing.T) {
		engine := newTestEngine(NewRouter(RouterConfig{Actions: &stubActions{}}))

		w := perform(engine, http.MethodPost, "/api/actions/execute", `not json`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRouter_ActionEstimateGas(t *testing.T) {
	actions := &stubActions{estimate: types.GasEstimate{
		ActionType: types.ActionTreasuryRebalance,
		GasUnits:   200_000,
	}}
	engine := newTestEngine(NewRouter(RouterConfig{Actions: actions}))

	w := perform(engine, http.MethodPost, "/api/actions/estimate-gas",
		`{"action_type":"treasury_rebalance","parameters":{}}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "treasury_rebalance", body["action_type"])
	assert.EqualValues(t, 200_000, body["gas_units"])
}

func TestRouter_ContractStatus(t *testing.T) {
	chain := &stubChainGateway{status: types.ContractStatus{State: "active", TotalTxs: 1250}}
	engine := newTestEngine(NewRouter(RouterConfig{Chain: chain}))

	w := perform(engine, http.MethodGet, "/api/contracts/contract_7/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "contract_7", body["contract_id"])
	assert.Equal(t, "active", body["state"])
}

func TestRouter_CrossChainAssets(t *testing.T) {
	chain := &stubChainGateway{view: types.CrossChainView{
		TotalValueUSD: 1_200_000,
		RiskLevel:     types.RiskMedium,
	}}
	engine := newTestEngine(NewRouter(RouterConfig{Chain: chain}))

	w := perform(engine, http.MethodGet, "/api/cross-chain/0xdao/assets", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "0xdao", body["dao_address"])
	assert.InDelta(t, 1_200_000, body["total_value_usd"], 1e-9)
}

func TestRouter_MissingServices(t *testing.T) {
	engine := newTestEngine(NewRouter(RouterConfig{}))

	routes := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/dao/0xdao/health", ""},
		{http.MethodGet, "/api/governance/0xdao/metrics", ""},
		{http.MethodPost, "/api/proposals/analyze", `{"proposal_id":"p","dao_address":"d"}`},
		{http.MethodGet, "/api/treasury/0xdao/analysis", ""},
		{http.MethodGet, "/api/treasury/0xdao/report", ""},
		{http.MethodPost, "/api/actions/execute", `{}`},
		{http.MethodGet, "/api/contracts/c1/status", ""},
		{http.MethodGet, "/api/cross-chain/0xdao/assets", ""},
	}
	for _, route := range routes {
		w := perform(engine, route.method, route.target, route.body)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", route.method, route.target)
	}
}
