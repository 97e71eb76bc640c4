package analyst

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/pkg/jsonutil"
	"github.com/RachelGanonNew/AIDA-Project/internal/prompt"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

// ParseOutcome tags one attempt at decoding a generator reply. The caller
// branches on OK; Err is logged, never surfaced to API clients.
type ParseOutcome struct {
	OK      bool
	Payload any
	Raw     string
	Err     error
}

func parseFailed(raw, op string, err error) ParseOutcome {
	return ParseOutcome{Raw: raw, Err: apperr.MalformedResponse(op, err)}
}

func parsed(raw string, payload any) ParseOutcome {
	return ParseOutcome{OK: true, Payload: payload, Raw: raw}
}

// decodeStructured extracts the first JSON document from a reply and runs it
// through the operation schema when one is registered.
func decodeStructured(spec prompt.Spec, op, raw string) (gjson.Result, ParseOutcome) {
	candidate, ok := jsonutil.ExtractJSON(raw)
	if !ok {
		return gjson.Result{}, parseFailed(raw, op, fmt.Errorf("no JSON document in reply"))
	}
	if !gjson.Valid(candidate) {
		return gjson.Result{}, parseFailed(raw, op, fmt.Errorf("extracted JSON is invalid"))
	}
	var payload any
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return gjson.Result{}, parseFailed(raw, op, err)
	}
	if err := spec.ValidatePayload(payload); err != nil {
		return gjson.Result{}, parseFailed(raw, op, err)
	}
	return gjson.Parse(candidate), ParseOutcome{OK: true, Raw: raw}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// parseSentiment expects a bare numeric score and clamps it to [-1,1].
func parseSentiment(raw string) ParseOutcome {
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return parseFailed(raw, prompt.OpSentiment, err)
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return parsed(raw, score)
}

func parseSummary(raw string) ParseOutcome {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return parseFailed(raw, prompt.OpSummary, fmt.Errorf("empty summary"))
	}
	return parsed(raw, trimmed)
}

func parseRisk(spec prompt.Spec, raw string) ParseOutcome {
	doc, out := decodeStructured(spec, prompt.OpRisk, raw)
	if !out.OK {
		return out
	}
	level := types.RiskLevel(strings.ToLower(strings.TrimSpace(doc.Get("risk_level").String())))
	switch level {
	case types.RiskLow, types.RiskMedium, types.RiskHigh:
	default:
		return parseFailed(raw, prompt.OpRisk, fmt.Errorf("unknown risk_level %q", level))
	}
	assessment := types.RiskAssessment{Level: level}
	if node := doc.Get("risk_score"); node.Exists() {
		assessment.Score = clampUnit(node.Float())
	} else {
		assessment.Score = riskScoreByLevel[level]
	}
	for _, f := range doc.Get("risk_factors").Array() {
		if s := strings.TrimSpace(f.String()); s != "" {
			assessment.Factors = append(assessment.Factors, s)
		}
	}
	return parsed(raw, assessment)
}

func parseImpact(spec prompt.Spec, raw string) ParseOutcome {
	doc, out := decodeStructured(spec, prompt.OpImpact, raw)
	if !out.OK {
		return out
	}
	dim := func(key string) types.ImpactDimension {
		node := doc.Get(key)
		return types.ImpactDimension{
			Score:       clampUnit(node.Get("score").Float()),
			Description: strings.TrimSpace(node.Get("description").String()),
		}
	}
	return parsed(raw, types.ImpactAssessment{
		Treasury:   dim("treasury_impact"),
		Governance: dim("governance_impact"),
		Community:  dim("community_impact"),
	})
}

func parseKeyPoints(spec prompt.Spec, raw string) ParseOutcome {
	doc, out := decodeStructured(spec, prompt.OpKeyPoints, raw)
	if !out.OK {
		return out
	}
	var points []string
	for _, el := range doc.Array() {
		if s := strings.TrimSpace(el.String()); s != "" {
			points = append(points, s)
		}
	}
	if len(points) == 0 {
		return parseFailed(raw, prompt.OpKeyPoints, fmt.Errorf("no key points in reply"))
	}
	return parsed(raw, points)
}

// parseRecommendations splits a plain-text reply into non-empty lines.
func parseRecommendations(raw string) ParseOutcome {
	var recs []string
	for _, line := range strings.Split(raw, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			recs = append(recs, s)
		}
	}
	if len(recs) == 0 {
		return parseFailed(raw, prompt.OpRecommendations, fmt.Errorf("empty recommendations"))
	}
	return parsed(raw, recs)
}
