package prompt

import "github.com/RachelGanonNew/AIDA-Project/internal/logger"

func numberSchema(min, max float64) map[string]interface{} {
	return map[string]interface{}{"type": "number", "minimum": min, "maximum": max}
}

func impactDimensionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"score":       numberSchema(0, 1),
			"description": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"score"},
	}
}

// defaultSpecs returns the built-in prompt set, schemas compiled. The texts
// and generation parameters are the service's standing prompts; the YAML
// file only needs entries for operations it wants to override.
func defaultSpecs() map[string]Spec {
	specs := map[string]Spec{
		OpSentiment: {
			ID:           OpSentiment,
			System:       "You are a sentiment analysis expert. Analyze the sentiment of the given DAO proposal text and return a score between -1 (very negative) and 1 (very positive). Return only the numeric score.",
			UserTemplate: "Analyze the sentiment of this proposal: {text}",
			MaxTokens:    10,
			Temperature:  0.1,
			TruncateAt:   1000,
		},
		OpSummary: {
			ID:           OpSummary,
			System:       "You are an expert at summarizing DAO governance proposals. Create a clear, concise summary in 2-3 sentences that captures the key points and intent.",
			UserTemplate: "Summarize this proposal: {text}",
			MaxTokens:    150,
			Temperature:  0.3,
			TruncateAt:   1500,
		},
		OpRisk: {
			ID:           OpRisk,
			System:       `You are a risk assessment expert for DAO governance. Analyze the risk level (low/medium/high) and identify specific risk factors. Return JSON format: {"risk_level": "low/medium/high", "risk_factors": ["factor1", "factor2"], "risk_score": 0.0-1.0}`,
			UserTemplate: "Assess risk for this proposal in context: {context}\n\nProposal: {text}",
			MaxTokens:    200,
			Temperature:  0.2,
			TruncateAt:   1000,
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"risk_level": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"low", "medium", "high"},
					},
					"risk_factors": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
					"risk_score": numberSchema(0, 1),
				},
				"required": []interface{}{"risk_level"},
			},
		},
		OpImpact: {
			ID:           OpImpact,
			System:       "You are an expert at analyzing DAO governance proposal impacts. Analyze the potential impact on treasury, governance, community, and technical aspects. Return JSON format with impact scores (0-1) and descriptions.",
			UserTemplate: "Analyze impact of this proposal: {text}",
			MaxTokens:    300,
			Temperature:  0.3,
			TruncateAt:   1000,
			Schema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"treasury_impact":   impactDimensionSchema(),
					"governance_impact": impactDimensionSchema(),
					"community_impact":  impactDimensionSchema(),
				},
				"required": []interface{}{"treasury_impact", "governance_impact", "community_impact"},
			},
		},
		OpKeyPoints: {
			ID:           OpKeyPoints,
			System:       "Extract 3-5 key points from this DAO proposal. Return as a JSON array of strings.",
			UserTemplate: "Extract key points: {text}",
			MaxTokens:    200,
			Temperature:  0.2,
			TruncateAt:   1000,
			Schema: map[string]interface{}{
				"type":     "array",
				"items":    map[string]interface{}{"type": "string"},
				"minItems": 1,
			},
		},
		OpRecommendations: {
			ID:           OpRecommendations,
			System:       "Based on the analysis results, provide 2-3 actionable recommendations for DAO members. Focus on voting guidance and risk mitigation.",
			UserTemplate: "Generate recommendations based on: {context}",
			MaxTokens:    150,
			Temperature:  0.3,
		},
	}
	for op, s := range specs {
		if len(s.Schema) == 0 {
			continue
		}
		compiled, err := compileSchema(s.Schema)
		if err != nil {
			logger.Errorf("built-in prompt schema compile failed op=%s: %v", op, err)
			continue
		}
		s.schemaCompiled = compiled
		specs[op] = s
	}
	return specs
}
