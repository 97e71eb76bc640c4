// Package analyst runs the per-proposal analysis pipeline: five sub-analyses
// fan out concurrently, each pairing a generator primary with a heuristic
// fallback, and the results are assembled into one AnalysisResult.
package analyst

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RachelGanonNew/AIDA-Project/internal/gateway/provider"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/pkg/convert"
	"github.com/RachelGanonNew/AIDA-Project/internal/prompt"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

const defaultSubTimeout = 20 * time.Second

type Orchestrator struct {
	generators []provider.TextGenerator
	registry   *prompt.Registry
	fallback   *Fallback
	predictor  *Predictor
	subTimeout time.Duration
}

func NewOrchestrator(generators []provider.TextGenerator, registry *prompt.Registry, fallback *Fallback, predictor *Predictor, subTimeout time.Duration) *Orchestrator {
	if fallback == nil {
		fallback = NewFallback(0)
	}
	if subTimeout <= 0 {
		subTimeout = defaultSubTimeout
	}
	return &Orchestrator{
		generators: generators,
		registry:   registry,
		fallback:   fallback,
		predictor:  predictor,
		subTimeout: subTimeout,
	}
}

// primary returns the first enabled generator, or nil for fallback-only mode.
func (o *Orchestrator) primary() provider.TextGenerator {
	for _, g := range o.generators {
		if g != nil && g.Enabled() {
			return g
		}
	}
	return nil
}

// Analyze runs the full analysis for one proposal. Sub-failures never
// propagate: every branch downgrades to its heuristic, so the result is
// always fully populated.
func (o *Orchestrator) Analyze(ctx context.Context, fv types.FeatureVector, dctx types.DAOContext) types.AnalysisResult {
	gen := o.primary()
	res := types.AnalysisResult{AnalyzedAt: time.Now().UTC()}
	if gen != nil {
		res.GeneratorID = gen.ID()
	}

	text := fv.ProposalText
	var mu sync.Mutex
	g := new(errgroup.Group)

	g.Go(o.branch(prompt.OpSentiment, func() {
		score := o.runSentiment(ctx, gen, text)
		mu.Lock()
		res.Sentiment = score
		mu.Unlock()
	}))
	g.Go(o.branch(prompt.OpSummary, func() {
		summary := o.runSummary(ctx, gen, text)
		mu.Lock()
		res.Summary = summary
		mu.Unlock()
	}))
	g.Go(o.branch(prompt.OpRisk, func() {
		risk := o.runRisk(ctx, gen, text, dctx)
		mu.Lock()
		res.Risk = risk
		mu.Unlock()
	}))
	g.Go(o.branch("prediction", func() {
		outcome, conf := o.predictor.Predict(fv)
		mu.Lock()
		res.PredictedOutcome = outcome
		res.PredictionConfidence = conf
		mu.Unlock()
	}))
	g.Go(o.branch(prompt.OpImpact, func() {
		impact := o.runImpact(ctx, gen, text)
		mu.Lock()
		res.Impact = impact
		mu.Unlock()
	}))
	_ = g.Wait()

	// Key points and recommendations run after the fan-out; recommendations
	// are seeded with the sentiment and risk computed above.
	res.KeyPoints = o.runKeyPoints(ctx, gen, text)
	res.Recommendations = o.runRecommendations(ctx, gen, res)
	res.Confidence = clampUnit((0.8 + 0.7 + res.PredictionConfidence) / 3)
	return res
}

// branch wraps a sub-analysis with panic recovery so one branch cannot take
// down the fan-out.
func (o *Orchestrator) branch(op string, run func()) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[Analyst] %s branch panicked: %v", op, r)
			}
		}()
		run()
		return nil
	}
}

// generate renders the operation prompt and calls the generator under the
// per-branch timeout. ok=false covers missing spec, missing generator and
// transport failure alike; the caller falls back.
func (o *Orchestrator) generate(ctx context.Context, gen provider.TextGenerator, op string, args map[string]string) (prompt.Spec, string, bool) {
	if o.registry == nil || gen == nil {
		return prompt.Spec{}, "", false
	}
	spec, ok := o.registry.Spec(op)
	if !ok {
		return spec, "", false
	}
	cctx, cancel := context.WithTimeout(ctx, o.subTimeout)
	defer cancel()
	system, user := spec.Render(args)
	raw, err := gen.Generate(cctx, provider.GenRequest{
		Op:          op,
		System:      system,
		User:        user,
		MaxTokens:   spec.MaxTokens,
		Temperature: spec.Temperature,
	})
	if err != nil {
		logger.Warnf("[Analyst] %s generation failed: %v", op, err)
		return spec, "", false
	}
	return spec, raw, true
}

func (o *Orchestrator) runSentiment(ctx context.Context, gen provider.TextGenerator, text string) float64 {
	if _, raw, ok := o.generate(ctx, gen, prompt.OpSentiment, map[string]string{"text": text}); ok {
		out := parseSentiment(raw)
		if out.OK {
			return out.Payload.(float64)
		}
		logger.Warnf("[Analyst] sentiment reply unusable: %v", out.Err)
	}
	return o.fallback.Sentiment(text)
}

func (o *Orchestrator) runSummary(ctx context.Context, gen provider.TextGenerator, text string) string {
	if _, raw, ok := o.generate(ctx, gen, prompt.OpSummary, map[string]string{"text": text}); ok {
		out := parseSummary(raw)
		if out.OK {
			return out.Payload.(string)
		}
		logger.Warnf("[Analyst] summary reply unusable: %v", out.Err)
	}
	return o.fallback.Summary(text)
}

func (o *Orchestrator) runRisk(ctx context.Context, gen provider.TextGenerator, text string, dctx types.DAOContext) types.RiskAssessment {
	args := map[string]string{
		"text": text,
		"context": fmt.Sprintf("DAO Treasury: $%s, Active Proposals: %d",
			convert.FormatThousands(dctx.TreasuryValueUSD), dctx.ActiveProposals),
	}
	if spec, raw, ok := o.generate(ctx, gen, prompt.OpRisk, args); ok {
		out := parseRisk(spec, raw)
		if out.OK {
			return out.Payload.(types.RiskAssessment)
		}
		logger.Warnf("[Analyst] risk reply unusable: %v", out.Err)
	}
	return o.fallback.Risk(text)
}

func (o *Orchestrator) runImpact(ctx context.Context, gen provider.TextGenerator, text string) types.ImpactAssessment {
	if spec, raw, ok := o.generate(ctx, gen, prompt.OpImpact, map[string]string{"text": text}); ok {
		out := parseImpact(spec, raw)
		if out.OK {
			return out.Payload.(types.ImpactAssessment)
		}
		logger.Warnf("[Analyst] impact reply unusable: %v", out.Err)
	}
	return o.fallback.Impact(text)
}

func (o *Orchestrator) runKeyPoints(ctx context.Context, gen provider.TextGenerator, text string) []string {
	if spec, raw, ok := o.generate(ctx, gen, prompt.OpKeyPoints, map[string]string{"text": text}); ok {
		out := parseKeyPoints(spec, raw)
		if out.OK {
			return out.Payload.([]string)
		}
		logger.Warnf("[Analyst] key points reply unusable: %v", out.Err)
	}
	return o.fallback.KeyPoints(text)
}

func (o *Orchestrator) runRecommendations(ctx context.Context, gen provider.TextGenerator, res types.AnalysisResult) []string {
	args := map[string]string{
		"context": fmt.Sprintf("Sentiment: %.2f, Risk: %s (score %.2f), Prediction: %.2f",
			res.Sentiment, res.Risk.Level, res.Risk.Score, res.PredictedOutcome),
	}
	if _, raw, ok := o.generate(ctx, gen, prompt.OpRecommendations, args); ok {
		out := parseRecommendations(raw)
		if out.OK {
			return out.Payload.([]string)
		}
		logger.Warnf("[Analyst] recommendations reply unusable: %v", out.Err)
	}
	return o.fallback.Recommendations(res.Sentiment, res.Risk)
}
