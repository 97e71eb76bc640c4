package analyst

import (
	"math"
	"strings"
	"unicode"

	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

// trainingExample is one labelled historical proposal the outcome predictor
// is fitted from.
type trainingExample struct {
	text       string
	reputation float64
	complexity float64
	sentiment  float64
	financial  float64
	passed     bool
}

var trainingSet = []trainingExample{
	{"Increase treasury allocation to DeFi protocols", 0.8, 0.6, 0.7, 0.8, true},
	{"Reduce governance token supply", 0.6, 0.8, 0.3, 0.9, false},
	{"Add new validator to the network", 0.9, 0.4, 0.8, 0.3, true},
	{"Update smart contract parameters", 0.7, 0.7, 0.5, 0.6, false},
	{"Distribute rewards to token holders", 0.5, 0.3, 0.9, 0.7, true},
	{"Implement new security measures", 0.8, 0.9, 0.6, 0.5, true},
	{"Change voting mechanism", 0.4, 0.8, 0.2, 0.8, false},
	{"Allocate funds for development", 0.7, 0.5, 0.7, 0.6, true},
	{"Update tokenomics model", 0.6, 0.7, 0.4, 0.8, false},
	{"Implement cross-chain bridge", 0.8, 0.6, 0.7, 0.5, true},
}

var stopwords = map[string]struct{}{
	"the": {}, "to": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"in": {}, "on": {}, "for": {}, "with": {}, "by": {}, "at": {}, "from": {},
	"is": {}, "are": {}, "be": {}, "this": {}, "that": {},
}

// Gains scale the centered signals into sigmoid range; chosen so the fitted
// examples separate cleanly while unseen text stays near the base rate.
const (
	textGain    = 2.0
	featureGain = 4.0
)

// Predictor estimates the pass probability of a proposal from a
// term-frequency text signal and a logistic combination of the numeric
// features. It is fitted once at construction and immutable afterwards.
type Predictor struct {
	vocab          map[string]int
	passedCentroid []float64
	failedCentroid []float64
	weights        [4]float64
	means          [4]float64
	bias           float64
}

func NewPredictor() *Predictor {
	p := &Predictor{vocab: map[string]int{}}
	for _, ex := range trainingSet {
		for _, tok := range tokenize(ex.text) {
			if _, ok := p.vocab[tok]; !ok {
				p.vocab[tok] = len(p.vocab)
			}
		}
	}
	p.passedCentroid = make([]float64, len(p.vocab))
	p.failedCentroid = make([]float64, len(p.vocab))

	var nPassed, nFailed float64
	var sumAll, sumPassed, sumFailed [4]float64
	for _, ex := range trainingSet {
		vec := p.vectorize(ex.text)
		feats := [4]float64{ex.reputation, ex.complexity, ex.sentiment, ex.financial}
		for j := range feats {
			sumAll[j] += feats[j]
		}
		if ex.passed {
			addTo(p.passedCentroid, vec)
			nPassed++
			for j := range feats {
				sumPassed[j] += feats[j]
			}
		} else {
			addTo(p.failedCentroid, vec)
			nFailed++
			for j := range feats {
				sumFailed[j] += feats[j]
			}
		}
	}
	normalize(p.passedCentroid)
	normalize(p.failedCentroid)
	for j := 0; j < 4; j++ {
		p.means[j] = sumAll[j] / float64(len(trainingSet))
		p.weights[j] = sumPassed[j]/nPassed - sumFailed[j]/nFailed
	}
	p.bias = math.Log(nPassed / nFailed)
	return p
}

// Predict returns the pass probability and the confidence of that call
// (probability of the majority class). A nil or unfitted predictor yields
// the neutral pair.
func (p *Predictor) Predict(fv types.FeatureVector) (outcome, confidence float64) {
	if p == nil || len(p.vocab) == 0 {
		return 0.5, 0.5
	}
	complexity := fv.ProposalComplexity
	if complexity == 0 {
		complexity = float64(len(strings.Fields(fv.ProposalText))) / 100
	}
	vec := p.vectorize(fv.ProposalText)
	textSignal := dot(vec, p.passedCentroid) - dot(vec, p.failedCentroid)

	x := [4]float64{fv.ProposerReputation, complexity, fv.CommunitySentiment, fv.FinancialImpact}
	z := p.bias + textGain*textSignal
	for j := 0; j < 4; j++ {
		z += featureGain * p.weights[j] * (x[j] - p.means[j])
	}
	outcome = 1 / (1 + math.Exp(-z))
	confidence = math.Max(outcome, 1-outcome)
	return outcome, confidence
}

func (p *Predictor) vectorize(text string) []float64 {
	vec := make([]float64, len(p.vocab))
	for _, tok := range tokenize(text) {
		if idx, ok := p.vocab[tok]; ok {
			vec[idx]++
		}
	}
	normalize(vec)
	return vec
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func addTo(dst, src []float64) {
	for i := range src {
		dst[i] += src[i]
	}
}

func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	n := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= n
	}
}

func dot(a, b []float64) float64 {
	var out float64
	for i := range a {
		out += a[i] * b[i]
	}
	return out
}
