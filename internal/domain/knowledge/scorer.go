package knowledge

import (
	"fmt"
	"sort"
	"strings"
)

// Scoring weights. Keyword weights depend on where the keyword was found;
// trigger weights depend on the trigger category. The total score is the
// unweighted sum of all contributions and is therefore always >= 0.
const (
	weightKeywordDiagnosis  = 10.0
	weightKeywordMedication = 5.0
	weightKeywordSymptom    = 5.0
	weightKeywordToken      = 3.0
	weightTriggerLab        = 8.0
	weightTriggerVital      = 7.0
	weightTriggerDiagnosis  = 10.0
	weightTriggerMedication = 6.0
)

// Score rates one knowledge item against a matching context and the raw
// transcript. It returns the total relevance score and the ordered evidence
// tags that produced it. The computation is pure: identical inputs always
// yield identical output.
func Score(item Item, ctx Context, transcript string) (float64, []string) {
	score, evidence := keywordScore(item.Keywords, ctx, transcript)
	if item.Triggers != nil {
		ts, tev := triggerScore(*item.Triggers, ctx)
		score += ts
		evidence = append(evidence, tev...)
	}
	return score, evidence
}

// keywordScore evaluates each item keyword in strict precedence order:
// diagnosis substring, then medication, then symptom, then token overlap.
// A keyword contributes at most once.
func keywordScore(keywords []string, ctx Context, transcript string) (float64, []string) {
	searchTerms := Tokenize(strings.Join(ctx.Diagnoses, " "))
	addTokens(searchTerms, strings.Join(ctx.Medications, " "))
	addTokens(searchTerms, strings.Join(ctx.Symptoms, " "))
	addTokens(searchTerms, transcript)

	var score float64
	var matched []string
	for _, keyword := range keywords {
		lower := strings.ToLower(keyword)

		if containsSubstring(ctx.Diagnoses, lower) {
			score += weightKeywordDiagnosis
			matched = append(matched, "diagnosis:"+keyword)
			continue
		}
		if containsSubstring(ctx.Medications, lower) {
			score += weightKeywordMedication
			matched = append(matched, "medication:"+keyword)
			continue
		}
		if containsSubstring(ctx.Symptoms, lower) {
			score += weightKeywordSymptom
			matched = append(matched, "symptom:"+keyword)
			continue
		}
		if tokensIntersect(Tokenize(lower), searchTerms) {
			score += weightKeywordToken
			matched = append(matched, "keyword:"+keyword)
		}
	}
	return score, matched
}

// triggerScore evaluates the structured trigger conditions. Lab and vital
// trigger names are iterated in sorted order so evidence ordering is
// deterministic.
func triggerScore(triggers TriggerSet, ctx Context) (float64, []string) {
	var score float64
	var matched []string

	for _, name := range sortedKeys(triggers.Labs) {
		value, ok := ctx.Labs[name]
		if !ok {
			continue
		}
		if conditionHolds(triggers.Labs[name], value, false) {
			score += weightTriggerLab
			matched = append(matched, fmt.Sprintf("lab_trigger:%s=%g", name, value))
		}
	}

	for _, name := range sortedKeys(triggers.Vitals) {
		value, ok := ctx.Vitals[NormalizeVitalName(name)]
		if !ok {
			continue
		}
		// Vital triggers support lt/gt only.
		if conditionHolds(triggers.Vitals[name], value, true) {
			score += weightTriggerVital
			matched = append(matched, fmt.Sprintf("vital_trigger:%s=%g", name, value))
		}
	}

	for _, dx := range triggers.Diagnoses {
		if containsSubstring(ctx.Diagnoses, strings.ToLower(dx)) {
			score += weightTriggerDiagnosis
			matched = append(matched, "diagnosis_trigger:"+dx)
		}
	}

	for _, med := range triggers.Medications {
		if containsSubstring(ctx.Medications, strings.ToLower(med)) {
			score += weightTriggerMedication
			matched = append(matched, "medication_trigger:"+med)
		}
	}

	return score, matched
}

func conditionHolds(tr Trigger, value float64, vitalsOnly bool) bool {
	switch tr.Operator {
	case OperatorLT:
		return value < tr.Threshold
	case OperatorGT:
		return value > tr.Threshold
	case OperatorEQ:
		return !vitalsOnly && value == tr.Threshold
	default:
		return false
	}
}

func containsSubstring(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func tokensIntersect(a, b map[string]struct{}) bool {
	for t := range a {
		if _, ok := b[t]; ok {
			return true
		}
	}
	return false
}

func addTokens(dst map[string]struct{}, text string) {
	for t := range Tokenize(text) {
		dst[t] = struct{}{}
	}
}

func sortedKeys(m map[string]Trigger) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
