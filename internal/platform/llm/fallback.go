package llm

import (
	"context"
	"strings"
)

// Fallback is the deterministic summarizer implementation. It never leaves
// the process and never reports a remote call.
type Fallback struct{}

// NewFallback creates a Fallback summarizer.
func NewFallback() *Fallback { return &Fallback{} }

// SummarizePatientContext implements the same contract as Client without any
// external dependency.
func (f *Fallback) SummarizePatientContext(_ context.Context, facts PatientFacts, _ string) (Summary, bool) {
	return FallbackSummary(facts), false
}

// anticoagulant names matched exactly against lowercased medication names.
var fallbackAnticoagulants = map[string]bool{
	"enoxaparin": true, "heparin": true, "warfarin": true,
}

// FallbackSummary derives risk factors from the patient facts with fixed
// rules. The result is deterministic for identical input.
func FallbackSummary(facts PatientFacts) Summary {
	var risks []string

	problems := make([]string, len(facts.ActiveProblems))
	for i, p := range facts.ActiveProblems {
		problems[i] = strings.ToLower(p)
	}

	if anyContains(problems, "neutropenia") {
		risks = append(risks, "Neutropenic - high infection risk")
	}
	if anyContains(problems, "hemoptysis") || anyContains(problems, "bleeding") {
		risks = append(risks, "Active bleeding/hemoptysis - review anticoagulation")
	}
	if anyContains(problems, "hypoxia") {
		risks = append(risks, "Hypoxia - monitor respiratory status closely")
	}
	if anyContains(problems, "delirium") || anyContains(problems, "falls") {
		risks = append(risks, "Fall/delirium risk - safety precautions needed")
	}
	if anyContains(problems, "sepsis") {
		risks = append(risks, "Sepsis concern - monitor for deterioration")
	}

	for _, med := range facts.Medications {
		if fallbackAnticoagulants[strings.ToLower(med)] {
			risks = append(risks, "On anticoagulation therapy")
			break
		}
	}

	diagnosis := strings.ToLower(facts.PrimaryDiagnosis)
	if strings.Contains(diagnosis, "nsclc") || strings.Contains(diagnosis, "lung cancer") {
		if strings.Contains(diagnosis, "stage iv") || strings.Contains(diagnosis, "stage 4") {
			risks = append(risks, "Advanced stage cancer - goals of care important")
		}
		if strings.Contains(diagnosis, "brain met") {
			risks = append(risks, "Brain metastases - monitor neurologic status")
		}
	}

	if len(risks) == 0 {
		risks = []string{"Standard oncology precautions apply"}
	}
	return Summary{RiskFactors: risks}
}

func anyContains(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
