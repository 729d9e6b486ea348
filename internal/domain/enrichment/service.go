package enrichment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/medxp/handoff/internal/domain/knowledge"
	"github.com/medxp/handoff/internal/platform/llm"
)

// EnrichmentVersion is stamped into response metadata.
const EnrichmentVersion = "1.0"

// Summarizer produces the patient risk summary. The bool result reports
// whether a remote model call was attempted.
type Summarizer interface {
	SummarizePatientContext(ctx context.Context, facts llm.PatientFacts, transcript string) (llm.Summary, bool)
}

// Service runs the enrichment pipeline: context extraction, knowledge
// retrieval across the three collections, critical-value scan, warning
// battery, and summary assembly.
type Service struct {
	store      *knowledge.Store
	retriever  *knowledge.Retriever
	summarizer Summarizer
	version    string
	logger     zerolog.Logger
}

// NewService creates an enrichment service over a loaded knowledge store.
func NewService(store *knowledge.Store, retriever *knowledge.Retriever, summarizer Summarizer, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		retriever:  retriever,
		summarizer: summarizer,
		version:    EnrichmentVersion,
		logger:     logger,
	}
}

// Enrich runs the full pipeline for one request. It is total: any
// structurally valid request produces a complete response, degrading to
// empty sections and the deterministic summary rather than failing.
func (s *Service) Enrich(ctx context.Context, req EnrichmentRequest) EnrichmentResponse {
	start := time.Now()

	matchCtx := ExtractContext(req.Patient, req.Transcript)

	sops := s.retriever.Retrieve(s.store.Collection(knowledge.SourceSOP), matchCtx, req.Transcript, 0)
	policies := s.retriever.Retrieve(s.store.Collection(knowledge.SourcePolicy), matchCtx, req.Transcript, 0)
	guidelines := s.retriever.Retrieve(s.store.Collection(knowledge.SourceGuideline), matchCtx, req.Transcript, 0)

	sources := make([]string, 0, 3)
	if len(sops) > 0 {
		sources = append(sources, "sops")
	}
	if len(policies) > 0 {
		sources = append(sources, "policies")
	}
	if len(guidelines) > 0 {
		sources = append(sources, "guidelines")
	}

	criticals := CheckCriticalValues(req.Patient.RecentLabs, req.Patient.RecentVitals)
	warnings := GenerateWarnings(req.Patient, sops)

	summary, remoteCalled := s.summarizer.SummarizePatientContext(ctx, patientFacts(req.Patient), req.Transcript)
	llmCalls := 0
	if remoteCalled {
		llmCalls = 1
	}

	s.logger.Debug().
		Str("session_id", req.SessionID).
		Int("sops", len(sops)).
		Int("policies", len(policies)).
		Int("guidelines", len(guidelines)).
		Int("warnings", len(warnings)).
		Int("critical_values", len(criticals)).
		Bool("remote_summary", remoteCalled).
		Msg("enrichment pipeline complete")

	return EnrichmentResponse{
		SessionID:  req.SessionID,
		EnrichedAt: time.Now().UTC(),
		PatientSummary: PatientSummary{
			KeyDiagnoses:   keyDiagnoses(req.Patient),
			RiskFactors:    summary.RiskFactors,
			CriticalValues: criticals,
		},
		RelevantSOPs:        formatSOPs(sops),
		ApplicablePolicies:  formatPolicies(policies),
		TreatmentGuidelines: formatGuidelines(guidelines),
		Warnings:            warnings,
		Metadata: Metadata{
			ProcessingTimeMS:  time.Since(start).Milliseconds(),
			SourcesConsulted:  sources,
			LLMCalls:          llmCalls,
			EnrichmentVersion: s.version,
		},
	}
}

// keyDiagnoses is the primary diagnosis followed by up to five active
// problems, original casing preserved.
func keyDiagnoses(p PatientRecord) []string {
	var out []string
	if p.PrimaryDiagnosis != nil && *p.PrimaryDiagnosis != "" {
		out = append(out, *p.PrimaryDiagnosis)
	}
	problems := p.ActiveProblems
	if len(problems) > 5 {
		problems = problems[:5]
	}
	return append(out, problems...)
}

func patientFacts(p PatientRecord) llm.PatientFacts {
	facts := llm.PatientFacts{
		ActiveProblems: p.ActiveProblems,
		Allergies:      p.Allergies,
	}
	if p.PrimaryDiagnosis != nil {
		facts.PrimaryDiagnosis = *p.PrimaryDiagnosis
	}
	if p.CodeStatus != nil {
		facts.CodeStatus = *p.CodeStatus
	}
	for _, med := range p.Medications {
		if med.Name != "" {
			facts.Medications = append(facts.Medications, med.Name)
		}
	}
	return facts
}

func formatSOPs(results []knowledge.Result) []RelevantSOP {
	out := make([]RelevantSOP, 0, len(results))
	for _, r := range results {
		out = append(out, RelevantSOP{
			SOPID:           r.ItemID,
			Title:           r.Title,
			RelevanceReason: joinFirst(r.Matched, 3),
			KeySteps:        stringSlice(r.Content["steps"], 5),
			Priority:        stringOr(r.Content["priority"], "medium"),
		})
	}
	return out
}

func formatPolicies(results []knowledge.Result) []ApplicablePolicy {
	out := make([]ApplicablePolicy, 0, len(results))
	for _, r := range results {
		out = append(out, ApplicablePolicy{
			PolicyID:    r.ItemID,
			Title:       r.Title,
			Requirement: stringOr(r.Content["requirement"], ""),
		})
	}
	return out
}

// guidelineStageOrder is the preference order used when a guideline carries
// per-stage recommendations: the most advanced stage present wins.
var guidelineStageOrder = []string{"Stage IV", "Stage III", "Stage II", "Stage I"}

func formatGuidelines(results []knowledge.Result) []TreatmentGuideline {
	out := make([]TreatmentGuideline, 0, len(results))
	for _, r := range results {
		recommendation := stringOr(r.Content["recommendation"], "")
		if stages, ok := r.Content["stages"].(map[string]any); ok {
			for _, stage := range guidelineStageOrder {
				info, ok := stages[stage].(map[string]any)
				if !ok {
					continue
				}
				if rec, ok := info["recommendation"].(string); ok && rec != "" {
					recommendation = rec
				}
				break
			}
		}

		g := TreatmentGuideline{
			GuidelineID:    r.ItemID,
			Source:         stringOr(r.Content["source"], "Clinical Guidelines"),
			Title:          r.Title,
			Recommendation: recommendation,
		}
		if level, ok := r.Content["evidence_level"].(string); ok && level != "" {
			g.EvidenceLevel = &level
		}
		out = append(out, g)
	}
	return out
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// stringSlice coerces a decoded JSON array into at most n strings,
// skipping non-string elements.
func stringSlice(v any, n int) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, n)
	for _, item := range raw {
		if len(out) == n {
			break
		}
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
