package enrichment

import (
	"strings"

	"github.com/medxp/handoff/internal/domain/knowledge"
)

// symptomVocabulary is the fixed term list scanned for in transcripts.
// Matching is substring containment against the lowercased transcript.
var symptomVocabulary = []string{
	"pain", "fever", "cough", "dyspnea", "shortness of breath", "bleeding",
	"hemoptysis", "nausea", "vomiting", "confusion", "delirium", "anxiety",
	"hypoxia", "tachycardia", "hypotension",
}

// ExtractContext flattens a patient record and transcript into a matching
// context. It is total: missing optional fields yield empty values, and it
// never fails for a structurally valid record.
func ExtractContext(p PatientRecord, transcript string) knowledge.Context {
	ctx := knowledge.Context{
		Labs:   make(map[string]float64),
		Vitals: make(map[string]float64),
	}

	// Diagnoses: primary first, then active problems, insertion order kept.
	if p.PrimaryDiagnosis != nil && *p.PrimaryDiagnosis != "" {
		ctx.Diagnoses = append(ctx.Diagnoses, strings.ToLower(*p.PrimaryDiagnosis))
	}
	for _, problem := range p.ActiveProblems {
		ctx.Diagnoses = append(ctx.Diagnoses, strings.ToLower(problem))
	}

	// Medications: names only, dose/status/time dropped.
	for _, med := range p.Medications {
		if med.Name == "" {
			continue
		}
		ctx.Medications = append(ctx.Medications, strings.ToLower(med.Name))
	}

	// Labs: name -> value; entries without both are dropped, later duplicate
	// names overwrite earlier ones.
	for _, lab := range p.RecentLabs {
		if lab.Name == "" || lab.Value == nil {
			continue
		}
		ctx.Labs[lab.Name] = *lab.Value
	}

	if p.RecentVitals != nil {
		v := p.RecentVitals
		for name, value := range map[string]*float64{
			"temp_c": v.TempC,
			"hr":     v.HR,
			"rr":     v.RR,
			"bp_sys": v.BPSys,
			"bp_dia": v.BPDia,
			"spo2":   v.SpO2,
		} {
			if value != nil {
				ctx.Vitals[knowledge.NormalizeVitalName(name)] = *value
			}
		}
	}

	transcriptLower := strings.ToLower(transcript)
	for _, symptom := range symptomVocabulary {
		if strings.Contains(transcriptLower, symptom) {
			ctx.Symptoms = append(ctx.Symptoms, symptom)
		}
	}

	ctx.Age = p.Age
	if p.CodeStatus != nil {
		ctx.CodeStatus = *p.CodeStatus
	}
	if p.Isolation != nil {
		ctx.Isolation = *p.Isolation
	}

	return ctx
}
