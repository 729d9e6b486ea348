package enrichment

import (
	"encoding/json"
	"time"
)

// Warning severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Warning types.
const (
	WarningContraindication = "contraindication"
	WarningClinicalAlert    = "clinical_alert"
	WarningAllergy          = "allergy"
	WarningDocumentation    = "documentation"
	WarningDrugInteraction  = "drug_interaction"
	WarningProtocolTrigger  = "protocol_trigger"
)

// Medication is one entry of the patient's medication list.
type Medication struct {
	Name   string     `json:"name"`
	Dose   string     `json:"dose,omitempty"`
	Status *string    `json:"status,omitempty"`
	Time   *time.Time `json:"time,omitempty"`
}

// VitalSigns is the most recent vitals record. Decoding is tolerant: each
// field accepts its canonical spelling and the source system's alias
// (temp_c/Temp_C, spo2/SpO2, ...), and non-numeric values drop that single
// field rather than failing the record.
type VitalSigns struct {
	Time  *time.Time `json:"time,omitempty"`
	TempC *float64   `json:"temp_c,omitempty"`
	HR    *float64   `json:"hr,omitempty"`
	RR    *float64   `json:"rr,omitempty"`
	BPSys *float64   `json:"bp_sys,omitempty"`
	BPDia *float64   `json:"bp_dia,omitempty"`
	SpO2  *float64   `json:"spo2,omitempty"`
}

// vitalAliases maps accepted input spellings to canonical field keys.
var vitalAliases = map[string]string{
	"temp_c": "temp_c", "Temp_C": "temp_c", "TEMP_C": "temp_c",
	"hr": "hr", "HR": "hr",
	"rr": "rr", "RR": "rr",
	"bp_sys": "bp_sys", "BP_sys": "bp_sys", "BP_SYS": "bp_sys",
	"bp_dia": "bp_dia", "BP_dia": "bp_dia", "BP_DIA": "bp_dia",
	"spo2": "spo2", "SpO2": "spo2", "SPO2": "spo2",
}

// UnmarshalJSON implements the tolerant decoding described on VitalSigns.
func (v *VitalSigns) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, val := range raw {
		if key == "time" {
			var t time.Time
			if err := json.Unmarshal(val, &t); err == nil {
				v.Time = &t
			}
			continue
		}
		canonical, ok := vitalAliases[key]
		if !ok {
			continue
		}
		var num float64
		if err := json.Unmarshal(val, &num); err != nil {
			// Non-numeric value: drop the field, keep the record.
			continue
		}
		n := num
		switch canonical {
		case "temp_c":
			v.TempC = &n
		case "hr":
			v.HR = &n
		case "rr":
			v.RR = &n
		case "bp_sys":
			v.BPSys = &n
		case "bp_dia":
			v.BPDia = &n
		case "spo2":
			v.SpO2 = &n
		}
	}
	return nil
}

// LabResult is one laboratory measurement. A non-numeric value leaves Value
// nil; the extractor drops such entries instead of failing.
type LabResult struct {
	Time  *time.Time `json:"time,omitempty"`
	Name  string     `json:"name"`
	Value *float64   `json:"value,omitempty"`
	Unit  string     `json:"unit,omitempty"`
	Flag  string     `json:"flag,omitempty"`
}

// UnmarshalJSON tolerates a non-numeric value field.
func (l *LabResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Time  *time.Time      `json:"time"`
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
		Unit  string          `json:"unit"`
		Flag  string          `json:"flag"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.Time = raw.Time
	l.Name = raw.Name
	l.Unit = raw.Unit
	l.Flag = raw.Flag
	if len(raw.Value) > 0 {
		var num float64
		if err := json.Unmarshal(raw.Value, &num); err == nil {
			l.Value = &num
		}
	}
	return nil
}

// PatientRecord is the typed patient input. Everything not guaranteed
// present is optional; validation happens here at the boundary, not in the
// scoring logic.
type PatientRecord struct {
	PatientID        string      `json:"patient_id"`
	Name             *string     `json:"name,omitempty"`
	Age              *int        `json:"age,omitempty"`
	Gender           *string     `json:"gender,omitempty"`
	Room             *string     `json:"room,omitempty"`
	MRN              *string     `json:"mrn,omitempty"`
	PrimaryDiagnosis *string     `json:"primary_diagnosis,omitempty"`
	ActiveProblems   []string    `json:"active_problems,omitempty"`
	Allergies        []string    `json:"allergies,omitempty"`
	CodeStatus       *string     `json:"code_status,omitempty"`
	Isolation        *string     `json:"isolation,omitempty"`
	LinesDrains      []string    `json:"lines_drains,omitempty"`
	Medications      []Medication `json:"current_medications,omitempty"`
	RecentVitals     *VitalSigns `json:"recent_vitals,omitempty"`
	RecentLabs       []LabResult `json:"recent_labs,omitempty"`
}

// Provider identifies the clinician in the session.
type Provider struct {
	StaffID string  `json:"staff_id"`
	Name    *string `json:"name,omitempty"`
	Role    *string `json:"role,omitempty"`
}

// EnrichmentRequest is the input to one enrichment operation.
type EnrichmentRequest struct {
	SessionID  string        `json:"session_id"`
	Timestamp  *time.Time    `json:"timestamp,omitempty"`
	Patient    PatientRecord `json:"patient"`
	Provider   *Provider     `json:"provider,omitempty"`
	Transcript string        `json:"transcript"`
}

// CriticalValue is a lab or vital measurement outside its safe range.
type CriticalValue struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	Flag           string  `json:"flag"`
	ReferenceRange string  `json:"reference_range,omitempty"`
}

// PatientSummary is the clinical headline of the response.
type PatientSummary struct {
	KeyDiagnoses   []string        `json:"key_diagnoses"`
	RiskFactors    []string        `json:"risk_factors"`
	CriticalValues []CriticalValue `json:"critical_values"`
}

// RelevantSOP is the public shape of one procedure match.
type RelevantSOP struct {
	SOPID           string   `json:"sop_id"`
	Title           string   `json:"title"`
	RelevanceReason string   `json:"relevance_reason"`
	KeySteps        []string `json:"key_steps"`
	Priority        string   `json:"priority,omitempty"`
}

// ApplicablePolicy is the public shape of one policy match.
type ApplicablePolicy struct {
	PolicyID         string  `json:"policy_id"`
	Title            string  `json:"title"`
	Requirement      string  `json:"requirement"`
	ComplianceStatus *string `json:"compliance_status,omitempty"`
}

// TreatmentGuideline is the public shape of one guideline match.
type TreatmentGuideline struct {
	GuidelineID    string  `json:"guideline_id"`
	Source         string  `json:"source"`
	Title          string  `json:"title"`
	Recommendation string  `json:"recommendation"`
	EvidenceLevel  *string `json:"evidence_level,omitempty"`
}

// Warning is one fired safety rule.
type Warning struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Evidence       string `json:"evidence,omitempty"`
	ActionRequired string `json:"action_required,omitempty"`
}

// Metadata describes the enrichment run itself.
type Metadata struct {
	ProcessingTimeMS  int64    `json:"processing_time_ms"`
	SourcesConsulted  []string `json:"sources_consulted"`
	LLMCalls          int      `json:"llm_calls"`
	EnrichmentVersion string   `json:"enrichment_version"`
}

// EnrichmentResponse is the aggregate result of one enrichment operation.
type EnrichmentResponse struct {
	SessionID           string               `json:"session_id"`
	EnrichedAt          time.Time            `json:"enriched_at"`
	PatientSummary      PatientSummary       `json:"patient_summary"`
	RelevantSOPs        []RelevantSOP        `json:"relevant_sops"`
	ApplicablePolicies  []ApplicablePolicy   `json:"applicable_policies"`
	TreatmentGuidelines []TreatmentGuideline `json:"treatment_guidelines"`
	Warnings            []Warning            `json:"warnings"`
	Metadata            Metadata             `json:"metadata"`
}
