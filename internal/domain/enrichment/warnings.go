package enrichment

import (
	"fmt"
	"strings"

	"github.com/medxp/handoff/internal/domain/knowledge"
)

// Drug classes matched by name substring against the medication list.
var (
	anticoagulants = []string{"enoxaparin", "heparin", "warfarin", "rivaroxaban", "apixaban"}
	opioids        = []string{"morphine", "hydromorphone", "oxycodone", "fentanyl"}
	sedatives      = []string{"lorazepam", "diazepam", "midazolam", "alprazolam"}
	betaLactams    = []string{"piperacillin", "ampicillin"}
)

// Warning-rule cut points. Distinct from the critical-value scan on purpose:
// the neutropenic-fever rule fires at 38.0 while the critical scan flags at
// 38.5, and the hypoxia rule fires below 92 while the critical scan flags
// below 90.
const (
	neutropenicFeverAtOrAbove = 38.0
	hypoxiaWarnBelow          = 92.0
)

// protocolTriggerLimit bounds how many top procedure matches can raise a
// protocol warning.
const protocolTriggerLimit = 2

// GenerateWarnings evaluates the fixed, ordered safety-rule battery against
// the patient record and the top procedure matches. Rules are independent:
// each appends at most one warning and none suppresses another.
func GenerateWarnings(p PatientRecord, topSOPs []knowledge.Result) []Warning {
	var warnings []Warning

	medications := make([]string, 0, len(p.Medications))
	for _, med := range p.Medications {
		medications = append(medications, strings.ToLower(med.Name))
	}
	problems := make([]string, 0, len(p.ActiveProblems))
	for _, prob := range p.ActiveProblems {
		problems = append(problems, strings.ToLower(prob))
	}

	// 1. Anticoagulation with active bleeding.
	if matchesAnyClass(medications, anticoagulants) &&
		(anySubstring(problems, "hemoptysis") || anySubstring(problems, "bleeding")) {
		warnings = append(warnings, Warning{
			Type:           WarningContraindication,
			Severity:       SeverityHigh,
			Message:        "Patient on anticoagulation with active hemoptysis - review need for anticoagulation",
			Evidence:       "Active bleeding is a contraindication to anticoagulation",
			ActionRequired: "Consult physician about holding anticoagulation",
		})
	}

	// 2. Neutropenic fever.
	if anySubstring(problems, "neutropenia") && p.RecentVitals != nil &&
		p.RecentVitals.TempC != nil && *p.RecentVitals.TempC >= neutropenicFeverAtOrAbove {
		warnings = append(warnings, Warning{
			Type:           WarningClinicalAlert,
			Severity:       SeverityCritical,
			Message:        "Neutropenic fever - requires immediate evaluation and antibiotics",
			Evidence:       fmt.Sprintf("Temperature %g°C in neutropenic patient", *p.RecentVitals.TempC),
			ActionRequired: "Blood cultures and broad-spectrum antibiotics within 60 minutes",
		})
	}

	// 3. Hypoxia.
	if p.RecentVitals != nil && p.RecentVitals.SpO2 != nil && *p.RecentVitals.SpO2 < hypoxiaWarnBelow {
		warnings = append(warnings, Warning{
			Type:           WarningClinicalAlert,
			Severity:       SeverityHigh,
			Message:        fmt.Sprintf("Hypoxia detected (SpO2 %g%%) - assess respiratory status", *p.RecentVitals.SpO2),
			Evidence:       "SpO2 below target threshold",
			ActionRequired: "Titrate oxygen, assess work of breathing, consider chest imaging",
		})
	}

	// 4. Penicillin allergy with a beta-lactam on board.
	if hasPenicillinAllergy(p.Allergies) && matchesAnyClass(medications, betaLactams) {
		warnings = append(warnings, Warning{
			Type:           WarningAllergy,
			Severity:       SeverityHigh,
			Message:        "Patient has penicillin allergy - verify beta-lactam safety",
			Evidence:       "Penicillin allergy documented",
			ActionRequired: "Confirm reaction type and appropriateness of current antibiotics",
		})
	}

	// 5. Code status documentation.
	if p.CodeStatus == nil || strings.EqualFold(*p.CodeStatus, "unknown") || *p.CodeStatus == "" {
		warnings = append(warnings, Warning{
			Type:           WarningDocumentation,
			Severity:       SeverityMedium,
			Message:        "Code status not clearly documented",
			Evidence:       "Code status field missing or unknown",
			ActionRequired: "Verify and document code status with patient/family",
		})
	}

	// 6. Opioid plus benzodiazepine/sedative.
	if matchesAnyClass(medications, opioids) && matchesAnyClass(medications, sedatives) {
		warnings = append(warnings, Warning{
			Type:           WarningDrugInteraction,
			Severity:       SeverityMedium,
			Message:        "Concurrent opioid and benzodiazepine use - monitor for respiratory depression",
			Evidence:       "Both drug classes present in medication list",
			ActionRequired: "Monitor respiratory rate and sedation level",
		})
	}

	// 7. High-priority procedure matches.
	limit := protocolTriggerLimit
	if len(topSOPs) < limit {
		limit = len(topSOPs)
	}
	for _, sop := range topSOPs[:limit] {
		if priority, _ := sop.Content["priority"].(string); priority != "high" {
			continue
		}
		warnings = append(warnings, Warning{
			Type:           WarningProtocolTrigger,
			Severity:       SeverityMedium,
			Message:        "Relevant protocol triggered: " + sop.Title,
			Evidence:       joinFirst(sop.Matched, 3),
			ActionRequired: fmt.Sprintf("Review SOP %s and ensure compliance", sop.ItemID),
		})
	}

	return warnings
}

func hasPenicillinAllergy(allergies []string) bool {
	for _, a := range allergies {
		if strings.Contains(strings.ToLower(a), "penicillin") {
			return true
		}
	}
	return false
}

// matchesAnyClass reports whether any medication name contains any of the
// class's drug names.
func matchesAnyClass(medications, class []string) bool {
	for _, med := range medications {
		for _, drug := range class {
			if strings.Contains(med, drug) {
				return true
			}
		}
	}
	return false
}

func anySubstring(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func joinFirst(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}
