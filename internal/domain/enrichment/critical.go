package enrichment

import "fmt"

// labBounds is one analyte's critical range. Nil means no bound on that side.
type labBounds struct {
	low  *float64
	high *float64
	unit string
}

func bound(v float64) *float64 { return &v }

// criticalLabBounds is the fixed critical-value table. Bounds are exclusive:
// a value equal to the bound does not flag.
var criticalLabBounds = map[string]labBounds{
	"K":        {low: bound(2.5), high: bound(6.5), unit: "mmol/L"},
	"Na":       {low: bound(120), high: bound(160), unit: "mmol/L"},
	"Hgb":      {low: bound(7.0), unit: "g/dL"},
	"WBC":      {low: bound(0.5), high: bound(30.0), unit: "K/uL"},
	"Plt":      {low: bound(20.0), unit: "K/uL"},
	"Lactate":  {high: bound(4.0), unit: "mmol/L"},
	"Cr":       {high: bound(4.0), unit: "mg/dL"},
	"Troponin": {high: bound(0.5), unit: "ng/mL"},
}

// Vital cut points for the critical-value scan. These intentionally differ
// from the warning-rule cut points (SpO2 92, temp 38.0): the warning rules
// screen earlier, the critical scan flags frank derangement.
const (
	criticalSpO2Below     = 90.0
	criticalTempAtOrAbove = 38.5
)

// CheckCriticalValues scans the original lab records and the most recent
// vitals against the fixed threshold table. Labs are checked in record
// order; the low bound takes precedence when both could apply.
func CheckCriticalValues(labs []LabResult, vitals *VitalSigns) []CriticalValue {
	var out []CriticalValue

	for _, lab := range labs {
		bounds, ok := criticalLabBounds[lab.Name]
		if !ok || lab.Value == nil {
			continue
		}
		v := *lab.Value

		var flag string
		switch {
		case bounds.low != nil && v < *bounds.low:
			flag = "L"
		case bounds.high != nil && v > *bounds.high:
			flag = "H"
		default:
			continue
		}

		unit := lab.Unit
		if unit == "" {
			unit = bounds.unit
		}
		out = append(out, CriticalValue{
			Name:           lab.Name,
			Value:          v,
			Unit:           unit,
			Flag:           flag,
			ReferenceRange: formatRange(bounds.low, bounds.high),
		})
	}

	if vitals != nil {
		if vitals.SpO2 != nil && *vitals.SpO2 < criticalSpO2Below {
			out = append(out, CriticalValue{
				Name:           "SpO2",
				Value:          *vitals.SpO2,
				Unit:           "%",
				Flag:           "L",
				ReferenceRange: ">92%",
			})
		}
		if vitals.TempC != nil && *vitals.TempC >= criticalTempAtOrAbove {
			out = append(out, CriticalValue{
				Name:           "Temperature",
				Value:          *vitals.TempC,
				Unit:           "°C",
				Flag:           "H",
				ReferenceRange: "36.5-38.0°C",
			})
		}
	}

	return out
}

func formatRange(low, high *float64) string {
	l, h := "N/A", "N/A"
	if low != nil {
		l = fmt.Sprintf("%g", *low)
	}
	if high != nil {
		h = fmt.Sprintf("%g", *high)
	}
	return l + "-" + h
}
