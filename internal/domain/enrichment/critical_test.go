package enrichment

import "testing"

func TestCheckCriticalValues_ExclusiveBounds(t *testing.T) {
	// 2.5 sits exactly on the low bound and must not flag; 2.4 must.
	labs := []LabResult{
		{Name: "K", Value: fptr(2.5)},
		{Name: "K", Value: fptr(2.4)},
	}
	out := CheckCriticalValues(labs, nil)
	if len(out) != 1 {
		t.Fatalf("expected 1 critical value, got %d", len(out))
	}
	if out[0].Value != 2.4 || out[0].Flag != "L" {
		t.Errorf("unexpected critical value: %+v", out[0])
	}
}

func TestCheckCriticalValues_HighBound(t *testing.T) {
	labs := []LabResult{
		{Name: "K", Value: fptr(6.5)},
		{Name: "K", Value: fptr(6.6)},
	}
	out := CheckCriticalValues(labs, nil)
	if len(out) != 1 || out[0].Flag != "H" {
		t.Fatalf("expected one H flag, got %+v", out)
	}
	if out[0].ReferenceRange != "2.5-6.5" {
		t.Errorf("unexpected reference range: %s", out[0].ReferenceRange)
	}
}

func TestCheckCriticalValues_OneSidedBounds(t *testing.T) {
	labs := []LabResult{
		{Name: "Lactate", Value: fptr(4.5)},
		{Name: "Hgb", Value: fptr(6.8)},
	}
	out := CheckCriticalValues(labs, nil)
	if len(out) != 2 {
		t.Fatalf("expected 2 critical values, got %d", len(out))
	}
	if out[0].Name != "Lactate" || out[0].Flag != "H" || out[0].ReferenceRange != "N/A-4" {
		t.Errorf("unexpected lactate entry: %+v", out[0])
	}
	if out[1].Name != "Hgb" || out[1].Flag != "L" || out[1].ReferenceRange != "7-N/A" {
		t.Errorf("unexpected hgb entry: %+v", out[1])
	}
}

func TestCheckCriticalValues_UnitFallback(t *testing.T) {
	labs := []LabResult{
		{Name: "Troponin", Value: fptr(0.8)},
		{Name: "Cr", Value: fptr(4.2), Unit: "custom"},
	}
	out := CheckCriticalValues(labs, nil)
	if out[0].Unit != "ng/mL" {
		t.Errorf("missing unit must fall back to the table, got %q", out[0].Unit)
	}
	if out[1].Unit != "custom" {
		t.Errorf("record unit must win, got %q", out[1].Unit)
	}
}

func TestCheckCriticalValues_UnknownAnalyteIgnored(t *testing.T) {
	labs := []LabResult{{Name: "CA-125", Value: fptr(9999)}}
	if out := CheckCriticalValues(labs, nil); len(out) != 0 {
		t.Errorf("unknown analyte must be ignored, got %+v", out)
	}
}

func TestCheckCriticalValues_NilValueIgnored(t *testing.T) {
	labs := []LabResult{{Name: "K"}}
	if out := CheckCriticalValues(labs, nil); len(out) != 0 {
		t.Errorf("nil value must be ignored, got %+v", out)
	}
}

func TestCheckCriticalValues_SpO2Boundary(t *testing.T) {
	// 90 is not critical; 89 is.
	out := CheckCriticalValues(nil, &VitalSigns{SpO2: fptr(90)})
	if len(out) != 0 {
		t.Errorf("SpO2 90 must not flag, got %+v", out)
	}
	out = CheckCriticalValues(nil, &VitalSigns{SpO2: fptr(89)})
	if len(out) != 1 || out[0].Flag != "L" || out[0].ReferenceRange != ">92%" {
		t.Errorf("unexpected SpO2 entry: %+v", out)
	}
}

func TestCheckCriticalValues_TemperatureBoundary(t *testing.T) {
	// 38.5 is inclusive for temperature, unlike the lab bounds.
	out := CheckCriticalValues(nil, &VitalSigns{TempC: fptr(38.5)})
	if len(out) != 1 || out[0].Name != "Temperature" || out[0].Flag != "H" {
		t.Fatalf("expected temperature flag at 38.5, got %+v", out)
	}
	if out[0].ReferenceRange != "36.5-38.0°C" {
		t.Errorf("unexpected reference range: %s", out[0].ReferenceRange)
	}
	if out := CheckCriticalValues(nil, &VitalSigns{TempC: fptr(38.4)}); len(out) != 0 {
		t.Errorf("38.4 must not flag, got %+v", out)
	}
}

func TestCheckCriticalValues_LabsBeforeVitals(t *testing.T) {
	labs := []LabResult{{Name: "WBC", Value: fptr(0.4)}}
	vitals := &VitalSigns{SpO2: fptr(85), TempC: fptr(39.0)}
	out := CheckCriticalValues(labs, vitals)
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	if out[0].Name != "WBC" || out[1].Name != "SpO2" || out[2].Name != "Temperature" {
		t.Errorf("unexpected ordering: %v %v %v", out[0].Name, out[1].Name, out[2].Name)
	}
}
