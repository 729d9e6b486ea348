package knowledge

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Stage IV NSCLC", "stage iv nsclc"},
		{"SpO2: 88%", "spo2 88"},
		{"temp 38.5", "temp 385"},
		{"", ""},
		{"already lower", "already lower"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize_DropsShortWords(t *testing.T) {
	tokens := Tokenize("on O2 at 2L with dyspnea")
	if _, ok := tokens["dyspnea"]; !ok {
		t.Error("expected dyspnea token")
	}
	if _, ok := tokens["o2"]; ok {
		t.Error("two-rune words should be dropped")
	}
	if _, ok := tokens["at"]; ok {
		t.Error("two-rune words should be dropped")
	}
}

func TestTokenize_Deduplicates(t *testing.T) {
	tokens := Tokenize("fever fever FEVER")
	if len(tokens) != 1 {
		t.Errorf("expected 1 unique token, got %d", len(tokens))
	}
}

func TestNormalizeVitalName_CaseCollision(t *testing.T) {
	variants := []string{"temp_c", "Temp_C", "TEMP_C", "TempC", "tempc"}
	for _, v := range variants {
		if got := NormalizeVitalName(v); got != "temp" {
			t.Errorf("NormalizeVitalName(%q) = %q, want %q", v, got, "temp")
		}
	}
}

func TestNormalizeVitalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SpO2", "spo2"},
		{"spo2", "spo2"},
		{"hr", "hr"},
		{"HR", "hr"},
		{"bp_sys", "bpsys"},
	}
	for _, tt := range tests {
		if got := NormalizeVitalName(tt.in); got != tt.want {
			t.Errorf("NormalizeVitalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
