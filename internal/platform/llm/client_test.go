package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testFacts() PatientFacts {
	return PatientFacts{
		PrimaryDiagnosis: "Stage IV NSCLC",
		ActiveProblems:   []string{"Neutropenia", "Hemoptysis"},
		Medications:      []string{"Enoxaparin"},
		Allergies:        []string{"Penicillin"},
		CodeStatus:       "Full Code",
	}
}

func TestSummarize_NoAPIKey(t *testing.T) {
	c := NewClient(Config{}, zerolog.Nop())
	summary, remote := c.SummarizePatientContext(context.Background(), testFacts(), "transcript")
	if remote {
		t.Error("no API key must not report a remote call")
	}
	if len(summary.RiskFactors) == 0 {
		t.Error("fallback summary must carry risk factors")
	}
}

func TestSummarize_Success(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Here you go: {\"risk_factors\":[\"Neutropenic\"],\"key_concerns\":[\"Bleeding\"]} done"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"}, zerolog.Nop())
	summary, remote := c.SummarizePatientContext(context.Background(), testFacts(), "transcript")

	if !remote {
		t.Error("expected remote call to be reported")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("unexpected model: %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("expected system+user messages, got %+v", gotReq.Messages)
	}
	if len(summary.RiskFactors) != 1 || summary.RiskFactors[0] != "Neutropenic" {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(summary.KeyConcerns) != 1 || summary.KeyConcerns[0] != "Bleeding" {
		t.Errorf("unexpected key concerns: %+v", summary)
	}
}

func TestSummarize_ServerErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, zerolog.Nop())
	summary, remote := c.SummarizePatientContext(context.Background(), testFacts(), "")

	if !remote {
		t.Error("a failed remote call still counts as attempted")
	}
	if len(summary.RiskFactors) == 0 {
		t.Error("fallback summary must carry risk factors")
	}
}

func TestSummarize_UnparsableBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"no json object here"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, zerolog.Nop())
	summary, remote := c.SummarizePatientContext(context.Background(), testFacts(), "")

	if !remote {
		t.Error("expected remote call to be reported")
	}
	if summary.RiskFactors[0] != "Neutropenic - high infection risk" {
		t.Errorf("expected deterministic fallback, got %+v", summary)
	}
}

func TestSummarize_EmptyRiskFactorsKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"risk_factors\":[],\"key_concerns\":[\"x\"]}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, zerolog.Nop())
	summary, remote := c.SummarizePatientContext(context.Background(), testFacts(), "")
	if !remote {
		t.Error("expected remote call to be reported")
	}
	if len(summary.RiskFactors) != 0 {
		t.Errorf("a decodable empty list is the collaborator's answer, got %+v", summary.RiskFactors)
	}
	if len(summary.KeyConcerns) != 1 || summary.KeyConcerns[0] != "x" {
		t.Errorf("unexpected key concerns: %+v", summary.KeyConcerns)
	}
}

func TestBuildPrompt_TruncatesTranscript(t *testing.T) {
	long := strings.Repeat("a", transcriptExcerptLimit+500)
	prompt := buildPrompt(testFacts(), long)
	if strings.Contains(prompt, strings.Repeat("a", transcriptExcerptLimit+1)) {
		t.Error("transcript excerpt must be capped")
	}
	if !strings.Contains(prompt, "Stage IV NSCLC") {
		t.Error("prompt must include the primary diagnosis")
	}
}

func TestBuildPrompt_UnknownDefaults(t *testing.T) {
	prompt := buildPrompt(PatientFacts{}, "")
	if !strings.Contains(prompt, "Primary Diagnosis: Unknown") {
		t.Error("missing diagnosis must render as Unknown")
	}
	if !strings.Contains(prompt, "Code Status: Unknown") {
		t.Error("missing code status must render as Unknown")
	}
}

func TestParseSummary(t *testing.T) {
	s, ok := parseSummary(`leading text {"risk_factors":["a"],"key_concerns":[]} trailing`)
	if !ok || s.RiskFactors[0] != "a" {
		t.Errorf("expected parse to succeed, got %v %v", s, ok)
	}
	if _, ok := parseSummary("no braces at all"); ok {
		t.Error("content without JSON must be rejected")
	}
	if s, ok := parseSummary(`{"risk_factors":[]}`); !ok || len(s.RiskFactors) != 0 {
		t.Errorf("well-formed empty lists must parse, got %v %v", s, ok)
	}
	if _, ok := parseSummary(`{"risk_factors": not json}`); ok {
		t.Error("undecodable JSON must be rejected")
	}
}
