package knowledge

// SourceKind identifies which knowledge base an item belongs to.
type SourceKind string

const (
	SourceSOP       SourceKind = "sop"
	SourcePolicy    SourceKind = "policy"
	SourceGuideline SourceKind = "guideline"
)

// Trigger operators for lab and vital conditions.
const (
	OperatorLT = "lt"
	OperatorGT = "gt"
	OperatorEQ = "eq"
)

// Trigger is a single threshold condition on a lab or vital value.
type Trigger struct {
	Threshold float64 `json:"threshold"`
	Operator  string  `json:"operator"`
}

// TriggerSet holds the structured trigger conditions of a knowledge item.
// All sub-fields are optional.
type TriggerSet struct {
	Labs        map[string]Trigger `json:"labs,omitempty"`
	Vitals      map[string]Trigger `json:"vitals,omitempty"`
	Diagnoses   []string           `json:"diagnoses,omitempty"`
	Medications []string           `json:"medications,omitempty"`
}

// Item is a single knowledge-base entry (SOP, policy, or guideline).
// Items are immutable after load; Content retains the full source object so
// kind-specific fields (steps, requirement, stages, ...) survive untouched.
type Item struct {
	ID       string
	Title    string
	Keywords []string
	Triggers *TriggerSet
	Content  map[string]any
}

// Collection is an ordered, read-only set of items from one source kind.
// Item order is the source-file order; it is the tie-break for ranking.
// Version is the source file's declared metadata.version, "unknown" when the
// file carries none.
type Collection struct {
	Kind    SourceKind
	Version string
	Items   []Item
}

// Context is the flat matching context derived from one patient record and
// transcript. All strings are lowercased; vital names are normalized with
// NormalizeVitalName.
type Context struct {
	Diagnoses   []string
	Medications []string
	Symptoms    []string
	Labs        map[string]float64
	Vitals      map[string]float64
	Age         *int
	CodeStatus  string
	Isolation   string
}

// Result is one ranked retrieval match.
type Result struct {
	ItemID  string
	Title   string
	Source  SourceKind
	Score   float64
	Matched []string
	Content map[string]any
}
