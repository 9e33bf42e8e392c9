package domain

// IssueType classifies why a match result needs human review.
type IssueType string

const (
	IssueNoMatches         IssueType = "NO_MATCHES"
	IssueLowConfidence     IssueType = "LOW_CONFIDENCE"
	IssueAmbiguousMatch    IssueType = "AMBIGUOUS_MATCH"
	IssueMissingProperties IssueType = "MISSING_PROPERTIES"
)

// ReviewFlag is a quality signal emitted alongside match results. Flags are
// generated fresh each run and never persisted by the matching engine.
type ReviewFlag struct {
	IssueType     IssueType `json:"issueType"`
	MatchCount    int       `json:"matchCount"`
	TopConfidence *float64  `json:"topConfidence,omitempty"`
	Reason        string    `json:"reason"`
	ActionNeeded  string    `json:"actionNeeded"`
}
