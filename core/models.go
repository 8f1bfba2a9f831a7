package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored scheme documents.
// It is generated from document content so identical text maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Gender is a user's self-reported gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Category is a social category recognized by welfare schemes.
type Category string

const (
	CategoryGeneral  Category = "general"
	CategorySC       Category = "sc"
	CategoryST       Category = "st"
	CategoryOBC      Category = "obc"
	CategoryMinority Category = "minority"
)

// UserProfile describes one applicant for the duration of a single matching
// request. Optional fields use pointers; a nil pointer or empty string means
// the value was not provided, which the evaluator treats as unknown rather
// than disqualifying.
type UserProfile struct {
	Age            *int
	Gender         Gender
	Category       Category
	AnnualIncome   *float64
	Occupation     string
	State          string // empty means unspecified
	EducationLevel string
	SpecificNeeds  []string
	Disabilities   []string
}

// SchemeCandidate is a retrieved text fragment hypothesized to describe a
// relevant scheme. Candidates are ephemeral; they live only inside one
// matching request.
type SchemeCandidate struct {
	SchemeName string // may be "Unknown Scheme"
	Text       string
	SourceFile string
	Score      float32   // similarity, higher is more relevant
	Vector     []float32 // document embedding, kept for diversification
	Query      string    // the query variation that produced this candidate
}

// HardCriteria holds the deterministic, checkable eligibility predicates
// extracted from scheme text. An unset bound or empty set means "no
// constraint" — absence of information must never disqualify.
type HardCriteria struct {
	MinIncome  *float64
	MaxIncome  *float64
	MinAge     *int
	MaxAge     *int
	Genders    []string // empty = all genders eligible
	States     []string // empty = all states eligible
	Categories []string // empty = all categories eligible
}

// Unconstrained reports whether the criteria impose no restriction at all.
func (c HardCriteria) Unconstrained() bool {
	return c.MinIncome == nil && c.MaxIncome == nil &&
		c.MinAge == nil && c.MaxAge == nil &&
		len(c.Genders) == 0 && len(c.States) == 0 && len(c.Categories) == 0
}

// PermissiveCriteria returns the maximally permissive HardCriteria. It is the
// fallback whenever extraction fails: an extraction failure must never turn
// into a spurious disqualification.
func PermissiveCriteria() HardCriteria {
	return HardCriteria{}
}

// SchemeFacts is the structured record extracted from one scheme text
// fragment: the hard eligibility criteria plus the descriptive fields used
// to assemble a recommendation.
type SchemeFacts struct {
	SchemeName       string
	Criteria         HardCriteria
	Benefits         []string
	ApplicationSteps []string
}

// EligibilityStatus is the three-valued outcome of a single criterion check.
type EligibilityStatus int

const (
	// StatusEligible means the user definitely satisfies the criterion.
	StatusEligible EligibilityStatus = iota + 1
	// StatusNotEligible means the user definitely violates the criterion.
	StatusNotEligible
	// StatusUnknown means the user value was not provided, so the criterion
	// could not be checked either way.
	StatusUnknown
)

// String returns the canonical name of the status.
func (s EligibilityStatus) String() string {
	switch s {
	case StatusEligible:
		return "eligible"
	case StatusNotEligible:
		return "not_eligible"
	case StatusUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// CheckResult is the outcome of evaluating one criterion family.
type CheckResult struct {
	Criterion string // "income", "age", "gender", "state", "category"
	Status    EligibilityStatus
	Reason    string
	UserValue string // raw user value considered, empty if not provided
}

// EligibilityVerdict aggregates all per-criterion results for one scheme.
// IsEligible is false only when at least one check is definitely violated;
// unknown checks are listed in UnknownCriteria so downstream consumers can
// flag the recommendation as unverified.
type EligibilityVerdict struct {
	Checks          []CheckResult
	IsEligible      bool
	UnknownCriteria []string
	EvaluatedAt     time.Time
}

// SchemeRecommendation is one ranked entry of the final result list.
type SchemeRecommendation struct {
	SchemeName              string
	RelevanceScore          float32 // 0..1
	Benefits                []string
	EligibilityRequirements map[string]string // criterion -> requirement text
	EligibilityStatus       map[string]bool   // criterion -> definitely met
	ApplicationSteps        []string
	Rationale               string
	Verdict                 *EligibilityVerdict
}

// SchemeDocument is a stored scheme text fragment with its embedding.
// Documents are written once by the seeding process and read by retrieval.
type SchemeDocument struct {
	Id         ID
	SchemeName string
	Text       string
	SourceFile string
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SimilarityMatch is a scheme document match from vector similarity search.
type SimilarityMatch struct {
	Document *SchemeDocument
	Score    float32
}

// IndexInfo records how the stored vectors were produced. It is written at
// seed time and checked at query time so a mismatched embedding model is
// caught before it silently degrades retrieval.
type IndexInfo struct {
	EmbeddingModel string
	Dimension      int
	UpdatedAt      time.Time
}
