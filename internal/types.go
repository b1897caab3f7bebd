package internal

type Scope string

const (
	Scope1       Scope = "1"
	Scope2       Scope = "2"
	Scope3       Scope = "3"
	ScopeUnknown Scope = "unknown"
)

// ScopeOrder is the fixed reporting order for every summary and export.
func ScopeOrder() []Scope {
	return []Scope{Scope1, Scope2, Scope3, ScopeUnknown}
}

func ValidScope(s Scope) bool {
	switch s {
	case Scope1, Scope2, Scope3, ScopeUnknown:
		return true
	}
	return false
}

type DataQuality string

const (
	QualityClean   DataQuality = "clean"
	QualityFlagged DataQuality = "flagged"
)

// Flag reason codes attached to records by the pipeline stages.
const (
	FlagMissingSource       = "missing_source"
	FlagMissingQuantity     = "missing_quantity"
	FlagUnparseableQuantity = "unparseable_quantity"
	FlagMissingUnit         = "missing_unit"
	FlagUnknownUnit         = "unknown_unit"
	FlagUnparseableDate     = "unparseable_date"
	FlagMissingDate         = "missing_date"
	FlagNegativeCO2e        = "negative_co2e"
)

type MatchStatus string

type MatchReason string

const (
	MatchOK       MatchStatus = "MATCHED"
	MatchNotFound MatchStatus = "UNMATCHED"

	ReasonExact         MatchReason = "EXACT"
	ReasonScopeFallback MatchReason = "SCOPE_FALLBACK"
	ReasonKeyword       MatchReason = "KEYWORD"
	ReasonNone          MatchReason = "NONE"
)

// RawRecord is one unvalidated activity row exactly as the record source
// produced it. All fields except LineNo may be empty.
type RawRecord struct {
	LineNo   int
	Source   string
	Date     string
	Quantity string
	Unit     string
	Location string
}

type NormalizedRecord struct {
	RawRecord
	CanonicalSource string
	Category        string
	CanonicalDate   *string
	Qty             *float64
	CanonicalUnit   string
	Quality         DataQuality
	Flags           []string
}

func (r *NormalizedRecord) AddFlag(flag string) {
	r.Quality = QualityFlagged
	r.Flags = append(r.Flags, flag)
}

type ClassifiedRecord struct {
	NormalizedRecord
	Scope Scope
	Rule  string
}

// EmissionFactor is one immutable reference entry. The loaded table owns
// every factor; records only hold pointers into it.
type EmissionFactor struct {
	ID            int
	Source        string
	Scope         Scope
	Unit          string
	KgCO2ePerUnit float64
	Standard      string
}

type MatchedRecord struct {
	ClassifiedRecord
	Status MatchStatus
	Reason MatchReason
	Factor *EmissionFactor
	// UnitScale converts the record's canonical unit into the factor's
	// declared unit. 1 when they already agree.
	UnitScale float64
}

func (r MatchedRecord) Standard() *string {
	if r.Factor == nil {
		return nil
	}
	s := r.Factor.Standard
	return &s
}

type CalculatedRecord struct {
	MatchedRecord
	CO2eKg *float64
}

type ScopeSummary struct {
	Scope       Scope
	TotalKg     float64
	TotalTons   float64
	Count       int
	AvgKg       float64
	Percent     float64
	RecordCount int
}

type Summary struct {
	TotalRecords   int
	CleanCount     int
	FlaggedCount   int
	MatchedCount   int
	UnmatchedCount int
	GrandTotalKg   float64
	GrandTotalTons float64
	Scopes         []ScopeSummary
}

// Batch is one ingested input file tracked in storage.
type Batch struct {
	ID         int
	Name       string
	SourceFile string
	Format     string
	Hash       string
	Status     string
	CreatedAt  string
}
