package models

// Intent is a resolved, parameterized representation of the analytical
// operation a question requests. Detectors produce intents; executors consume
// them. Field names inside an intent are already resolved against the schema,
// never raw user tokens.
type Intent interface {
	isIntent()
}

// AggregateOp identifies an aggregation function.
type AggregateOp string

const (
	AggSum           AggregateOp = "sum"
	AggAvg           AggregateOp = "avg"
	AggMin           AggregateOp = "min"
	AggMax           AggregateOp = "max"
	AggCount         AggregateOp = "count"
	AggCountDistinct AggregateOp = "count_distinct"
)

// TimeBucket identifies the granularity of trend bucketing.
type TimeBucket string

const (
	BucketYear   TimeBucket = "year"
	BucketMonth  TimeBucket = "month"
	BucketDecade TimeBucket = "decade"
)

// TopNIntent ranks rows by a numeric field and returns the first N.
type TopNIntent struct {
	N         int
	SortField string
	Ascending bool

	// Optional compound categorical filter ("top 10 crime movies").
	FilterField string
	FilterValue string
}

// GroupByIntent aggregates a numeric field across every value of a
// categorical field.
type GroupByIntent struct {
	GroupField string
	ValueField string // empty for count
	Agg        AggregateOp
}

// GroupRankIntent ranks categorical groups by mean of a numeric field, or by
// row count when ByCount is set.
type GroupRankIntent struct {
	GroupField string
	ValueField string // ignored when ByCount
	ByCount    bool
	Ascending  bool // true for "worst"
}

// ConditionalCountMode selects how a conditional count qualifies rows.
type ConditionalCountMode string

const (
	// CountNonEmpty counts rows with any value in the field.
	CountNonEmpty ConditionalCountMode = "non_empty"
	// CountEquals counts rows whose field equals a literal value.
	CountEquals ConditionalCountMode = "equals"
	// CountBooleanTrue counts rows where an implicit 0/1 field is 1.
	CountBooleanTrue ConditionalCountMode = "boolean_true"
)

// ConditionalCountIntent counts rows matching a condition.
type ConditionalCountIntent struct {
	Field string
	Mode  ConditionalCountMode
	Value string // for CountEquals
}

// FilteredAggregateIntent aggregates within rows matching a categorical value.
type FilteredAggregateIntent struct {
	Agg         AggregateOp
	TargetField string // empty for count
	FilterField string
	FilterValue string
}

// AggregateIntent is a dataset-wide aggregation. For min/max, WantRecord
// selects the extremal-record variant (answer names the row, not just the
// value). For earliest/latest, the target is a time-like field and the
// answer names the row.
type AggregateIntent struct {
	Agg         AggregateOp
	TargetField string // empty for plain row count
	WantRecord  bool
}

// FilterIntent lists all rows where a numeric field clears a threshold.
type FilterIntent struct {
	Field       string
	GreaterThan bool // false means less-than
	Threshold   float64
}

// TrendIntent buckets a numeric field over a time-like field.
type TrendIntent struct {
	TimeField  string
	ValueField string // empty for count
	Agg        AggregateOp
	Bucket     TimeBucket

	// Superlative marks "which year had the highest ..." questions; the
	// answer names the extremal bucket instead of summarizing direction.
	Superlative bool
	WantLowest  bool
}

// ListAllIntent enumerates the sorted distinct values of a field.
type ListAllIntent struct {
	Field string
}

// OutlierIntent flags values outside the 1.5x IQR fences of a numeric field.
type OutlierIntent struct {
	Field string
}

// FollowUpIntent routes a back-reference question to conversation history.
type FollowUpIntent struct{}

func (TopNIntent) isIntent()              {}
func (GroupByIntent) isIntent()           {}
func (GroupRankIntent) isIntent()         {}
func (ConditionalCountIntent) isIntent()  {}
func (FilteredAggregateIntent) isIntent() {}
func (AggregateIntent) isIntent()         {}
func (FilterIntent) isIntent()            {}
func (TrendIntent) isIntent()             {}
func (ListAllIntent) isIntent()           {}
func (OutlierIntent) isIntent()           {}
func (FollowUpIntent) isIntent()          {}
