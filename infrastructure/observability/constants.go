package observability

const (
	MetricPrefix = "sbz_giveaway"
)

// Metric names
const (
	// Drawing metrics
	DrawingsResolvedTotal = MetricPrefix + ".drawings.resolved_total"
	DrawingRerollsTotal   = MetricPrefix + ".drawings.rerolls_total"
	RosterChangesTotal    = MetricPrefix + ".roster.changes_total"

	// Gate metrics
	GateEvictionsTotal = MetricPrefix + ".gates.evictions_total"

	// Scheduler metrics
	SchedulerJobDuration      = MetricPrefix + ".scheduler.job_duration"
	SchedulerItemFailureTotal = MetricPrefix + ".scheduler.item_failures_total"

	// Event metrics
	EventsPublishedTotal = MetricPrefix + ".events.published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelOutcome    = "outcome"
	LabelResult     = "result"
	LabelJob        = "job"
	LabelEventType  = "event_type"
	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Scheduler job names
const (
	JobResolveDrawings = "resolve_drawings"
	JobSweepNearExpiry = "sweep_near_expiry"
	JobPurgeExpired    = "purge_expired"
	JobSweepIndefinite = "sweep_indefinite"
	JobResetNotices    = "reset_notices"
)
