// Package model defines the entities persisted by the content pipeline:
// discoveries, creations, publications, metrics, skills, skill metrics,
// experiments, and agent runs.
package model

import "time"

// DiscoveryStatus is the lifecycle state of a Discovery.
type DiscoveryStatus string

const (
	DiscoveryNew      DiscoveryStatus = "new"
	DiscoveryAnalyzed DiscoveryStatus = "analyzed"
	DiscoveryQueued   DiscoveryStatus = "queued"
	DiscoveryPublished DiscoveryStatus = "published"
	DiscoverySkipped  DiscoveryStatus = "skipped"
)

// RiskLevel buckets the output of the RiskAssessor.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Discovery is a persisted, deduplicated item seen by a SourceAdapter.
type Discovery struct {
	ID               string
	Source           string
	SourceID         string
	Title            string
	URL              string
	RawScore         float64
	RawData          map[string]any
	ContentHash      string
	Status           DiscoveryStatus
	RelevanceScore   *float64
	VelocityScore    *float64
	RiskLevel        RiskLevel
	PlatformFit      map[string]float64
	SuggestedFormats []string
	DiscoveredAt     time.Time
	AnalyzedAt       *time.Time
}

// ApprovalStatus is the lifecycle state of a Creation.
type ApprovalStatus string

const (
	ApprovalPending        ApprovalStatus = "pending"
	ApprovalPendingReview  ApprovalStatus = "pending_review"
	ApprovalApproved       ApprovalStatus = "approved"
	ApprovalRejected       ApprovalStatus = "rejected"
	ApprovalAutoApproved   ApprovalStatus = "auto_approved"
	ApprovalQualityRejected ApprovalStatus = "quality_rejected"
)

// VideoType tags the eight supported deferred-video payload shapes.
type VideoType string

const (
	VideoAvatarTalkingHead VideoType = "avatar_talking_head"
	VideoAvatarAgent       VideoType = "avatar_agent"
	VideoMotionGraphics    VideoType = "motion_graphics"
	VideoHybridAvatarBroll VideoType = "hybrid_avatar_broll"
	VideoKineticText       VideoType = "kinetic_text"
	VideoCinematicBroll    VideoType = "cinematic_broll"
	VideoImageToVideo      VideoType = "image_to_video"
	VideoMultiShotNarrative VideoType = "multi_shot_narrative"
)

// VideoSegment is one shot of a hybrid_avatar_broll or multi_shot_narrative composition.
type VideoSegment struct {
	Type     string // "avatar" | "broll" for hybrid; free-form for multi-shot
	Script   string
	Prompt   string
	Duration float64
}

// VideoDescriptor is the deferred, un-generated media spec attached to a Creation.
type VideoDescriptor struct {
	Type           VideoType
	Rationale      string
	Script         string         // avatar_talking_head
	Prompt         string         // avatar_agent, motion_graphics, kinetic_text, cinematic_broll, image_to_video
	Composition    []VideoSegment // hybrid_avatar_broll, multi_shot_narrative
	GeneratedURL   string
	GenerationErr  string
}

// Creation is one produced content variant for one discovery/platform/format.
type Creation struct {
	ID             string
	DiscoveryID    string
	Platform       string
	Format         string
	Title          string
	Body           string
	MediaURLs      []string
	SkillsUsed     []string
	RiskScoreVal   float64
	RiskFlags      []string
	QualityScore   float64
	QualityIssues  []string
	VariantGroup   string
	VariantLabel   string
	ApprovalStatus ApprovalStatus
	Video          *VideoDescriptor
	CreatedAt      time.Time
	ApprovedAt     *time.Time
}

// Publication records a Creation pushed to an external platform.
type Publication struct {
	ID                     string
	CreationID             string
	Platform               string
	PlatformPostID         string
	PlatformURL            string
	ArbitrageWindowMinutes *int
	PublishedAt            time.Time
}

// MetricInterval is one of the five fixed post-publication snapshot offsets.
type MetricInterval string

const (
	Interval1h  MetricInterval = "1h"
	Interval6h  MetricInterval = "6h"
	Interval24h MetricInterval = "24h"
	Interval48h MetricInterval = "48h"
	Interval7d  MetricInterval = "7d"
)

// IntervalOffsets lists every interval in ascending order with its time.Duration offset.
var IntervalOffsets = []struct {
	Interval MetricInterval
	Offset   time.Duration
}{
	{Interval1h, time.Hour},
	{Interval6h, 6 * time.Hour},
	{Interval24h, 24 * time.Hour},
	{Interval48h, 48 * time.Hour},
	{Interval7d, 7 * 24 * time.Hour},
}

// Metric is one append-only engagement snapshot for a publication at an interval.
type Metric struct {
	ID               string
	PublicationID    string
	Interval         MetricInterval
	Views            int64
	Likes            int64
	Comments         int64
	Shares           int64
	Clicks           int64
	FollowersGained  int64
	EngagementRate   float64
	CollectedAt      time.Time
}

// SkillStatus is the lifecycle state of a Skill record.
type SkillStatus string

const (
	SkillActive      SkillStatus = "active"
	SkillStale       SkillStatus = "stale"
	SkillUnderReview SkillStatus = "under_review"
	SkillRetired     SkillStatus = "retired"
	SkillSuperseded  SkillStatus = "superseded"
)

const (
	ConfidenceFloor   = 0.20
	ConfidenceCeiling = 0.95
)

// Skill is a fixed-field record: tagged data, never attribute-based polymorphism.
type Skill struct {
	Name            string
	Category        string
	Platform        string // optional, empty if not platform-specific
	Confidence      float64
	Status          SkillStatus
	Version         int
	Content         string
	Tags            []string
	TotalUses       int
	SuccessCount    int
	FailureStreak   int
	LastUsedAt      *time.Time
	LastValidatedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FilePath        string
}

// SkillOutcome is the classification bucket produced by the engagement-to-score map.
type SkillOutcome string

const (
	OutcomeSuccess SkillOutcome = "success"
	OutcomePartial SkillOutcome = "partial"
	OutcomeFailure SkillOutcome = "failure"
)

// SkillMetric is one append-only per-use outcome record for a skill.
type SkillMetric struct {
	ID         string
	SkillName  string
	Agent      string
	Task       string
	Outcome    SkillOutcome
	Score      float64
	Context    string
	RecordedAt time.Time
}

// ExperimentStatus is the lifecycle state of an Experiment.
type ExperimentStatus string

const (
	ExperimentRunning   ExperimentStatus = "running"
	ExperimentCompleted ExperimentStatus = "completed"
	ExperimentCancelled ExperimentStatus = "cancelled"
)

// ExperimentWinner names the winning arm, if any.
type ExperimentWinner string

const (
	WinnerA    ExperimentWinner = "A"
	WinnerB    ExperimentWinner = "B"
	WinnerNone ExperimentWinner = "none"
)

// Experiment is an A/B test of a candidate skill variant against the running baseline.
type Experiment struct {
	ID                   string
	SkillName            string
	VariantADescription  string
	VariantBDescription  string
	MetricTarget         string
	VariantAScore        float64
	VariantASamples      int
	VariantBScore        float64
	VariantBSamples      int
	Winner               ExperimentWinner
	PValue               float64
	EffectSize           float64
	Status               ExperimentStatus
	StartedAt            time.Time
	CompletedAt          *time.Time
}

// AgentRun is one entry in the cost ledger, recorded for every provider call.
type AgentRun struct {
	ID               string
	Agent            string
	Task             string
	Provider         string
	InputTokens      int
	OutputTokens     int
	EstimatedCostUSD float64
	DurationSeconds  float64
	Status           string
	StartedAt        time.Time
	CompletedAt      *time.Time
}
