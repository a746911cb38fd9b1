// Package store is the durable record of every pipeline entity: the only
// shared persistent resource in the system. Every write except
// SelectVariant commits independently; SelectVariant is the sole
// multi-row atomic transaction the core requires.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/philipbankier/contentpilot/internal/model"
)

// ErrNotFound is returned by single-row lookups that find nothing.
var ErrNotFound = errors.New("store: not found")

// Store is the typed persistence contract for the content pipeline.
// Implementations must surface every write failure to the caller;
// callers treat persistence failure as a fatal step failure, never a
// silent retry.
type Store interface {
	// Discovery
	GetDiscoveryByHash(ctx context.Context, contentHash string) (*model.Discovery, error)
	InsertDiscovery(ctx context.Context, d *model.Discovery) error
	UpdateDiscovery(ctx context.Context, d *model.Discovery) error
	GetDiscovery(ctx context.Context, id string) (*model.Discovery, error)
	ListDiscoveriesByStatus(ctx context.Context, status model.DiscoveryStatus, limit int) ([]*model.Discovery, error)
	// ListAnalyzedDiscoveriesRanked returns up to limit discoveries with
	// status=analyzed ordered by relevance_score+velocity_score descending,
	// for Creator.Run's selection.
	ListAnalyzedDiscoveriesRanked(ctx context.Context, limit int) ([]*model.Discovery, error)

	// Creation
	InsertCreation(ctx context.Context, c *model.Creation) error
	UpdateCreation(ctx context.Context, c *model.Creation) error
	GetCreation(ctx context.Context, id string) (*model.Creation, error)
	ListCreationsByApprovalStatus(ctx context.Context, status model.ApprovalStatus, limit int) ([]*model.Creation, error)
	ListCreationsByVariantGroup(ctx context.Context, group string) ([]*model.Creation, error)
	// SelectVariant atomically approves one creation and rejects every
	// sibling sharing its variant_group, in a single transaction.
	SelectVariant(ctx context.Context, creationID string) (approved *model.Creation, rejected []*model.Creation, err error)

	// Publication
	InsertPublication(ctx context.Context, p *model.Publication) error
	GetPublicationByCreation(ctx context.Context, creationID, platform string) (*model.Publication, error)
	ListPublicationsInWindow(ctx context.Context, from, to time.Time) ([]*model.Publication, error)
	ListAllPublications(ctx context.Context) ([]*model.Publication, error)

	// Metric
	InsertMetric(ctx context.Context, m *model.Metric) error
	GetMetric(ctx context.Context, publicationID string, interval model.MetricInterval) (*model.Metric, error)
	ListMetricsByPublication(ctx context.Context, publicationID string) ([]*model.Metric, error)

	// Skill
	UpsertSkill(ctx context.Context, s *model.Skill) error
	GetSkill(ctx context.Context, name string) (*model.Skill, error)
	ListSkills(ctx context.Context) ([]*model.Skill, error)

	// SkillMetric
	InsertSkillMetric(ctx context.Context, m *model.SkillMetric) error
	ListSkillMetrics(ctx context.Context, skillName string) ([]*model.SkillMetric, error)
	ListSkillMetricsSince(ctx context.Context, since time.Time) ([]*model.SkillMetric, error)

	// Experiment
	InsertExperiment(ctx context.Context, e *model.Experiment) error
	UpdateExperiment(ctx context.Context, e *model.Experiment) error
	GetExperiment(ctx context.Context, id string) (*model.Experiment, error)
	ListExperimentsByStatus(ctx context.Context, status model.ExperimentStatus) ([]*model.Experiment, error)

	// AgentRun
	InsertAgentRun(ctx context.Context, r *model.AgentRun) error
	SumCostSince(ctx context.Context, since time.Time) (float64, error)

	// VariantObservations returns the 24h engagement rates recorded for
	// creations that used skillName, labeled variantLabel, created at or
	// after since — the join Creation -> Publication -> Metric(24h) that
	// feeds the ExperimentRunner's two-sample test.
	VariantObservations(ctx context.Context, skillName, variantLabel string, since time.Time) ([]float64, error)

	Close() error
}
