package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"elena-agent/domain"
)

// TimelineRepository persists evaluations into a buyer's timeline.
type TimelineRepository interface {
	Save(ctx context.Context, entry domain.TimelineEntry) error
	ListByEmail(ctx context.Context, email string, limit int) ([]domain.TimelineEntry, error)
}

type PostgresTimelineRepository struct {
	db DB
}

func NewPostgresTimelineRepository(db DB) *PostgresTimelineRepository {
	return &PostgresTimelineRepository{db: db}
}

const (
	insertTimelineSQL = `INSERT INTO buyerbrief_timelines (id, email, scenario_id, status, grade, all_in_monthly, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	listTimelineSQL   = `SELECT id, email, scenario_id, status, grade, all_in_monthly, payload, created_at FROM buyerbrief_timelines WHERE email = $1 ORDER BY created_at DESC LIMIT $2`
)

func (r *PostgresTimelineRepository) Save(ctx context.Context, e domain.TimelineEntry) error {
	_, err := r.db.Exec(ctx, insertTimelineSQL,
		e.ID, normalizeEmail(e.Email), e.ScenarioID, string(e.Status), e.Grade, e.AllInMonthly, []byte(e.Payload), e.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "timelines: insert")
	}
	return nil
}

func (r *PostgresTimelineRepository) ListByEmail(ctx context.Context, email string, limit int) ([]domain.TimelineEntry, error) {
	rows, err := r.db.Query(ctx, listTimelineSQL, normalizeEmail(email), limit)
	if err != nil {
		return nil, eris.Wrap(err, "timelines: list")
	}
	defer rows.Close()

	entries := []domain.TimelineEntry{}
	for rows.Next() {
		var (
			e       domain.TimelineEntry
			status  string
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.Email, &e.ScenarioID, &status, &e.Grade, &e.AllInMonthly, &payload, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "timelines: scan")
		}
		e.Status = domain.VerdictStatus(status)
		e.Payload = payload
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "timelines: rows")
	}
	return entries, nil
}

// TimelineRepositoryMemory is an in-memory implementation of TimelineRepository.
type TimelineRepositoryMemory struct {
	mu   sync.Mutex
	data []domain.TimelineEntry
}

func NewTimelineRepositoryMemory() *TimelineRepositoryMemory {
	return &TimelineRepositoryMemory{
		data: []domain.TimelineEntry{},
	}
}

// Save stores the entry in memory.
func (r *TimelineRepositoryMemory) Save(_ context.Context, e domain.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.Email = normalizeEmail(e.Email)
	r.data = append(r.data, e)
	return nil
}

func (r *TimelineRepositoryMemory) ListByEmail(_ context.Context, email string, limit int) ([]domain.TimelineEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = normalizeEmail(email)
	out := []domain.TimelineEntry{}
	for _, e := range r.data {
		if e.Email == email {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
