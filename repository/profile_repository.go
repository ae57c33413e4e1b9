package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"elena-agent/domain"
)

// ProfileRepository looks buyer profiles up by email. A missing profile is
// (nil, nil).
type ProfileRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type PostgresProfileRepository struct {
	db DB
}

func NewPostgresProfileRepository(db DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const getProfileSQL = `SELECT email, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(full_name, ''), COALESCE(phone, ''), monthly_income FROM profiles WHERE lower(email) = $1 LIMIT 1`

func (r *PostgresProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRow(ctx, getProfileSQL, normalizeEmail(email)).
		Scan(&p.Email, &p.FirstName, &p.LastName, &p.FullName, &p.Phone, &p.MonthlyIncome)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "profiles: get by email")
	}
	return &p, nil
}

// ProfileRepositoryMemory is an in-memory ProfileRepository.
type ProfileRepositoryMemory struct {
	mu   sync.RWMutex
	data map[string]domain.Profile
}

func NewProfileRepositoryMemory(profiles ...domain.Profile) *ProfileRepositoryMemory {
	r := &ProfileRepositoryMemory{data: make(map[string]domain.Profile, len(profiles))}
	for _, p := range profiles {
		r.Put(p)
	}
	return r
}

func (r *ProfileRepositoryMemory) Put(p domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[normalizeEmail(p.Email)] = p
}

func (r *ProfileRepositoryMemory) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// CachedProfileRepository reads through a cache in front of another
// ProfileRepository. Misses are not cached.
type CachedProfileRepository struct {
	next  ProfileRepository
	cache CacheRepository
	ttl   time.Duration
}

func NewCachedProfileRepository(next ProfileRepository, cache CacheRepository, ttl time.Duration) *CachedProfileRepository {
	return &CachedProfileRepository{next: next, cache: cache, ttl: ttl}
}

func profileCacheKey(email string) string {
	return "profile:" + normalizeEmail(email)
}

func (r *CachedProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	key := profileCacheKey(email)
	if raw, ok := r.cache.Get(ctx, key); ok {
		var p domain.Profile
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return &p, nil
		}
		zap.L().Warn("discarding undecodable cached profile", zap.String("key", key))
	}

	p, err := r.next.GetByEmail(ctx, email)
	if err != nil || p == nil {
		return p, err
	}

	if raw, err := json.Marshal(p); err == nil {
		if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
			zap.L().Warn("failed to cache profile", zap.String("key", key), zap.Error(err))
		}
	}
	return p, nil
}
