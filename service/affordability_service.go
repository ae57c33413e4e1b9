package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"elena-agent/domain"
	"elena-agent/repository"
)

const defaultProfileTimeout = 3 * time.Second

type AffordabilityService struct {
	policy         Policy
	profiles       repository.ProfileRepository
	timeline       repository.TimelineRepository
	ai             *AIService
	profileTimeout time.Duration
	now            func() time.Time
	newID          func() string
}

type Option func(*AffordabilityService)

// WithClock replaces the clock used for the ts field and timeline rows.
func WithClock(now func() time.Time) Option {
	return func(s *AffordabilityService) { s.now = now }
}

// WithIDGenerator replaces the scenario_id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *AffordabilityService) { s.newID = newID }
}

func WithProfileTimeout(d time.Duration) Option {
	return func(s *AffordabilityService) {
		if d > 0 {
			s.profileTimeout = d
		}
	}
}

// NewAffordabilityService wires the engine to its collaborators. profiles
// and timeline may be nil; a nil ai narrates with the fallback template.
func NewAffordabilityService(
	policy Policy,
	profiles repository.ProfileRepository,
	timeline repository.TimelineRepository,
	ai *AIService,
	opts ...Option,
) *AffordabilityService {
	s := &AffordabilityService{
		policy:         policy,
		profiles:       profiles,
		timeline:       timeline,
		ai:             ai,
		profileTimeout: defaultProfileTimeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	if s.ai == nil {
		s.ai = NewAIService(AIConfig{})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AffordabilityService) Policy() Policy {
	return s.policy
}

// Evaluate answers one affordability request. Missing business data never
// produces an error; only a cancelled context does.
func (s *AffordabilityService) Evaluate(
	ctx context.Context,
	req domain.EvaluateRequest,
) (domain.EvaluationResult, error) {
	result, _, err := s.evaluate(ctx, req)
	return result, err
}

func (s *AffordabilityService) evaluate(
	ctx context.Context,
	req domain.EvaluateRequest,
) (domain.EvaluationResult, domain.Scenario, error) {
	started := s.now()

	profile := s.lookupProfile(ctx, req.Email)
	if err := ctx.Err(); err != nil {
		return domain.EvaluationResult{}, domain.Scenario{}, eris.Wrap(err, "affordability: evaluate")
	}

	income := ProfileIncome(req.Context.Profile)
	if income == nil && profile != nil {
		income = profile.MonthlyIncome
	}

	scenario := s.policy.ResolveScenario(req, income)
	result := s.policy.EvaluateScenario(scenario, SnapshotAllIn(req))
	result.TS = started.UTC().Format(time.RFC3339)
	result.ScenarioID = s.newID()
	result.Profile = profileSummary(req.Context.Profile, profile)

	if err := s.afterCore(ctx, req, &result); err != nil {
		return domain.EvaluationResult{}, domain.Scenario{}, err
	}

	evaluationsTotal.WithLabelValues(string(result.Verdict.Status)).Inc()
	evaluationDuration.Observe(s.now().Sub(started).Seconds())

	zap.L().Info("affordability evaluated",
		zap.String("scenario_id", result.ScenarioID),
		zap.String("status", string(result.Verdict.Status)),
		zap.String("grade", result.Verdict.Grade),
		zap.String("next_action", string(result.NextAction.Type)),
		zap.Strings("missing_inputs", result.MissingInputs),
	)
	return result, scenario, nil
}

// afterCore runs the narration and the timeline write concurrently. Neither
// changes the numbers already in result. The stored payload is the numeric
// result only; it never carries reply.
func (s *AffordabilityService) afterCore(ctx context.Context, req domain.EvaluateRequest, result *domain.EvaluationResult) error {
	g, gctx := errgroup.WithContext(ctx)

	var reply string
	if req.Explain {
		snapshot := *result
		firstName := ""
		if result.Profile != nil {
			firstName = result.Profile.FirstName
		}
		g.Go(func() error {
			text, err := s.ai.ExplainEvaluation(gctx, req.Question, firstName, snapshot)
			if err != nil {
				return err
			}
			reply = text
			return nil
		})
	}

	if req.Email != "" && s.timeline != nil {
		entry, err := s.timelineEntry(req.Email, *result)
		if err != nil {
			zap.L().Warn("failed to encode timeline entry", zap.String("scenario_id", result.ScenarioID), zap.Error(err))
		} else {
			g.Go(func() error {
				// The timeline write is not critical; failures are logged only.
				if err := s.timeline.Save(gctx, entry); err != nil {
					collaboratorFailures.WithLabelValues("timeline").Inc()
					zap.L().Warn("failed to save timeline entry",
						zap.String("scenario_id", entry.ScenarioID),
						zap.Error(err),
					)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "affordability: after core")
	}
	result.Reply = reply
	return nil
}

func (s *AffordabilityService) lookupProfile(ctx context.Context, email string) *domain.Profile {
	if s.profiles == nil || strings.TrimSpace(email) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	defer cancel()

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		collaboratorFailures.WithLabelValues("profile").Inc()
		zap.L().Warn("profile lookup failed", zap.String("email", email), zap.Error(err))
		return nil
	}
	return profile
}

func (s *AffordabilityService) timelineEntry(email string, r domain.EvaluationResult) (domain.TimelineEntry, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return domain.TimelineEntry{}, eris.Wrap(err, "affordability: marshal timeline payload")
	}
	return domain.TimelineEntry{
		ID:           s.newID(),
		Email:        email,
		ScenarioID:   r.ScenarioID,
		Status:       r.Verdict.Status,
		Grade:        r.Verdict.Grade,
		AllInMonthly: r.Mortgage.AllInMonthly,
		Payload:      payload,
		CreatedAt:    s.now().UTC(),
	}, nil
}

// Timeline returns the most recent evaluations stored for email.
func (s *AffordabilityService) Timeline(ctx context.Context, email string, limit int) ([]domain.TimelineEntry, error) {
	if s.timeline == nil {
		return []domain.TimelineEntry{}, nil
	}
	entries, err := s.timeline.ListByEmail(ctx, email, limit)
	if err != nil {
		return nil, eris.Wrap(err, "affordability: timeline")
	}
	return entries, nil
}

// profileSummary prefers names sent with the request over the stored profile.
func profileSummary(ctxProfile map[string]any, stored *domain.Profile) *domain.ProfileSummary {
	var summary domain.ProfileSummary
	if stored != nil {
		summary.FirstName = stored.FirstName
		summary.FullName = stored.FullName
		if summary.FullName == "" {
			summary.FullName = strings.TrimSpace(stored.FirstName + " " + stored.LastName)
		}
	}
	if v, ok := ctxProfile["first_name"].(string); ok && strings.TrimSpace(v) != "" {
		summary.FirstName = strings.TrimSpace(v)
	}
	if v, ok := ctxProfile["full_name"].(string); ok && strings.TrimSpace(v) != "" {
		summary.FullName = strings.TrimSpace(v)
	}
	if summary.FirstName == "" && summary.FullName == "" {
		return nil
	}
	if summary.FirstName == "" {
		summary.FirstName = strings.Fields(summary.FullName)[0]
	}
	return &summary
}
