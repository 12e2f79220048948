package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/emailfinder"
	"github.com/sells-group/leadgen-cli/pkg/notifier"
	"github.com/sells-group/leadgen-cli/pkg/registry"
)

// Pipeline runs a lead-generation task through its stages: registry search,
// candidate filtering, email resolution, and SMS notification. One worker
// goroutine owns a task from start to terminal status.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	registry registry.Client
	emails   emailfinder.Client
	notifier notifier.Client // nil when SMS is not configured

	pageLimiter  *rate.Limiter
	emailLimiter *rate.Limiter

	now func() time.Time
}

// New builds a pipeline. notif may be nil; affected tasks record a
// not_configured notification instead of failing.
func New(cfg *config.Config, st store.Store, reg registry.Client, emails emailfinder.Client, notif notifier.Client) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		store:        st,
		registry:     reg,
		emails:       emails,
		notifier:     notif,
		pageLimiter:  limiterFor(cfg.Registry.PageDelayMs),
		emailLimiter: limiterFor(cfg.EmailFinder.QueryDelayMs),
		now:          time.Now,
	}
}

func limiterFor(delayMs int) *rate.Limiter {
	if delayMs <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(delayMs)*time.Millisecond), 1)
}

// Start launches the task in the background and returns a channel closed when
// the worker reaches a terminal status. Callers respond to the submitter
// immediately; the channel exists for tests and the one-shot CLI path.
func (p *Pipeline) Start(ctx context.Context, taskID string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("pipeline: worker panicked",
					zap.String("task_id", taskID), zap.Any("panic", r))
				p.fail(taskID, fmt.Sprintf("internal error: %v", r))
			}
		}()
		p.Run(ctx, taskID)
	}()
	return done
}

// Run executes the full pipeline synchronously for one task.
func (p *Pipeline) Run(ctx context.Context, taskID string) {
	log := zap.L().With(zap.String("task_id", taskID))

	task, ok := p.store.Get(taskID)
	if !ok {
		log.Error("pipeline: task not found")
		return
	}
	criteria := task.Criteria

	if len(criteria.SICCodes) == 0 {
		p.fail(taskID, "no SIC codes provided for search")
		return
	}

	p.setStatus(taskID, model.TaskStatusSearching)

	items := p.searchStage(ctx, log, criteria)
	if len(items) == 0 {
		log.Info("pipeline: search produced no companies")
		p.finish(taskID, model.TaskStatusNoResults)
		p.notifyStage(ctx, log, taskID)
		return
	}

	qualified := p.filterStage(ctx, log, items, criteria)
	if err := p.store.Update(taskID, func(t *model.Task) {
		t.Status = model.TaskStatusFilteringDone
		t.Candidates = qualified
	}); err != nil {
		log.Error("pipeline: failed to record candidates", zap.Error(err))
		return
	}
	log.Info("pipeline: filtering complete", zap.Int("qualified", len(qualified)))

	leads := p.leadStage(ctx, log, taskID, qualified)
	if leads == 0 {
		p.finish(taskID, model.TaskStatusNoEmails)
	} else {
		p.finish(taskID, model.TaskStatusLeadsFound)
	}
	log.Info("pipeline: task complete", zap.Int("leads", leads))

	p.notifyStage(ctx, log, taskID)
}

// searchStage walks the registry's paginated search results for the first SIC
// code, pacing page fetches. A mid-pagination failure is not fatal: whatever
// accumulated so far is used.
func (p *Pipeline) searchStage(ctx context.Context, log *zap.Logger, criteria model.Criteria) []registry.SearchItem {
	query := criteria.SICCodes[0]
	pageSize := p.cfg.Registry.PageSize
	maxResults := p.cfg.Registry.MaxResults

	var items []registry.SearchItem
	for startIndex := 0; ; startIndex += pageSize {
		if err := p.pageLimiter.Wait(ctx); err != nil {
			log.Warn("pipeline: page pacing interrupted", zap.Error(err))
			break
		}

		page, err := p.registry.Search(ctx, query, pageSize, startIndex)
		if err != nil {
			log.Warn("pipeline: search page failed, using partial results",
				zap.Int("start_index", startIndex), zap.Error(err))
			break
		}
		if len(page.Items) == 0 {
			break
		}

		items = append(items, page.Items...)
		log.Debug("pipeline: search page fetched",
			zap.Int("start_index", startIndex),
			zap.Int("accumulated", len(items)),
			zap.Int("total_results", page.TotalResults))

		if len(items) >= maxResults {
			items = items[:maxResults]
			break
		}
		if page.TotalResults > 0 && startIndex+len(page.Items) >= page.TotalResults {
			break
		}
	}
	return items
}

// filterStage fetches each company's profile and keeps the ones that match
// the criteria, stopping at the qualified-candidate cap. A profile fetch
// failure skips that company only.
func (p *Pipeline) filterStage(ctx context.Context, log *zap.Logger, items []registry.SearchItem, criteria model.Criteria) []model.CompanyCandidate {
	qualified := make([]model.CompanyCandidate, 0, p.cfg.Pipeline.MaxQualified)

	for _, item := range items {
		if len(qualified) >= p.cfg.Pipeline.MaxQualified {
			break
		}

		profile, err := p.registry.Profile(ctx, item.CompanyNumber)
		if err != nil {
			log.Warn("pipeline: profile fetch failed, skipping company",
				zap.String("company_number", item.CompanyNumber), zap.Error(err))
			continue
		}

		cand, reason := EvaluateProfile(profile, criteria, p.now())
		if cand == nil {
			log.Debug("pipeline: company rejected",
				zap.String("company_number", item.CompanyNumber),
				zap.String("reason", reason))
			continue
		}
		qualified = append(qualified, *cand)
	}
	return qualified
}

// setStatus records a non-terminal status transition.
func (p *Pipeline) setStatus(taskID string, status model.TaskStatus) {
	if err := p.store.Update(taskID, func(t *model.Task) {
		t.Status = status
	}); err != nil {
		zap.L().Error("pipeline: status update failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}

// finish records a terminal status, ensuring Results is non-nil so pollers
// always see a list.
func (p *Pipeline) finish(taskID string, status model.TaskStatus) {
	if err := p.store.Update(taskID, func(t *model.Task) {
		t.Status = status
		if t.Results == nil {
			t.Results = []model.Lead{}
		}
	}); err != nil {
		zap.L().Error("pipeline: status update failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}

// fail marks the task failed with a human-readable error.
func (p *Pipeline) fail(taskID string, msg string) {
	if err := p.store.Update(taskID, func(t *model.Task) {
		t.Status = model.TaskStatusFailed
		t.Error = msg
		if t.Results == nil {
			t.Results = []model.Lead{}
		}
	}); err != nil {
		zap.L().Error("pipeline: failure update failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}
