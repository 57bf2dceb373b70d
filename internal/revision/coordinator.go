package revision

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/ats-optimizer/internal/llm"
	"github.com/jonathan/ats-optimizer/internal/scoring"
	"github.com/jonathan/ats-optimizer/internal/sections"
	"github.com/jonathan/ats-optimizer/internal/types"
)

// ContentService produces revisions. Implementations make a single attempt;
// retries are owned by the coordinator's gateway.
type ContentService interface {
	ImproveSection(ctx context.Context, section types.Section) (types.RevisionProposal, error)
	ReviseAll(ctx context.Context, set []types.Section) (map[string]string, error)
	// TailorSections returns raw keyword lists and tailored sections; the match
	// percentage in the returned value is ignored.
	TailorSections(ctx context.Context, set []types.Section, target string) (types.JobMatchResult, error)
}

// wholeSetWeight is acquired in full by bulk, tailoring, load and reset; per-section
// applies take a single unit, so they run concurrently with each other but never
// alongside a whole-set operation.
const wholeSetWeight int64 = 1 << 20

// DefaultFanOut bounds concurrent single-section requests in RequestAllProposals.
const DefaultFanOut = 3

// Coordinator serializes whole-set revisions and tracks pending tailoring.
type Coordinator struct {
	store   *sections.Store
	service ContentService
	gateway *llm.Gateway
	logger  *zap.Logger

	guard  *semaphore.Weighted
	single singleflight.Group

	mu        sync.Mutex
	tailoring *pendingTailoring
}

type pendingTailoring struct {
	result     types.JobMatchResult
	candidates []types.Section
}

// NewCoordinator creates a coordinator over store.
func NewCoordinator(store *sections.Store, service ContentService, gateway *llm.Gateway, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gateway == nil {
		gateway = llm.NewGateway(llm.DefaultPolicy(), logger)
	}
	return &Coordinator{
		store:   store,
		service: service,
		gateway: gateway,
		logger:  logger,
		guard:   semaphore.NewWeighted(wholeSetWeight),
	}
}

// Store returns the underlying section store.
func (c *Coordinator) Store() *sections.Store {
	return c.store
}

// singleFlight is the result shared by every caller of one single-section call.
type singleFlight struct {
	proposal types.RevisionProposal
	base     string
}

// RequestSingleRevision asks for two alternative rewrites of one section and
// stores them as the pending proposal. Section content is not changed.
// Concurrent requests for the same id share one call. The shared call is not
// tied to any one caller's context; each caller stops waiting on its own, and
// the gateway deadline bounds the call itself.
func (c *Coordinator) RequestSingleRevision(ctx context.Context, id string) (types.RevisionProposal, error) {
	section, err := c.store.Section(id)
	if err != nil {
		return types.RevisionProposal{}, err
	}

	ch := c.single.DoChan(id, func() (any, error) {
		flightCtx := context.WithoutCancel(ctx)
		p, err := llm.Invoke(flightCtx, c.gateway, "improve_section", func(ctx context.Context) (types.RevisionProposal, error) {
			return c.service.ImproveSection(ctx, section)
		})
		if err != nil {
			return nil, err
		}
		return singleFlight{proposal: p, base: section.Content}, nil
	})

	var flight singleFlight
	select {
	case <-ctx.Done():
		return types.RevisionProposal{}, &RevisionError{Operation: "single revision", SectionID: id, Cause: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return types.RevisionProposal{}, &RevisionError{Operation: "single revision", SectionID: id, Cause: res.Err}
		}
		flight = res.Val.(singleFlight)
	}

	// A caller that gave up must not leave a proposal behind.
	if err := ctx.Err(); err != nil {
		return types.RevisionProposal{}, &RevisionError{Operation: "single revision", SectionID: id, Cause: err}
	}

	proposal := flight.proposal
	proposal.SectionID = id
	if err := c.store.SetProposalFor(proposal, flight.base); err != nil {
		if errors.Is(err, sections.ErrStaleProposal) {
			c.logger.Warn("dropped proposal for a section changed while it was requested",
				zap.String("section_id", id))
			return types.RevisionProposal{}, &RevisionError{Operation: "single revision", SectionID: id, Cause: err}
		}
		return types.RevisionProposal{}, err
	}
	c.logger.Info("revision proposal ready", zap.String("section_id", id))
	return proposal, nil
}

// RequestAllProposals requests single revisions for ids (all sections when empty)
// with at most limit calls in flight. Proposals stored before a failure are kept.
func (c *Coordinator) RequestAllProposals(ctx context.Context, ids []string, limit int) (map[string]types.RevisionProposal, error) {
	if len(ids) == 0 {
		ids = types.SectionSet(c.store.Sections()).IDs()
	}
	if len(ids) == 0 {
		return nil, ErrNoSections
	}
	if limit <= 0 {
		limit = DefaultFanOut
	}

	var mu sync.Mutex
	proposals := make(map[string]types.RevisionProposal, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			p, err := c.RequestSingleRevision(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			proposals[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return proposals, err
	}
	return proposals, nil
}

// ApplyProposal commits one of the pending alternatives for id.
func (c *Coordinator) ApplyProposal(id string, choice types.Choice) (types.Section, error) {
	if !c.guard.TryAcquire(1) {
		return types.Section{}, ErrWholeSetBusy
	}
	defer c.guard.Release(1)
	return c.store.ApplyProposal(id, choice)
}

// DiscardProposal drops the pending proposal for id.
func (c *Coordinator) DiscardProposal(id string) error {
	return c.store.Discard(id)
}

// Edit replaces a section's content with user-provided text.
func (c *Coordinator) Edit(id, content string) error {
	if !c.guard.TryAcquire(1) {
		return ErrWholeSetBusy
	}
	defer c.guard.Release(1)
	return c.store.Edit(id, content)
}

// RequestBulkRevision rewrites every section in one call and commits the
// response immediately. Sections missing from the response are left unchanged.
func (c *Coordinator) RequestBulkRevision(ctx context.Context) (sections.Report, error) {
	if !c.guard.TryAcquire(wholeSetWeight) {
		return sections.Report{}, ErrWholeSetBusy
	}
	defer c.guard.Release(wholeSetWeight)

	snapshot := c.store.Sections()
	if len(snapshot) == 0 {
		return sections.Report{}, ErrNoSections
	}

	contents, err := llm.Invoke(ctx, c.gateway, "revise_all", func(ctx context.Context) (map[string]string, error) {
		return c.service.ReviseAll(ctx, snapshot)
	})
	if err != nil {
		return sections.Report{}, &RevisionError{Operation: "bulk revision", Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return sections.Report{}, &RevisionError{Operation: "bulk revision", Cause: err}
	}

	report := c.store.ApplyResult(sections.ContentMap(snapshot, contents))
	c.logger.Info("bulk revision applied",
		zap.Int("updated", len(report.Updated)),
		zap.Int("missing", len(report.Missing)))
	return report, nil
}

// RequestTailoring tailors the set to a target description. The tailored set is
// reconciled against the request-time set and held pending until ApplyTailoring.
func (c *Coordinator) RequestTailoring(ctx context.Context, target string) (types.JobMatchResult, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return types.JobMatchResult{}, errors.New("target description is empty")
	}
	if !c.guard.TryAcquire(wholeSetWeight) {
		return types.JobMatchResult{}, ErrWholeSetBusy
	}
	defer c.guard.Release(wholeSetWeight)

	snapshot := c.store.Sections()
	if len(snapshot) == 0 {
		return types.JobMatchResult{}, ErrNoSections
	}

	raw, err := llm.Invoke(ctx, c.gateway, "tailor", func(ctx context.Context) (types.JobMatchResult, error) {
		return c.service.TailorSections(ctx, snapshot, target)
	})
	if err != nil {
		return types.JobMatchResult{}, &RevisionError{Operation: "tailoring", Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return types.JobMatchResult{}, &RevisionError{Operation: "tailoring", Cause: err}
	}

	tailored, report := sections.Reconcile(snapshot, raw.TailoredSections)
	result := types.JobMatchResult{
		MatchPercentage:  scoring.MatchPercentage(len(raw.MatchingKeywords), len(raw.MissingKeywords)),
		MatchingKeywords: raw.MatchingKeywords,
		MissingKeywords:  raw.MissingKeywords,
		MatchFeedback:    raw.MatchFeedback,
		TailoredSections: tailored,
	}

	// Only sections the tailoring changed are committed later, so edits made to
	// other sections in the meantime survive.
	var candidates []types.Section
	for _, id := range report.Updated {
		if s, ok := types.SectionSet(tailored).Find(id); ok {
			candidates = append(candidates, s)
		}
	}

	c.mu.Lock()
	c.tailoring = &pendingTailoring{result: result, candidates: candidates}
	c.mu.Unlock()

	if report.Partial() {
		c.logger.Warn("tailoring response omitted sections; left unchanged",
			zap.Strings("section_ids", report.Missing))
	}
	return result, nil
}

// Tailoring returns the pending tailoring result, if any.
func (c *Coordinator) Tailoring() (types.JobMatchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tailoring == nil {
		return types.JobMatchResult{}, false
	}
	return c.tailoring.result, true
}

// ApplyTailoring commits the pending tailoring result.
func (c *Coordinator) ApplyTailoring() (sections.Report, error) {
	if !c.guard.TryAcquire(wholeSetWeight) {
		return sections.Report{}, ErrWholeSetBusy
	}
	defer c.guard.Release(wholeSetWeight)

	c.mu.Lock()
	pending := c.tailoring
	c.tailoring = nil
	c.mu.Unlock()
	if pending == nil {
		return sections.Report{}, ErrNoTailoring
	}

	return c.store.ApplyResult(pending.candidates), nil
}

// DiscardTailoring drops the pending tailoring result.
func (c *Coordinator) DiscardTailoring() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tailoring == nil {
		return ErrNoTailoring
	}
	c.tailoring = nil
	return nil
}

// Load replaces the section set with a freshly decomposed one and forgets
// pending tailoring. It is a whole-set operation.
func (c *Coordinator) Load(set []types.Section) error {
	return c.replace(func() error { return c.store.Load(set) })
}

// Restore replaces the section set with a persisted one verbatim. It is a
// whole-set operation.
func (c *Coordinator) Restore(set []types.Section) error {
	return c.replace(func() error { return c.store.Restore(set) })
}

// Reset empties the section set and forgets pending tailoring. It is a
// whole-set operation.
func (c *Coordinator) Reset() error {
	return c.replace(func() error {
		c.store.Reset()
		return nil
	})
}

func (c *Coordinator) replace(fn func() error) error {
	if !c.guard.TryAcquire(wholeSetWeight) {
		return ErrWholeSetBusy
	}
	defer c.guard.Release(wholeSetWeight)

	if err := fn(); err != nil {
		return err
	}
	c.mu.Lock()
	c.tailoring = nil
	c.mu.Unlock()
	return nil
}
