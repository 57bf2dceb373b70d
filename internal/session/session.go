// Package session ties the analyzer, the revision coordinator and the
// exporters into one workspace whose state is written through to a
// SnapshotStore after every transition.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/analysis"
	"github.com/jonathan/ats-optimizer/internal/db"
	"github.com/jonathan/ats-optimizer/internal/extract"
	"github.com/jonathan/ats-optimizer/internal/rendering"
	"github.com/jonathan/ats-optimizer/internal/revision"
	"github.com/jonathan/ats-optimizer/internal/schemas"
	"github.com/jonathan/ats-optimizer/internal/sections"
	"github.com/jonathan/ats-optimizer/internal/types"
)

// Config holds the collaborators of a Session.
type Config struct {
	Namespace   string
	Snapshots   db.SnapshotStore
	Analyzer    *analysis.Analyzer
	Coordinator *revision.Coordinator
	Extractor   *extract.Extractor
	Render      rendering.Options
	Logger      *zap.Logger
}

// Session is one résumé workspace.
type Session struct {
	namespace string
	snapshots db.SnapshotStore
	analyzer  *analysis.Analyzer
	coord     *revision.Coordinator
	extractor *extract.Extractor
	render    rendering.Options
	logger    *zap.Logger

	mu         sync.Mutex
	step       types.Step
	resumeText string
	analysis   *types.AnalysisResult
}

// New creates an empty session. Call Restore to pick up persisted state.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = db.DefaultNamespace
	}
	snapshots := cfg.Snapshots
	if snapshots == nil {
		snapshots = db.NewMemoryStore()
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = extract.NewExtractor(logger)
	}
	render := cfg.Render
	if render.Page == (rendering.PageParams{}) {
		render.Page = rendering.DefaultPageParams()
	}

	return &Session{
		namespace: namespace,
		snapshots: snapshots,
		analyzer:  cfg.Analyzer,
		coord:     cfg.Coordinator,
		extractor: extractor,
		render:    render,
		logger:    logger.With(zap.String("namespace", namespace)),
		step:      types.StepUpload,
	}
}

// Namespace returns the snapshot key of the session.
func (s *Session) Namespace() string {
	return s.namespace
}

// Coordinator returns the revision coordinator.
func (s *Session) Coordinator() *revision.Coordinator {
	return s.coord
}

func (s *Session) store() *sections.Store {
	return s.coord.Store()
}

// Restore loads the persisted snapshot, if any. A snapshot that fails schema
// validation is rejected and the session stays empty.
func (s *Session) Restore(ctx context.Context) error {
	rec, err := s.snapshots.Load(ctx, s.namespace)
	if err != nil {
		return &RestoreError{Namespace: s.namespace, Message: "load failed", Cause: err}
	}
	if rec == nil {
		return nil
	}

	if err := schemas.Validate(schemas.Snapshot, rec.Data); err != nil {
		return &RestoreError{Namespace: s.namespace, Message: "snapshot does not match schema", Cause: err}
	}
	var snap types.Snapshot
	if err := json.Unmarshal(rec.Data, &snap); err != nil {
		return &RestoreError{Namespace: s.namespace, Message: "invalid snapshot JSON", Cause: err}
	}
	if err := s.coord.Restore(snap.Sections); err != nil {
		return &RestoreError{Namespace: s.namespace, Message: "invalid section set", Cause: err}
	}

	s.mu.Lock()
	s.step = snap.Step
	s.resumeText = snap.ResumeText
	s.analysis = snap.Analysis
	s.mu.Unlock()

	s.logger.Info("session restored",
		zap.String("step", string(snap.Step)),
		zap.Int("sections", len(snap.Sections)),
		zap.Time("updated_at", rec.UpdatedAt))
	return nil
}

// Snapshot returns the current serializable state.
func (s *Session) Snapshot() *types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *types.Snapshot {
	snap := &types.Snapshot{
		Step:       s.step,
		ResumeText: s.resumeText,
		Sections:   s.store().Sections(),
	}
	if snap.Sections == nil {
		snap.Sections = types.SectionSet{}
	}
	if s.analysis != nil {
		a := *s.analysis
		snap.Analysis = &a
	}
	return snap
}

// persist writes the current snapshot through to the store.
func (s *Session) persist(ctx context.Context) error {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return &PersistError{Namespace: s.namespace, Cause: err}
	}
	if err := s.snapshots.Save(ctx, s.namespace, data); err != nil {
		s.logger.Error("snapshot write failed", zap.Error(err))
		return &PersistError{Namespace: s.namespace, Cause: err}
	}
	return nil
}

// Analyze decomposes and scores resumeText, replaces the section set and moves
// the session to the dashboard.
func (s *Session) Analyze(ctx context.Context, resumeText string) (*types.AnalysisResult, error) {
	result, err := s.analyzer.Analyze(ctx, resumeText)
	if err != nil {
		return nil, err
	}
	if err := s.coord.Load(result.Sections); err != nil {
		return nil, fmt.Errorf("failed to load analyzed sections: %w", err)
	}

	s.mu.Lock()
	s.resumeText = resumeText
	s.analysis = result
	s.step = types.StepDashboard
	s.mu.Unlock()

	return result, s.persist(ctx)
}

// AnalyzeDocument extracts text from an uploaded document and analyzes it.
func (s *Session) AnalyzeDocument(ctx context.Context, content []byte, ext string) (*types.AnalysisResult, error) {
	text, err := s.extractor.ExtractBytes(content, ext)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, text)
}

// AnalyzeFile extracts text from the file at path and analyzes it.
func (s *Session) AnalyzeFile(ctx context.Context, path string) (*types.AnalysisResult, error) {
	text, err := s.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, text)
}

// Analysis returns the analysis result, if any.
func (s *Session) Analysis() (*types.AnalysisResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analysis == nil {
		return nil, false
	}
	a := *s.analysis
	return &a, true
}

// CurrentScore rescores the current sections with the stored findings. The
// stored analysis is not modified.
func (s *Session) CurrentScore() (types.AnalysisResult, error) {
	a, ok := s.Analysis()
	if !ok {
		return types.AnalysisResult{}, ErrNoResume
	}
	return s.analyzer.Rescore(*a, s.store().Sections()), nil
}

// Step returns the workflow step.
func (s *Session) Step() types.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SetStep moves the session to step. Dashboard and editor need an analysis;
// moving back to upload keeps the data so the user can return.
func (s *Session) SetStep(ctx context.Context, step types.Step) error {
	if _, err := types.ParseStep(string(step)); err != nil {
		return err
	}

	s.mu.Lock()
	if step != types.StepUpload && s.analysis == nil {
		s.mu.Unlock()
		return ErrNoResume
	}
	s.step = step
	s.mu.Unlock()

	return s.persist(ctx)
}

// Sections returns the current section set.
func (s *Session) Sections() []types.Section {
	return s.store().Sections()
}

// Edit replaces a section's content with user text.
func (s *Session) Edit(ctx context.Context, id, content string) error {
	if err := s.coord.Edit(id, content); err != nil {
		return err
	}
	return s.persist(ctx)
}

// Improve requests a pending proposal for one section. Proposals are not persisted.
func (s *Session) Improve(ctx context.Context, id string) (types.RevisionProposal, error) {
	return s.coord.RequestSingleRevision(ctx, id)
}

// ImproveAll requests proposals for ids, or for every section when ids is empty.
func (s *Session) ImproveAll(ctx context.Context, ids []string, limit int) (map[string]types.RevisionProposal, error) {
	return s.coord.RequestAllProposals(ctx, ids, limit)
}

// Proposal returns the pending proposal for id.
func (s *Session) Proposal(id string) (types.RevisionProposal, error) {
	return s.store().Proposal(id)
}

// ApplyProposal commits one alternative of the pending proposal for id.
func (s *Session) ApplyProposal(ctx context.Context, id string, choice types.Choice) (types.Section, error) {
	sec, err := s.coord.ApplyProposal(id, choice)
	if err != nil {
		return types.Section{}, err
	}
	return sec, s.persist(ctx)
}

// DiscardProposal drops the pending proposal for id.
func (s *Session) DiscardProposal(id string) error {
	return s.coord.DiscardProposal(id)
}

// ReviseAll rewrites every section in one request and commits the result.
func (s *Session) ReviseAll(ctx context.Context) (sections.Report, error) {
	report, err := s.coord.RequestBulkRevision(ctx)
	if err != nil {
		return sections.Report{}, err
	}
	return report, s.persist(ctx)
}

// Tailor requests a tailoring against a job description. The result stays
// pending until ApplyTailoring.
func (s *Session) Tailor(ctx context.Context, jobDescription string) (types.JobMatchResult, error) {
	return s.coord.RequestTailoring(ctx, jobDescription)
}

// Tailoring returns the pending tailoring result, if any.
func (s *Session) Tailoring() (types.JobMatchResult, bool) {
	return s.coord.Tailoring()
}

// ApplyTailoring commits the pending tailoring.
func (s *Session) ApplyTailoring(ctx context.Context) (sections.Report, error) {
	report, err := s.coord.ApplyTailoring()
	if err != nil {
		return sections.Report{}, err
	}
	return report, s.persist(ctx)
}

// DiscardTailoring drops the pending tailoring.
func (s *Session) DiscardTailoring() error {
	return s.coord.DiscardTailoring()
}

// Export renders the current section set.
func (s *Session) Export(format rendering.Format) ([]byte, error) {
	return rendering.Render(format, s.store().Sections(), s.render)
}

// Reset starts over: sections, proposals, tailoring and the stored snapshot
// are all dropped.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.coord.Reset(); err != nil {
		return err
	}

	s.mu.Lock()
	s.step = types.StepUpload
	s.resumeText = ""
	s.analysis = nil
	s.mu.Unlock()

	if err := s.snapshots.Delete(ctx, s.namespace); err != nil {
		return &PersistError{Namespace: s.namespace, Cause: err}
	}
	s.logger.Info("session reset")
	return nil
}
