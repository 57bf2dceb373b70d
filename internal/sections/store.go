package sections

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// Store is the single in-memory owner of the section set and of the
// pending revision proposals, which live in a side table keyed by section id.
type Store struct {
	mu        sync.RWMutex
	sections  []types.Section
	proposals map[string]types.RevisionProposal
	logger    *zap.Logger
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		proposals: make(map[string]types.RevisionProposal),
		logger:    logger,
	}
}

// Load replaces the store contents with a freshly decomposed set.
// This is the first observation of each section, so OriginalContent is assigned
// here: the candidate's own original when present, otherwise its content.
// Pending proposals are dropped.
func (s *Store) Load(set []types.Section) error {
	if err := validateSet(set); err != nil {
		return err
	}

	loaded := make([]types.Section, len(set))
	for i, sec := range set {
		loaded[i] = sec
		if loaded[i].OriginalContent == "" {
			loaded[i].OriginalContent = sec.Content
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = loaded
	s.proposals = make(map[string]types.RevisionProposal)
	return nil
}

// Restore replaces the store contents with a previously persisted set verbatim.
func (s *Store) Restore(set []types.Section) error {
	if err := validateSet(set); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = types.SectionSet(set).Clone()
	s.proposals = make(map[string]types.RevisionProposal)
	return nil
}

// Reset empties the store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = nil
	s.proposals = make(map[string]types.RevisionProposal)
}

// Sections returns a copy of the current set in display order.
func (s *Store) Sections() []types.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.SectionSet(s.sections).Clone()
}

// Section returns one section by id.
func (s *Store) Section(id string) (types.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.sections[i], nil
	}
	return types.Section{}, &NotFoundError{ID: id}
}

// Len returns the number of sections.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sections)
}

// ApplyResult reconciles an externally produced set into the store in one step.
// Proposals pending for any id whose content changed are discarded as stale.
func (s *Store) ApplyResult(candidates []types.Section) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, report := Reconcile(s.sections, candidates)
	s.sections = next
	for _, id := range report.Updated {
		delete(s.proposals, id)
	}

	if report.Partial() {
		s.logger.Warn("revision response omitted sections; left unchanged",
			zap.Strings("section_ids", report.Missing))
	}
	if len(report.Ignored) > 0 {
		s.logger.Warn("revision response contained unknown sections; ignored",
			zap.Strings("section_ids", report.Ignored))
	}
	return report
}

// Edit sets a section's content directly.
func (s *Store) Edit(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	s.sections[i].Content = content
	return nil
}

// SetProposal records a pending proposal, replacing any earlier one for the same id.
func (s *Store) SetProposal(p types.RevisionProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(p.SectionID) < 0 {
		return &NotFoundError{ID: p.SectionID}
	}
	s.proposals[p.SectionID] = p
	return nil
}

// SetProposalFor records a proposal produced from base. It is rejected with
// ErrStaleProposal when the section's content is no longer base, so a
// proposal can never revert content committed while it was in flight.
func (s *Store) SetProposalFor(p types.RevisionProposal, base string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(p.SectionID)
	if i < 0 {
		return &NotFoundError{ID: p.SectionID}
	}
	if s.sections[i].Content != base {
		return ErrStaleProposal
	}
	s.proposals[p.SectionID] = p
	return nil
}

// Proposal returns the pending proposal for id.
func (s *Store) Proposal(id string) (types.RevisionProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proposals[id]
	if !ok {
		return types.RevisionProposal{}, &NoProposalError{ID: id}
	}
	return p, nil
}

// HasProposal reports whether a proposal is pending for id.
func (s *Store) HasProposal(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.proposals[id]
	return ok
}

// PendingProposals returns the ids with a pending proposal, in display order.
func (s *Store) PendingProposals() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, sec := range s.sections {
		if _, ok := s.proposals[sec.ID]; ok {
			ids = append(ids, sec.ID)
		}
	}
	return ids
}

// ApplyProposal sets the section's content to the chosen alternative and
// removes the proposal.
func (s *Store) ApplyProposal(id string, choice types.Choice) (types.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Section{}, &NotFoundError{ID: id}
	}
	p, ok := s.proposals[id]
	if !ok {
		return types.Section{}, &NoProposalError{ID: id}
	}
	content, err := p.Pick(choice)
	if err != nil {
		return types.Section{}, err
	}

	s.sections[i].Content = content
	delete(s.proposals, id)
	return s.sections[i], nil
}

// Discard drops a pending proposal without touching the section.
func (s *Store) Discard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[id]; !ok {
		return &NoProposalError{ID: id}
	}
	delete(s.proposals, id)
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, sec := range s.sections {
		if sec.ID == id {
			return i
		}
	}
	return -1
}

func validateSet(set []types.Section) error {
	seen := make(map[string]bool, len(set))
	for i, sec := range set {
		if sec.ID == "" {
			return &InvalidSetError{Message: fmt.Sprintf("section at position %d has no id", i)}
		}
		if seen[sec.ID] {
			return &InvalidSetError{Message: fmt.Sprintf("duplicate section id %q", sec.ID)}
		}
		seen[sec.ID] = true
	}
	return nil
}
