package governance

import (
	"context"
	"log/slog"
	"sync"

	"product-template-service/internal/apperr"
	"product-template-service/internal/models"
)

// Board is an in-memory Gateway. Proposals start Pending and are settled by an
// operator through Decide.
type Board struct {
	mu        sync.RWMutex
	nextID    uint64
	proposals map[uint64]*boardEntry
}

type boardEntry struct {
	proposal Proposal
	outcome  models.ProposalOutcome
}

func NewBoard() *Board {
	return &Board{proposals: make(map[uint64]*boardEntry)}
}

func (b *Board) Propose(ctx context.Context, p Proposal) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperr.Wrap(err, "propose")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.proposals[b.nextID] = &boardEntry{proposal: p, outcome: models.OutcomePending}
	slog.Info("governance proposal opened", "proposal_id", b.nextID, "template_id", p.TemplateID, "kind", p.Kind)
	return b.nextID, nil
}

func (b *Board) Outcome(ctx context.Context, proposalID uint64) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, apperr.Wrap(err, "proposal outcome")
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.proposals[proposalID]
	if !ok {
		return Decision{}, apperr.Newf(apperr.NotFound, "proposal_id", "proposal %d not found", proposalID)
	}
	return Decision{
		ProposalID: proposalID,
		TemplateID: e.proposal.TemplateID,
		Kind:       e.proposal.Kind,
		Outcome:    e.outcome,
	}, nil
}

// Decide settles a pending proposal. A settled proposal cannot be changed.
func (b *Board) Decide(proposalID uint64, passed bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.proposals[proposalID]
	if !ok {
		return apperr.Newf(apperr.NotFound, "proposal_id", "proposal %d not found", proposalID)
	}
	if e.outcome != models.OutcomePending {
		return apperr.Newf(apperr.InvalidInput, "proposal_id", "proposal %d already %s", proposalID, e.outcome)
	}
	e.outcome = models.OutcomeFailed
	if passed {
		e.outcome = models.OutcomePassed
	}
	slog.Info("governance proposal settled", "proposal_id", proposalID, "outcome", e.outcome)
	return nil
}

// Proposal returns what was submitted under proposalID.
func (b *Board) Proposal(proposalID uint64) (Proposal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.proposals[proposalID]
	if !ok {
		return Proposal{}, false
	}
	return e.proposal, true
}
