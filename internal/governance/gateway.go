// Package governance defines the port the registry uses to open proposals and
// read their outcomes, plus an in-process board implementing it.
package governance

import (
	"context"

	"product-template-service/internal/models"
)

// Proposal is what the registry submits when a governance member asks for a
// template to be approved or sent back to draft.
type Proposal struct {
	TemplateID   uint64              `json:"template_id"`
	Kind         models.ProposalKind `json:"kind"`
	Proposer     string              `json:"proposer"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Reason       string              `json:"reason,omitempty"`
	ThresholdBps uint32              `json:"threshold_bps"`
}

type Decision struct {
	ProposalID uint64                 `json:"proposal_id"`
	TemplateID uint64                 `json:"template_id"`
	Kind       models.ProposalKind    `json:"kind"`
	Outcome    models.ProposalOutcome `json:"outcome"`
}

// Gateway is the external governance system. Outcome returns an apperr NotFound
// error for ids it never issued.
type Gateway interface {
	Propose(ctx context.Context, p Proposal) (uint64, error)
	Outcome(ctx context.Context, proposalID uint64) (Decision, error)
}
