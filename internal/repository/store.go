package repository

import (
	"context"

	"product-template-service/internal/models"
)

// Tx is the view of registry state inside one atomic operation. Writes made
// through a Tx become visible to other operations only if the enclosing
// Atomically call returns nil.
//
// List methods skip the first start matches in id order and return at most
// limit items; limit 0 means no upper bound.
type Tx interface {
	GetTemplate(id uint64) (*models.ProductTemplate, error)
	ListTemplates(filter models.TemplateFilter, start, limit uint32) ([]models.ProductTemplate, error)
	SaveTemplate(t *models.ProductTemplate) error
	NextTemplateID() (uint64, error)
	TemplateCount() (uint64, error)

	GetPolicy(id uint64) (*models.TemplatePolicy, error)
	ListPolicies(filter models.PolicyFilter, start, limit uint32) ([]models.TemplatePolicy, error)
	SavePolicy(p *models.TemplatePolicy) error
	NextPolicyID() (uint64, error)
	PolicyCount() (uint64, error)

	Paused() (bool, error)
	SetPaused(paused bool) error
}

// Store serializes operations: fn runs with exclusive access to registry state
// and its writes are applied all together or not at all.
type Store interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

const (
	templateCounter = "template"
	policyCounter   = "template_policy"
)
