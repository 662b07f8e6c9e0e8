package repository

import (
	"context"
	"sync"

	"product-template-service/internal/apperr"
	"product-template-service/internal/models"
)

// MemoryStore implements Store in memory.
// One mutex serializes operations; writes are staged on the transaction and
// copied into the store only when the operation succeeds.
type MemoryStore struct {
	mu          sync.Mutex
	templates   map[uint64]models.ProductTemplate
	policies    map[uint64]models.TemplatePolicy
	templateSeq uint64
	policySeq   uint64
	paused      bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[uint64]models.ProductTemplate),
		policies:  make(map[uint64]models.TemplatePolicy),
	}
}

func (s *MemoryStore) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(err, "operation cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:       s,
		templates:   make(map[uint64]models.ProductTemplate),
		policies:    make(map[uint64]models.TemplatePolicy),
		templateSeq: s.templateSeq,
		policySeq:   s.policySeq,
		paused:      s.paused,
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTx struct {
	store       *MemoryStore
	templates   map[uint64]models.ProductTemplate
	policies    map[uint64]models.TemplatePolicy
	templateSeq uint64
	policySeq   uint64
	paused      bool
}

func (tx *memoryTx) commit() {
	s := tx.store
	for id, t := range tx.templates {
		s.templates[id] = t
	}
	for id, p := range tx.policies {
		s.policies[id] = p
	}
	s.templateSeq = tx.templateSeq
	s.policySeq = tx.policySeq
	s.paused = tx.paused
}

func (tx *memoryTx) lookupTemplate(id uint64) (models.ProductTemplate, bool) {
	if t, ok := tx.templates[id]; ok {
		return t, true
	}
	t, ok := tx.store.templates[id]
	return t, ok
}

func (tx *memoryTx) GetTemplate(id uint64) (*models.ProductTemplate, error) {
	t, ok := tx.lookupTemplate(id)
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "template_id", "template %d not found", id)
	}
	out := t.Clone()
	return &out, nil
}

func (tx *memoryTx) ListTemplates(filter models.TemplateFilter, start, limit uint32) ([]models.ProductTemplate, error) {
	out := []models.ProductTemplate{}
	var found uint32
	// ids are dense: assigned 1..n and never removed
	for id := uint64(1); id <= tx.templateSeq; id++ {
		t, ok := tx.lookupTemplate(id)
		if !ok || !filter.Matches(&t) {
			continue
		}
		found++
		if found <= start {
			continue
		}
		out = append(out, t.Clone())
		if limit > 0 && uint32(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (tx *memoryTx) SaveTemplate(t *models.ProductTemplate) error {
	if t.ID == 0 || t.ID > tx.templateSeq {
		return apperr.Newf(apperr.Internal, "template_id", "template id %d was never allocated", t.ID)
	}
	tx.templates[t.ID] = t.Clone()
	return nil
}

func (tx *memoryTx) NextTemplateID() (uint64, error) {
	tx.templateSeq++
	return tx.templateSeq, nil
}

func (tx *memoryTx) TemplateCount() (uint64, error) {
	return tx.templateSeq, nil
}

func (tx *memoryTx) lookupPolicy(id uint64) (models.TemplatePolicy, bool) {
	if p, ok := tx.policies[id]; ok {
		return p, true
	}
	p, ok := tx.store.policies[id]
	return p, ok
}

func (tx *memoryTx) GetPolicy(id uint64) (*models.TemplatePolicy, error) {
	p, ok := tx.lookupPolicy(id)
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "policy_id", "policy %d not found", id)
	}
	out := p.Clone()
	return &out, nil
}

func (tx *memoryTx) ListPolicies(filter models.PolicyFilter, start, limit uint32) ([]models.TemplatePolicy, error) {
	out := []models.TemplatePolicy{}
	var found uint32
	for id := uint64(1); id <= tx.policySeq; id++ {
		p, ok := tx.lookupPolicy(id)
		if !ok || !filter.Matches(&p) {
			continue
		}
		found++
		if found <= start {
			continue
		}
		out = append(out, p.Clone())
		if limit > 0 && uint32(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (tx *memoryTx) SavePolicy(p *models.TemplatePolicy) error {
	if p.PolicyID == 0 || p.PolicyID > tx.policySeq {
		return apperr.Newf(apperr.Internal, "policy_id", "policy id %d was never allocated", p.PolicyID)
	}
	if _, exists := tx.lookupPolicy(p.PolicyID); exists {
		return apperr.Newf(apperr.Internal, "policy_id", "policy %d already stored", p.PolicyID)
	}
	tx.policies[p.PolicyID] = p.Clone()
	return nil
}

func (tx *memoryTx) NextPolicyID() (uint64, error) {
	tx.policySeq++
	return tx.policySeq, nil
}

func (tx *memoryTx) PolicyCount() (uint64, error) {
	return tx.policySeq, nil
}

func (tx *memoryTx) Paused() (bool, error) {
	return tx.paused, nil
}

func (tx *memoryTx) SetPaused(paused bool) error {
	tx.paused = paused
	return nil
}
