package services

import (
	"context"
	"log/slog"
	"math"

	"product-template-service/internal/apperr"
	"product-template-service/internal/governance"
	"product-template-service/internal/models"
	"product-template-service/internal/repository"
	"product-template-service/internal/validation"
)

// TemplateRegistry owns template records and their lifecycle. Every write runs
// inside one store operation, so a failed call leaves no trace.
type TemplateRegistry struct {
	store   repository.Store
	gateway governance.Gateway
	rules   models.TemplateValidationRules
	access  AccessControl
	options
}

func NewTemplateRegistry(
	store repository.Store,
	gateway governance.Gateway,
	rules models.TemplateValidationRules,
	access AccessControl,
	opts ...Option,
) (*TemplateRegistry, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	if access.admin == "" {
		return nil, apperr.New(apperr.InvalidInput, "admin", "access control is not configured")
	}
	return &TemplateRegistry{
		store:   store,
		gateway: gateway,
		rules:   rules,
		access:  access,
		options: buildOptions(opts),
	}, nil
}

// ============================================================================
// CREATE / UPDATE
// ============================================================================

func (r *TemplateRegistry) CreateTemplate(ctx context.Context, creator string, req models.CreateTemplateRequest) (uint64, error) {
	tmpl := req.ToTemplate()
	var id uint64

	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := requireRunning(tx); err != nil {
			return err
		}
		if creator == "" {
			return apperr.New(apperr.Unauthorized, "caller", "creator identity is required")
		}
		if err := collectTemplateIssues(&tmpl, r.rules).First(); err != nil {
			return err
		}

		now := r.clock.Now()
		tmpl.Status = models.TemplateDraft
		tmpl.Creator = creator
		tmpl.CreatedAt = now
		tmpl.UpdatedAt = now
		tmpl.Version = 1

		var err error
		if id, err = tx.NextTemplateID(); err != nil {
			return err
		}
		tmpl.ID = id
		return tx.SaveTemplate(&tmpl)
	})
	if err != nil {
		logRejected("create_template", err, "creator", creator)
		return 0, err
	}

	slog.Info("Template created", "template_id", id, "creator", creator, "premium_model", tmpl.PremiumModel)
	r.committed(ctx, models.TemplateEvent{
		Type: models.EventTemplateCreated, TemplateID: id, Actor: creator,
		Status: tmpl.Status, Version: tmpl.Version, At: tmpl.UpdatedAt,
	})
	return id, nil
}

// LintTemplate runs the create-time checks and reports every issue at once.
func (r *TemplateRegistry) LintTemplate(req models.CreateTemplateRequest) error {
	tmpl := req.ToTemplate()
	return collectTemplateIssues(&tmpl, r.rules).Err()
}

// UpdateTemplate merges the set fields of req into a Draft or Approved template.
// The status is kept as it was.
func (r *TemplateRegistry) UpdateTemplate(ctx context.Context, caller string, templateID uint64, req models.UpdateTemplateRequest) error {
	var event models.TemplateEvent

	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := requireRunning(tx); err != nil {
			return err
		}
		tmpl, err := tx.GetTemplate(templateID)
		if err != nil {
			return err
		}
		if err := requireCreator(caller, tmpl.Creator); err != nil {
			return err
		}
		if !tmpl.Status.IsEditable() {
			return apperr.Newf(apperr.InvalidTemplateStatus, "status", "cannot update a template in %s", tmpl.Status)
		}

		now := r.clock.Now()
		if elapsed := elapsedSince(tmpl.UpdatedAt, now); elapsed < r.rules.MinUpdateInterval() {
			return apperr.Newf(apperr.UpdateTooSoon, "updated_at", "%s since last update, minimum is %s", elapsed, r.rules.MinUpdateInterval())
		}
		if tmpl.Version == math.MaxUint32 {
			return apperr.New(apperr.Overflow, "version", "version counter exhausted")
		}

		req.ApplyTo(tmpl)
		if err := collectTemplateIssues(tmpl, r.rules).First(); err != nil {
			return err
		}
		tmpl.Version++
		tmpl.UpdatedAt = advance(tmpl.UpdatedAt, now)

		event = models.TemplateEvent{
			Type: models.EventTemplateUpdated, TemplateID: templateID, Actor: caller,
			Status: tmpl.Status, Version: tmpl.Version, At: tmpl.UpdatedAt,
		}
		return tx.SaveTemplate(tmpl)
	})
	if err != nil {
		logRejected("update_template", err, "template_id", templateID, "caller", caller)
		return err
	}

	slog.Info("Template updated", "template_id", templateID, "version", event.Version)
	r.committed(ctx, event)
	return nil
}

// ============================================================================
// STATUS TRANSITIONS
// ============================================================================

type transition struct {
	op        string
	authorize func(caller string, tmpl *models.ProductTemplate) error
	from      []models.TemplateStatus
	to        models.TemplateStatus
	event     models.TemplateEventType
}

func (r *TemplateRegistry) apply(ctx context.Context, caller string, templateID uint64, reason string, t transition) error {
	var event models.TemplateEvent

	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := requireRunning(tx); err != nil {
			return err
		}
		if err := validation.ValidateStringLength("reason", reason, 0, maxReasonLength); err != nil {
			return err
		}
		tmpl, err := tx.GetTemplate(templateID)
		if err != nil {
			return err
		}
		if err := t.authorize(caller, tmpl); err != nil {
			return err
		}
		if !statusIn(tmpl.Status, t.from) {
			return apperr.Newf(apperr.InvalidTemplateStatus, "status", "cannot %s a template in %s", t.op, tmpl.Status)
		}

		tmpl.Status = t.to
		tmpl.UpdatedAt = advance(tmpl.UpdatedAt, r.clock.Now())
		event = models.TemplateEvent{
			Type: t.event, TemplateID: templateID, Actor: caller, Reason: reason,
			Status: tmpl.Status, Version: tmpl.Version, At: tmpl.UpdatedAt,
		}
		return tx.SaveTemplate(tmpl)
	})
	if err != nil {
		logRejected(t.op, err, "template_id", templateID, "caller", caller)
		return err
	}

	slog.Info("Template status changed", "template_id", templateID, "op", t.op, "status", t.to)
	r.committed(ctx, event)
	return nil
}

func (r *TemplateRegistry) SubmitTemplateForReview(ctx context.Context, caller string, templateID uint64) error {
	return r.apply(ctx, caller, templateID, "", transition{
		op: "submit_template_for_review",
		authorize: func(caller string, tmpl *models.ProductTemplate) error {
			return requireCreator(caller, tmpl.Creator)
		},
		from:  []models.TemplateStatus{models.TemplateDraft},
		to:    models.TemplatePendingReview,
		event: models.EventTemplateSubmitted,
	})
}

func (r *TemplateRegistry) DeployTemplate(ctx context.Context, caller string, templateID uint64) error {
	return r.apply(ctx, caller, templateID, "", transition{
		op:        "deploy_template",
		authorize: r.adminOnly,
		from:      []models.TemplateStatus{models.TemplateApproved},
		to:        models.TemplateActive,
		event:     models.EventTemplateDeployed,
	})
}

func (r *TemplateRegistry) RetireTemplate(ctx context.Context, caller string, templateID uint64, reason string) error {
	return r.apply(ctx, caller, templateID, reason, transition{
		op:        "retire_template",
		authorize: r.adminOnly,
		from:      []models.TemplateStatus{models.TemplateActive},
		to:        models.TemplateDeprecated,
		event:     models.EventTemplateRetired,
	})
}

// ArchiveTemplate accepts Deprecated templates and Approved ones that were never deployed.
func (r *TemplateRegistry) ArchiveTemplate(ctx context.Context, caller string, templateID uint64, reason string) error {
	return r.apply(ctx, caller, templateID, reason, transition{
		op:        "archive_template",
		authorize: r.adminOnly,
		from:      []models.TemplateStatus{models.TemplateDeprecated, models.TemplateApproved},
		to:        models.TemplateArchived,
		event:     models.EventTemplateArchived,
	})
}

func (r *TemplateRegistry) adminOnly(caller string, _ *models.ProductTemplate) error {
	return r.access.requireAdmin(caller)
}

// ============================================================================
// GOVERNANCE
// ============================================================================

func (r *TemplateRegistry) ProposeTemplateApproval(ctx context.Context, caller string, templateID uint64, req models.ProposalRequest) (uint64, error) {
	return r.propose(ctx, caller, templateID, models.ProposalApproval, req)
}

// ProposeTemplateRejection asks governance to send a template under review back to Draft.
func (r *TemplateRegistry) ProposeTemplateRejection(ctx context.Context, caller string, templateID uint64, req models.ProposalRequest) (uint64, error) {
	return r.propose(ctx, caller, templateID, models.ProposalRejection, req)
}

func (r *TemplateRegistry) propose(ctx context.Context, caller string, templateID uint64, kind models.ProposalKind, req models.ProposalRequest) (uint64, error) {
	var proposalID uint64
	op := "propose_template_" + string(kind)

	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := requireRunning(tx); err != nil {
			return err
		}
		if err := r.access.requireMember(caller); err != nil {
			return err
		}
		if err := validateProposal(req, r.rules); err != nil {
			return err
		}
		tmpl, err := tx.GetTemplate(templateID)
		if err != nil {
			return err
		}
		if tmpl.Status != models.TemplatePendingReview {
			return apperr.Newf(apperr.InvalidTemplateStatus, "status", "proposals need a template in %s, got %s", models.TemplatePendingReview, tmpl.Status)
		}
		return nil
	})
	// Propose runs only once the checks have committed; execution re-checks the status.
	if err == nil {
		proposalID, err = r.gateway.Propose(ctx, governance.Proposal{
			TemplateID:   templateID,
			Kind:         kind,
			Proposer:     caller,
			Title:        req.Title,
			Description:  req.Description,
			Reason:       req.Reason,
			ThresholdBps: req.ThresholdPct * 100,
		})
		err = apperr.Wrap(err, "governance proposal")
	}
	if err != nil {
		logRejected(op, err, "template_id", templateID, "caller", caller)
		return 0, err
	}

	eventType := models.EventTemplateApprovalProposed
	if kind == models.ProposalRejection {
		eventType = models.EventTemplateRejectionProposed
	}
	slog.Info("Template proposal opened", "template_id", templateID, "proposal_id", proposalID, "kind", kind)
	r.committed(ctx, models.TemplateEvent{
		Type: eventType, TemplateID: templateID, ProposalID: proposalID, Actor: caller,
		Status: models.TemplatePendingReview, Reason: req.Reason, At: r.clock.Now(),
	})
	return proposalID, nil
}

// ExecuteTemplateApproval applies a settled proposal to its template. A passed
// approval moves it to Approved; a failed approval or a passed rejection moves
// it back to Draft; a failed rejection leaves it under review.
func (r *TemplateRegistry) ExecuteTemplateApproval(ctx context.Context, caller string, proposalID, templateID uint64) error {
	var event *models.TemplateEvent

	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := requireRunning(tx); err != nil {
			return err
		}
		if err := r.access.requireMember(caller); err != nil {
			return err
		}
		tmpl, err := tx.GetTemplate(templateID)
		if err != nil {
			return err
		}
		decision, err := r.gateway.Outcome(ctx, proposalID)
		if err != nil {
			return apperr.Wrap(err, "governance outcome")
		}
		if decision.TemplateID != templateID {
			return apperr.Newf(apperr.NotFound, "proposal_id", "proposal %d does not belong to template %d", proposalID, templateID)
		}
		if tmpl.Status != models.TemplatePendingReview {
			return apperr.Newf(apperr.InvalidTemplateStatus, "status", "cannot execute a proposal on a template in %s", tmpl.Status)
		}

		next, eventType, err := settle(decision)
		if err != nil {
			return err
		}
		if next == tmpl.Status {
			return nil
		}

		tmpl.Status = next
		tmpl.UpdatedAt = advance(tmpl.UpdatedAt, r.clock.Now())
		event = &models.TemplateEvent{
			Type: eventType, TemplateID: templateID, ProposalID: proposalID, Actor: caller,
			Status: tmpl.Status, Version: tmpl.Version, At: tmpl.UpdatedAt,
		}
		return tx.SaveTemplate(tmpl)
	})
	if err != nil {
		logRejected("execute_template_approval", err, "template_id", templateID, "proposal_id", proposalID, "caller", caller)
		return err
	}

	if event == nil {
		slog.Info("Proposal executed without status change", "template_id", templateID, "proposal_id", proposalID)
		return nil
	}
	slog.Info("Proposal executed", "template_id", templateID, "proposal_id", proposalID, "status", event.Status)
	r.committed(ctx, *event)
	return nil
}

func settle(d governance.Decision) (models.TemplateStatus, models.TemplateEventType, error) {
	switch d.Outcome {
	case models.OutcomePending:
		return "", "", apperr.Newf(apperr.GovernanceApprovalRequired, "proposal_id", "proposal %d has not been decided", d.ProposalID)
	case models.OutcomePassed, models.OutcomeFailed:
	default:
		return "", "", apperr.Newf(apperr.Internal, "proposal_id", "unknown outcome %q", d.Outcome)
	}

	passed := d.Outcome == models.OutcomePassed
	switch d.Kind {
	case models.ProposalApproval:
		if passed {
			return models.TemplateApproved, models.EventTemplateApproved, nil
		}
		return models.TemplateDraft, models.EventTemplateRejected, nil
	case models.ProposalRejection:
		if passed {
			return models.TemplateDraft, models.EventTemplateRejected, nil
		}
		return models.TemplatePendingReview, "", nil
	default:
		return "", "", apperr.Newf(apperr.Internal, "proposal_id", "unknown proposal kind %q", d.Kind)
	}
}

// ============================================================================
// PAUSE
// ============================================================================

func (r *TemplateRegistry) Pause(ctx context.Context, caller string) error {
	return r.setPaused(ctx, caller, true)
}

func (r *TemplateRegistry) Unpause(ctx context.Context, caller string) error {
	return r.setPaused(ctx, caller, false)
}

func (r *TemplateRegistry) setPaused(ctx context.Context, caller string, paused bool) error {
	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := r.access.requireAdmin(caller); err != nil {
			return err
		}
		return tx.SetPaused(paused)
	})
	if err != nil {
		logRejected("set_paused", err, "caller", caller, "paused", paused)
		return err
	}

	eventType := models.EventRegistryUnpaused
	if paused {
		eventType = models.EventRegistryPaused
	}
	slog.Info("Registry pause flag set", "paused", paused, "caller", caller)
	r.committed(ctx, models.TemplateEvent{Type: eventType, Actor: caller, At: r.clock.Now()})
	return nil
}

func (r *TemplateRegistry) IsPaused(ctx context.Context) (bool, error) {
	var paused bool
	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		var err error
		paused, err = tx.Paused()
		return err
	})
	return paused, err
}

// ============================================================================
// READS
// ============================================================================

func (r *TemplateRegistry) GetTemplate(ctx context.Context, templateID uint64) (*models.ProductTemplate, error) {
	var generation uint64
	if r.cache != nil {
		tmpl, gen, ok := r.cache.Get(ctx, templateID)
		if ok {
			return tmpl, nil
		}
		generation = gen
	}

	var tmpl *models.ProductTemplate
	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		var err error
		tmpl, err = tx.GetTemplate(templateID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Set(ctx, tmpl, generation)
	}
	return tmpl, nil
}

// GetActiveTemplates returns every Active template in id order.
func (r *TemplateRegistry) GetActiveTemplates(ctx context.Context) ([]models.ProductTemplate, error) {
	return r.listTemplates(ctx, models.TemplateFilter{Status: models.TemplateActive}, 0, 0)
}

func (r *TemplateRegistry) GetTemplatesByStatus(ctx context.Context, status models.TemplateStatus, start, limit uint32) ([]models.ProductTemplate, error) {
	if !status.IsValid() {
		return nil, apperr.Newf(apperr.InvalidInput, "status", "unknown status %q", status)
	}
	if err := validation.ValidatePagination(limit); err != nil {
		return nil, err
	}
	return r.listTemplates(ctx, models.TemplateFilter{Status: status}, start, limit)
}

func (r *TemplateRegistry) GetTemplatesByCategory(ctx context.Context, category models.ProductCategory, start, limit uint32) ([]models.ProductTemplate, error) {
	if !category.IsValid() {
		return nil, apperr.Newf(apperr.InvalidInput, "category", "unknown category %q", category)
	}
	if err := validation.ValidatePagination(limit); err != nil {
		return nil, err
	}
	return r.listTemplates(ctx, models.TemplateFilter{Category: category}, start, limit)
}

func (r *TemplateRegistry) listTemplates(ctx context.Context, filter models.TemplateFilter, start, limit uint32) ([]models.ProductTemplate, error) {
	var out []models.ProductTemplate
	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		var err error
		out, err = tx.ListTemplates(filter, start, limit)
		return err
	})
	return out, err
}

func (r *TemplateRegistry) GetTemplateCount(ctx context.Context) (uint64, error) {
	var count uint64
	err := r.store.Atomically(ctx, func(tx repository.Tx) error {
		var err error
		count, err = tx.TemplateCount()
		return err
	})
	return count, err
}

func (r *TemplateRegistry) GetValidationRules() models.TemplateValidationRules {
	return r.rules
}

// ============================================================================
// HELPERS
// ============================================================================

func requireRunning(tx repository.Tx) error {
	paused, err := tx.Paused()
	if err != nil {
		return err
	}
	if paused {
		return apperr.New(apperr.Paused, "", "registry is paused")
	}
	return nil
}

func statusIn(s models.TemplateStatus, set []models.TemplateStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

// committed runs the post-commit side effects of a write.
func (o *options) committed(ctx context.Context, event models.TemplateEvent) {
	// issuing a policy leaves the template untouched
	if o.cache != nil && event.TemplateID != 0 && event.Type != models.EventPolicyCreated {
		o.cache.Invalidate(ctx, event.TemplateID)
	}
	if err := o.publisher.PublishTemplateEvent(ctx, event); err != nil {
		slog.Error("failed to publish template event", "type", event.Type, "template_id", event.TemplateID, "error", err)
	}
}

func logRejected(op string, err error, attrs ...any) {
	attrs = append(attrs, "op", op, "kind", apperr.KindOf(err), "error", err)
	if apperr.KindOf(err) == apperr.Internal {
		slog.Error("Operation failed", attrs...)
		return
	}
	slog.Warn("Operation rejected", attrs...)
}
