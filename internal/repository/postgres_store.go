package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"product-template-service/internal/apperr"
	"product-template-service/internal/models"
	"product-template-service/internal/utils"

	"github.com/jmoiron/sqlx"
)

const templateColumns = `id, name, description, category, status, risk_level, premium_model,
	coverage_type, min_coverage, max_coverage, min_duration_days, max_duration_days,
	base_premium_rate_bps, min_deductible, max_deductible, collateral_ratio_bps,
	custom_params, creator, created_at, updated_at, version`

const policyColumns = `policy_id, template_id, holder, coverage_amount, duration_days,
	deductible, custom_values, premium_amount, required_collateral, created_at,
	start_time, end_time, template_version`

// PostgresStore runs each operation in a serializable transaction.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Atomically(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return apperr.Wrap(fmt.Errorf("failed to begin transaction: %w", err), "begin transaction")
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Error("failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = fn(&postgresTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return apperr.Wrap(fmt.Errorf("failed to commit transaction: %w", err), "commit transaction")
	}
	return nil
}

type postgresTx struct {
	ctx context.Context
	tx  *sqlx.Tx
}

func (t *postgresTx) GetTemplate(id uint64) (*models.ProductTemplate, error) {
	var tmpl models.ProductTemplate
	query := `SELECT ` + templateColumns + ` FROM product_templates WHERE id = $1`
	if err := t.tx.GetContext(t.ctx, &tmpl, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Newf(apperr.NotFound, "template_id", "template %d not found", id)
		}
		return nil, apperr.Wrap(fmt.Errorf("failed to get template: %w", err), "get template")
	}
	return &tmpl, nil
}

func (t *postgresTx) ListTemplates(filter models.TemplateFilter, start, limit uint32) ([]models.ProductTemplate, error) {
	var conditions []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + templateColumns + ` FROM product_templates`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += paginate(&args, "id", start, limit)

	templates := []models.ProductTemplate{}
	if err := t.tx.SelectContext(t.ctx, &templates, query, args...); err != nil {
		return nil, apperr.Wrap(fmt.Errorf("failed to list templates: %w", err), "list templates")
	}
	return templates, nil
}

func (t *postgresTx) SaveTemplate(tmpl *models.ProductTemplate) error {
	query := `
		INSERT INTO product_templates (` + templateColumns + `)
		VALUES (:id, :name, :description, :category, :status, :risk_level, :premium_model,
			:coverage_type, :min_coverage, :max_coverage, :min_duration_days, :max_duration_days,
			:base_premium_rate_bps, :min_deductible, :max_deductible, :collateral_ratio_bps,
			:custom_params, :creator, :created_at, :updated_at, :version)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			status = EXCLUDED.status,
			risk_level = EXCLUDED.risk_level,
			premium_model = EXCLUDED.premium_model,
			coverage_type = EXCLUDED.coverage_type,
			min_coverage = EXCLUDED.min_coverage,
			max_coverage = EXCLUDED.max_coverage,
			min_duration_days = EXCLUDED.min_duration_days,
			max_duration_days = EXCLUDED.max_duration_days,
			base_premium_rate_bps = EXCLUDED.base_premium_rate_bps,
			min_deductible = EXCLUDED.min_deductible,
			max_deductible = EXCLUDED.max_deductible,
			collateral_ratio_bps = EXCLUDED.collateral_ratio_bps,
			custom_params = EXCLUDED.custom_params,
			updated_at = EXCLUDED.updated_at,
			version = EXCLUDED.version`

	if _, err := t.tx.NamedExecContext(t.ctx, query, tmpl); err != nil {
		return apperr.Wrap(fmt.Errorf("failed to save template: %w", err), "save template")
	}
	return nil
}

func (t *postgresTx) NextTemplateID() (uint64, error) {
	return t.nextID(templateCounter)
}

func (t *postgresTx) TemplateCount() (uint64, error) {
	return t.counter(templateCounter)
}

func (t *postgresTx) GetPolicy(id uint64) (*models.TemplatePolicy, error) {
	var policy models.TemplatePolicy
	query := `SELECT ` + policyColumns + ` FROM template_policies WHERE policy_id = $1`
	if err := t.tx.GetContext(t.ctx, &policy, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Newf(apperr.NotFound, "policy_id", "policy %d not found", id)
		}
		return nil, apperr.Wrap(fmt.Errorf("failed to get policy: %w", err), "get policy")
	}
	return &policy, nil
}

func (t *postgresTx) ListPolicies(filter models.PolicyFilter, start, limit uint32) ([]models.TemplatePolicy, error) {
	var conditions []string
	var args []any
	if filter.Holder != "" {
		args = append(args, filter.Holder)
		conditions = append(conditions, fmt.Sprintf("holder = $%d", len(args)))
	}
	if filter.TemplateID != 0 {
		args = append(args, filter.TemplateID)
		conditions = append(conditions, fmt.Sprintf("template_id = $%d", len(args)))
	}

	query := `SELECT ` + policyColumns + ` FROM template_policies`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += paginate(&args, "policy_id", start, limit)

	policies := []models.TemplatePolicy{}
	if err := t.tx.SelectContext(t.ctx, &policies, query, args...); err != nil {
		return nil, apperr.Wrap(fmt.Errorf("failed to list policies: %w", err), "list policies")
	}
	return policies, nil
}

func (t *postgresTx) SavePolicy(p *models.TemplatePolicy) error {
	query := `
		INSERT INTO template_policies (` + policyColumns + `)
		VALUES (:policy_id, :template_id, :holder, :coverage_amount, :duration_days,
			:deductible, :custom_values, :premium_amount, :required_collateral, :created_at,
			:start_time, :end_time, :template_version)`

	if _, err := t.tx.NamedExecContext(t.ctx, query, p); err != nil {
		return apperr.Wrap(fmt.Errorf("failed to insert policy: %w", err), "save policy")
	}
	return nil
}

func (t *postgresTx) NextPolicyID() (uint64, error) {
	return t.nextID(policyCounter)
}

func (t *postgresTx) PolicyCount() (uint64, error) {
	return t.counter(policyCounter)
}

func (t *postgresTx) Paused() (bool, error) {
	var paused bool
	if err := t.tx.GetContext(t.ctx, &paused, `SELECT paused FROM registry_state WHERE id = 1`); err != nil {
		return false, apperr.Wrap(fmt.Errorf("failed to read pause flag: %w", err), "read pause flag")
	}
	return paused, nil
}

func (t *postgresTx) SetPaused(paused bool) error {
	err := utils.ExecWithCheck(t.ctx, t.tx, `UPDATE registry_state SET paused = $1 WHERE id = 1`, utils.ExecUpdate, paused)
	if err != nil {
		return apperr.Wrap(fmt.Errorf("failed to set pause flag: %w", err), "set pause flag")
	}
	return nil
}

func (t *postgresTx) nextID(name string) (uint64, error) {
	var id uint64
	query := `UPDATE registry_counters SET value = value + 1 WHERE name = $1 RETURNING value`
	if err := t.tx.GetContext(t.ctx, &id, query, name); err != nil {
		return 0, apperr.Wrap(fmt.Errorf("failed to allocate %s id: %w", name, err), "allocate id")
	}
	return id, nil
}

func (t *postgresTx) counter(name string) (uint64, error) {
	var value uint64
	if err := t.tx.GetContext(t.ctx, &value, `SELECT value FROM registry_counters WHERE name = $1`, name); err != nil {
		return 0, apperr.Wrap(fmt.Errorf("failed to read %s counter: %w", name, err), "read counter")
	}
	return value, nil
}

// paginate appends the id ordering and OFFSET/LIMIT clause; limit 0 leaves the page open.
func paginate(args *[]any, idColumn string, start, limit uint32) string {
	*args = append(*args, start)
	clause := fmt.Sprintf(" ORDER BY %s OFFSET $%d", idColumn, len(*args))
	if limit > 0 {
		*args = append(*args, limit)
		clause += fmt.Sprintf(" LIMIT $%d", len(*args))
	}
	return clause
}
