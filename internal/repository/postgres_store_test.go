package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"product-template-service/internal/apperr"
	"product-template-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var templateRowColumns = []string{
	"id", "name", "description", "category", "status", "risk_level", "premium_model",
	"coverage_type", "min_coverage", "max_coverage", "min_duration_days", "max_duration_days",
	"base_premium_rate_bps", "min_deductible", "max_deductible", "collateral_ratio_bps",
	"custom_params", "creator", "created_at", "updated_at", "version",
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(sqlx.NewDb(db, "postgres")), mock
}

func addTemplateRow(rows *sqlmock.Rows, id int64, status string, now time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "Crop cover", "Seasonal crop cover", "crop", status, "medium", "percentage",
		"parametric", 1000, 1_000_000, 30, 365, 200, 0, 500, 1500,
		[]byte(`[{"name":"irrigated","kind":"boolean","min":0,"max":0,"default":0,"default_bool":true,"default_index":0}]`),
		"alice", now, now, 1)
}

func TestPostgresStore_GetTemplate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_templates WHERE id = $1")).
		WithArgs(uint64(7)).
		WillReturnRows(addTemplateRow(sqlmock.NewRows(templateRowColumns), 7, "draft", now))
	mock.ExpectCommit()

	var got *models.ProductTemplate
	err := store.Atomically(context.Background(), func(tx Tx) error {
		var err error
		got, err = tx.GetTemplate(7)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, models.TemplateDraft, got.Status)
	assert.Equal(t, models.CategoryCrop, got.Category)
	require.Len(t, got.CustomParams, 1)
	assert.Equal(t, models.ParamBoolean, got.CustomParams[0].Kind)
	assert.True(t, got.CustomParams[0].DefaultBool)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetTemplateNotFoundRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_templates WHERE id = $1")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(templateRowColumns))
	mock.ExpectRollback()

	err := store.Atomically(context.Background(), func(tx Tx) error {
		_, err := tx.GetTemplate(99)
		return err
	})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateAllocatesIDAndUpserts(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE registry_counters SET value = value + 1 WHERE name = $1 RETURNING value")).
		WithArgs("template").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_templates")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Atomically(context.Background(), func(tx Tx) error {
		id, err := tx.NextTemplateID()
		if err != nil {
			return err
		}
		assert.Equal(t, uint64(3), id)
		return tx.SaveTemplate(&models.ProductTemplate{
			ID: id, Name: "n", Description: "d", Status: models.TemplateDraft,
			Creator: "alice", CreatedAt: now, UpdatedAt: now, Version: 1,
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListTemplatesFilterAndPage(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(templateRowColumns)
	addTemplateRow(rows, 4, "active", now)
	addTemplateRow(rows, 9, "active", now)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_templates WHERE status = $1 AND category = $2 ORDER BY id OFFSET $3 LIMIT $4")).
		WithArgs(models.TemplateActive, models.CategoryCrop, uint32(2), uint32(10)).
		WillReturnRows(rows)
	mock.ExpectCommit()

	var got []models.ProductTemplate
	err := store.Atomically(context.Background(), func(tx Tx) error {
		var err error
		got, err = tx.ListTemplates(models.TemplateFilter{Status: models.TemplateActive, Category: models.CategoryCrop}, 2, 10)
		return err
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(9), got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPoliciesWithoutLimit(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM template_policies WHERE holder = $1 ORDER BY policy_id OFFSET $2")).
		WithArgs("bob", uint32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"policy_id"}))
	mock.ExpectCommit()

	err := store.Atomically(context.Background(), func(tx Tx) error {
		policies, err := tx.ListPolicies(models.PolicyFilter{Holder: "bob"}, 0, 0)
		assert.Empty(t, policies)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetPausedWithoutStateRowFails(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registry_state SET paused = $1 WHERE id = 1")).
		WithArgs(true).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Atomically(context.Background(), func(tx Tx) error {
		return tx.SetPaused(true)
	})
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CommitFailureIsInternal(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT paused FROM registry_state WHERE id = 1")).
		WillReturnRows(sqlmock.NewRows([]string{"paused"}).AddRow(false))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := store.Atomically(context.Background(), func(tx Tx) error {
		paused, err := tx.Paused()
		assert.False(t, paused)
		return err
	})
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
