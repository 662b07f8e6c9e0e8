package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"product-template-service/internal/governance"
	"product-template-service/internal/models"
	"product-template-service/internal/repository"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

const (
	testAdmin   = "admin"
	testMember  = "voter"
	testCreator = "alice"
	testHolder  = "bob"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.TemplateEvent
}

func (p *recordingPublisher) PublishTemplateEvent(_ context.Context, e models.TemplateEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []models.TemplateEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.TemplateEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func testRules() models.TemplateValidationRules {
	return models.TemplateValidationRules{
		MinCollateralRatioBps: 1000,
		MaxPremiumRateBps:     5000,
		MinDurationDays:       1,
		MaxDurationDays:       365,
		ApprovalThresholdBps:  5100,
		MinUpdateIntervalSecs: 86_400,
	}
}

func testPricing() models.PricingConfig {
	return models.PricingConfig{
		RiskMultipliersBps: map[models.RiskLevel]uint32{
			models.RiskLow:      8000,
			models.RiskMedium:   10000,
			models.RiskHigh:     15000,
			models.RiskVeryHigh: 25000,
		},
		Tiers: []models.CoverageTier{
			{FromCoverage: 0, MultiplierBps: 10000},
			{FromCoverage: 100_000_001, MultiplierBps: 9000},
			{FromCoverage: 1_000_000_001, MultiplierBps: 8000},
		},
		BooleanAdjustments: map[string]uint32{
			"additional_coverage": 12000,
			"high_deductible":     8000,
		},
	}
}

func validCreateRequest() models.CreateTemplateRequest {
	return models.CreateTemplateRequest{
		Name:               "Smallholder crop cover",
		Description:        "Parametric rainfall cover for smallholder farms",
		Category:           models.CategoryCrop,
		RiskLevel:          models.RiskMedium,
		PremiumModel:       models.PremiumPercentage,
		CoverageType:       models.CoverageParametric,
		MinCoverage:        10_000,
		MaxCoverage:        1_000_000,
		MinDurationDays:    30,
		MaxDurationDays:    365,
		BasePremiumRateBps: 200,
		MinDeductible:      0,
		MaxDeductible:      5_000,
		CollateralRatioBps: 1500,
		CustomParams: []models.CustomParam{
			models.ChoiceParam("irrigation", []string{"rainfed", "irrigated"}, 0),
			models.BooleanParam("additional_coverage", false),
			models.IntegerParam("plots", 1, 10, 1),
		},
	}
}

type testEnv struct {
	registry  *TemplateRegistry
	factory   *PolicyFactory
	board     *governance.Board
	clock     *manualClock
	publisher *recordingPublisher
	store     *repository.MemoryStore
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		board:     governance.NewBoard(),
		clock:     newManualClock(),
		publisher: &recordingPublisher{},
		store:     repository.NewMemoryStore(),
	}
	access, err := NewAccessControl(testAdmin, []string{testMember})
	require.NoError(t, err)

	opts = append([]Option{WithClock(env.clock), WithPublisher(env.publisher)}, opts...)
	env.registry, err = NewTemplateRegistry(env.store, env.board, testRules(), access, opts...)
	require.NoError(t, err)

	calc, err := NewPremiumCalculator(testPricing())
	require.NoError(t, err)
	env.factory = NewPolicyFactory(env.store, calc, opts...)
	return env
}

func (e *testEnv) create(t *testing.T, req models.CreateTemplateRequest) uint64 {
	t.Helper()
	id, err := e.registry.CreateTemplate(context.Background(), testCreator, req)
	require.NoError(t, err)
	return id
}

// approve walks a new template to Approved through a passed proposal.
func (e *testEnv) approve(t *testing.T, id uint64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.registry.SubmitTemplateForReview(ctx, testCreator, id))
	proposalID, err := e.registry.ProposeTemplateApproval(ctx, testMember, id, validProposal())
	require.NoError(t, err)
	require.NoError(t, e.board.Decide(proposalID, true))
	require.NoError(t, e.registry.ExecuteTemplateApproval(ctx, testMember, proposalID, id))
}

// activate creates a template and deploys it.
func (e *testEnv) activate(t *testing.T, req models.CreateTemplateRequest) uint64 {
	t.Helper()
	id := e.create(t, req)
	e.approve(t, id)
	require.NoError(t, e.registry.DeployTemplate(context.Background(), testAdmin, id))
	return id
}

func validProposal() models.ProposalRequest {
	return models.ProposalRequest{
		Title:        "Approve crop cover",
		Description:  "Reviewed pricing and bounds",
		ThresholdPct: 60,
	}
}
