package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"product-template-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const DefaultTemplateCacheTTL = 5 * time.Minute

// TemplateCache keeps recently read templates in Redis. It is advisory: every
// failure is logged and reported as a miss.
//
// Each template has a generation counter next to its entry. A miss hands the
// reader the generation it saw, and Set only stores the template if no write
// has bumped the generation since, so a slow reader cannot put back a version
// older than the last committed write.
type TemplateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// fillScript sets KEYS[1] to ARGV[2] for ARGV[3] ms when KEYS[2] still holds
// generation ARGV[1]. A missing generation counts as 0.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

func NewTemplateCache(client *redis.Client, ttl time.Duration) *TemplateCache {
	if ttl <= 0 {
		ttl = DefaultTemplateCacheTTL
	}
	return &TemplateCache{client: client, ttl: ttl}
}

// noGeneration never matches a stored generation, so Set after a failed Get is a no-op.
const noGeneration uint64 = math.MaxUint64

func templateKey(id uint64) string {
	return fmt.Sprintf("product_template:%d", id)
}

func generationKey(id uint64) string {
	return fmt.Sprintf("product_template:%d:gen", id)
}

// Get returns the cached template, or on a miss the generation to pass to Set.
func (c *TemplateCache) Get(ctx context.Context, id uint64) (*models.ProductTemplate, uint64, bool) {
	vals, err := c.client.MGet(ctx, templateKey(id), generationKey(id)).Result()
	if err != nil {
		slog.Warn("template cache read failed", "template_id", id, "error", err)
		return nil, noGeneration, false
	}

	var generation uint64
	if raw, ok := vals[1].(string); ok {
		if generation, err = strconv.ParseUint(raw, 10, 64); err != nil {
			slog.Warn("template cache generation unreadable", "template_id", id, "error", err)
			return nil, noGeneration, false
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, generation, false
	}
	var tmpl models.ProductTemplate
	if err := json.Unmarshal([]byte(raw), &tmpl); err != nil {
		slog.Warn("template cache entry unreadable", "template_id", id, "error", err)
		return nil, generation, false
	}
	return &tmpl, generation, true
}

// Set stores tmpl if the template's generation is still the one Get returned.
func (c *TemplateCache) Set(ctx context.Context, tmpl *models.ProductTemplate, generation uint64) {
	raw, err := json.Marshal(tmpl)
	if err != nil {
		slog.Warn("failed to marshal template for cache", "template_id", tmpl.ID, "error", err)
		return
	}
	keys := []string{templateKey(tmpl.ID), generationKey(tmpl.ID)}
	stored, err := fillScript.Run(ctx, c.client, keys, strconv.FormatUint(generation, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		slog.Warn("template cache write failed", "template_id", tmpl.ID, "error", err)
		return
	}
	if stored == 0 {
		slog.Debug("template cache fill skipped, newer write seen", "template_id", tmpl.ID, "generation", generation)
	}
}

// Invalidate bumps the generation and drops the entry in one transaction.
func (c *TemplateCache) Invalidate(ctx context.Context, id uint64) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Del(ctx, templateKey(id))
		return nil
	})
	if err != nil {
		slog.Warn("template cache invalidation failed", "template_id", id, "error", err)
	}
}
