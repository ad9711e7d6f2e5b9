package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"timed-quiz/internal/domain"
)

// CategoryLoader fetches question sets from a backing store (file, Postgres, ...).
type CategoryLoader interface {
	LoadCategory(ctx context.Context, categoryID string) (domain.Category, error)
	LoadCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryRepository caches question sets in Redis (hash per category) and falls back to a loader on cache miss.
// Categories are stored as: HSET category:{id} title .. description .. timeLimit .. questions {json}
// The list of known IDs is:   SADD categories:index {id}...
// Only a full list load writes the index, so it never holds a partial set.
type CategoryRepository struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCategoryRepository(client *redis.Client, loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CategoryRepository) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	if category, ok := r.readCached(ctx, categoryID); ok {
		return category, nil
	}

	result, err, _ := r.sf.Do(categoryID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if category, ok := r.readCached(ctx, categoryID); ok {
			return category, nil
		}

		category, err := r.loader.LoadCategory(ctx, categoryID)
		if err != nil {
			return domain.Category{}, err
		}
		pipe := r.client.Pipeline()
		if err := r.queueWrite(ctx, pipe, category, r.ttlWithJitter()); err != nil {
			return domain.Category{}, err
		}
		_, _ = pipe.Exec(ctx)
		return category, nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return result.(domain.Category), nil
}

func (r *CategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err == nil && len(ids) > 0 {
		sort.Strings(ids)
		categories := make([]domain.Category, 0, len(ids))
		complete := true
		for _, id := range ids {
			category, ok := r.readCached(ctx, id)
			if !ok {
				complete = false
				break
			}
			categories = append(categories, category)
		}
		if complete {
			return categories, nil
		}
	}

	result, err, _ := r.sf.Do(indexKey, func() (interface{}, error) {
		categories, err := r.loader.LoadCategories(ctx)
		if err != nil {
			return nil, err
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

		ttl := r.ttlWithJitter()
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, indexKey)
		for _, c := range categories {
			if err := r.queueWrite(ctx, pipe, c, ttl); err != nil {
				return nil, err
			}
			pipe.SAdd(ctx, indexKey, c.ID)
		}
		if ttl > 0 && len(categories) > 0 {
			pipe.Expire(ctx, indexKey, ttl)
		}
		_, _ = pipe.Exec(ctx)
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

const indexKey = "categories:index"

func (r *CategoryRepository) categoryKey(categoryID string) string {
	return "category:" + categoryID
}

func (r *CategoryRepository) readCached(ctx context.Context, categoryID string) (domain.Category, bool) {
	fields, err := r.client.HGetAll(ctx, r.categoryKey(categoryID)).Result()
	if err != nil || len(fields) == 0 {
		return domain.Category{}, false
	}
	category, err := buildCategoryFromCache(categoryID, fields)
	if err != nil {
		return domain.Category{}, false
	}
	return category, true
}

func (r *CategoryRepository) queueWrite(ctx context.Context, pipe redis.Pipeliner, category domain.Category, ttl time.Duration) error {
	questions, err := json.Marshal(category.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	key := r.categoryKey(category.ID)
	pipe.HSet(ctx, key,
		"title", category.Title,
		"description", category.Description,
		"timeLimit", category.TimeLimitMinutes,
		"questions", string(questions),
	)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	return nil
}

func buildCategoryFromCache(categoryID string, fields map[string]string) (domain.Category, error) {
	category := domain.Category{
		ID:          categoryID,
		Title:       fields["title"],
		Description: fields["description"],
	}
	if raw, ok := fields["timeLimit"]; ok {
		if minutes, err := strconv.Atoi(raw); err == nil {
			category.TimeLimitMinutes = minutes
		}
	}
	raw, ok := fields["questions"]
	if !ok {
		return domain.Category{}, fmt.Errorf("category %s: questions not cached", categoryID)
	}
	if err := json.Unmarshal([]byte(raw), &category.Questions); err != nil {
		return domain.Category{}, fmt.Errorf("decode questions: %w", err)
	}
	return category, nil
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
