package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"timed-quiz/internal/domain"
)

// CategoryLoader fetches question sets from a backing store (file, Postgres, ...).
type CategoryLoader interface {
	LoadCategory(ctx context.Context, categoryID string) (domain.Category, error)
	LoadCategories(ctx context.Context) ([]domain.Category, error)
}

const listKey = "\x00list"

// CategoryRepository caches categories with TTL to avoid repeated loader hits.
type CategoryRepository struct {
	loader CategoryLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCategory
	list  *cachedList
}

type cachedCategory struct {
	category  domain.Category
	expiresAt time.Time
}

type cachedList struct {
	categories []domain.Category
	expiresAt  time.Time
}

func NewCategoryRepository(loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCategory),
	}
}

func (r *CategoryRepository) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	if category, ok := r.lookup(categoryID); ok {
		return category, nil
	}

	result, err, _ := r.sf.Do(categoryID, func() (interface{}, error) {
		if category, ok := r.lookup(categoryID); ok {
			return category, nil
		}

		category, err := r.loader.LoadCategory(ctx, categoryID)
		if err != nil {
			return domain.Category{}, err
		}
		r.store(category)
		return category, nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return result.(domain.Category), nil
}

func (r *CategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	now := r.clock()
	r.mu.RLock()
	if r.list != nil && r.list.expiresAt.After(now) {
		categories := r.list.categories
		r.mu.RUnlock()
		return categories, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(listKey, func() (interface{}, error) {
		categories, err := r.loader.LoadCategories(ctx)
		if err != nil {
			return nil, err
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

		expires := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.list = &cachedList{categories: categories, expiresAt: expires}
		for _, c := range categories {
			r.cache[c.ID] = cachedCategory{category: c, expiresAt: expires}
		}
		r.mu.Unlock()
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

func (r *CategoryRepository) lookup(categoryID string) (domain.Category, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[categoryID]; ok && entry.expiresAt.After(now) {
		return entry.category, true
	}
	return domain.Category{}, false
}

func (r *CategoryRepository) store(category domain.Category) {
	expires := r.clock().Add(r.ttlWithJitter())
	r.mu.Lock()
	r.cache[category.ID] = cachedCategory{category: category, expiresAt: expires}
	r.mu.Unlock()
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCategoryLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticCategoryLoader struct {
	categories map[string]domain.Category
}

func NewStaticCategoryLoader(categories map[string]domain.Category) *StaticCategoryLoader {
	return &StaticCategoryLoader{categories: categories}
}

func (l *StaticCategoryLoader) LoadCategory(_ context.Context, categoryID string) (domain.Category, error) {
	if category, ok := l.categories[categoryID]; ok {
		return category, nil
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}

func (l *StaticCategoryLoader) LoadCategories(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(l.categories))
	for _, c := range l.categories {
		out = append(out, c)
	}
	return out, nil
}
