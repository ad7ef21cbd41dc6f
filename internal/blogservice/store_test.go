package blogservice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory blogStore for service tests.
type memStore struct {
	mu     sync.Mutex
	blogs  map[string]Blog
	visits []string
	clock  time.Time
}

func newMemStore() *memStore {
	return &memStore{
		blogs: make(map[string]Blog),
		clock: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) put(b Blog) Blog {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = m.tick()
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	b.UpdatedAt = b.CreatedAt
	b.Version = 1
	m.blogs[b.ID] = b
	return b
}

func (m *memStore) slugTaken(slug, except string) bool {
	for id, b := range m.blogs {
		if b.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (m *memStore) insert(ctx context.Context, blog *Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slugTaken(blog.Slug, "") {
		return ErrDuplicateSlug
	}

	blog.ID = uuid.NewString()
	blog.CreatedAt = m.tick()
	blog.UpdatedAt = blog.CreatedAt
	blog.Version = 1
	blog.IsFeatured = false

	stored := *blog
	stored.Tags = append([]string{}, blog.Tags...)
	m.blogs[blog.ID] = stored
	return nil
}

func (m *memStore) getBlogById(ctx context.Context, id string) (*Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blogs[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	b.Tags = append([]string{}, b.Tags...)
	return &b, nil
}

func (m *memStore) updateBlog(ctx context.Context, blog *Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.blogs[blog.ID]
	if !ok {
		return ErrRecordNotFound
	}
	if cur.Version != blog.Version {
		return ErrEditConflict
	}
	if m.slugTaken(blog.Slug, blog.ID) {
		return ErrDuplicateSlug
	}

	blog.Version++
	blog.UpdatedAt = m.tick()

	stored := *blog
	stored.Tags = append([]string{}, blog.Tags...)
	m.blogs[blog.ID] = stored
	return nil
}

func (m *memStore) toggleFeatured(ctx context.Context, id string) (*Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blogs[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	b.IsFeatured = !b.IsFeatured
	b.Version++
	m.blogs[id] = b
	return &b, nil
}

func (m *memStore) deleteBlog(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blogs[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.blogs, id)
	return nil
}

func (m *memStore) filter(keep func(Blog) bool) []Blog {
	m.mu.Lock()
	defer m.mu.Unlock()

	blogs := []Blog{}
	for _, b := range m.blogs {
		if keep(b) {
			blogs = append(blogs, b)
		}
	}
	sort.Slice(blogs, func(i, j int) bool {
		return blogs[i].CreatedAt.After(blogs[j].CreatedAt)
	})
	return blogs
}

func (m *memStore) getBlogs(ctx context.Context) ([]Blog, error) {
	return m.filter(func(Blog) bool { return true }), nil
}

func (m *memStore) getBlogsByCategory(ctx context.Context, category string) ([]Blog, error) {
	return m.filter(func(b Blog) bool { return b.Category == category }), nil
}

func (m *memStore) getFeaturedBlogs(ctx context.Context) ([]Blog, error) {
	return m.filter(func(b Blog) bool { return b.IsFeatured }), nil
}

func (m *memStore) countByMonth(ctx context.Context, from, to time.Time) ([]MonthlyStat, error) {
	counts := map[int]int{}
	for _, b := range m.filter(func(b Blog) bool { return !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) }) {
		counts[int(b.CreatedAt.UTC().Month())]++
	}

	stats := []MonthlyStat{}
	for month, n := range counts {
		stats = append(stats, MonthlyStat{Month: month, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })
	return stats, nil
}

func (m *memStore) countByCategory(ctx context.Context) ([]CategoryStat, error) {
	counts := map[string]int{}
	for _, b := range m.filter(func(Blog) bool { return true }) {
		counts[b.Category]++
	}

	stats := []CategoryStat{}
	for c, n := range counts {
		stats = append(stats, CategoryStat{Category: c, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	return stats, nil
}

func (m *memStore) count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blogs), nil
}

func (m *memStore) insertVisit(ctx context.Context, page string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits = append(m.visits, page)
	return nil
}

func (m *memStore) countVisitsByPage(ctx context.Context) ([]VisitStat, error) {
	m.mu.Lock()
	counts := map[string]int{}
	for _, p := range m.visits {
		counts[p]++
	}
	m.mu.Unlock()

	stats := []VisitStat{}
	for p, n := range counts {
		stats = append(stats, VisitStat{Page: p, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Page < stats[j].Page
	})
	return stats, nil
}
