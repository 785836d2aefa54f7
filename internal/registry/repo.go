package registry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var ErrCategoryNotFound = errors.New("category not found")

// Repo is the exercise category/topic registry. Handlers only see this
// interface so the in-memory default can be swapped for the SQL-backed
// implementation without touching them.
type Repo interface {
	Categories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
	Topics(ctx context.Context, f TopicFilter) ([]Topic, error)
	CreateTopic(ctx context.Context, t Topic) (Topic, error)
}

// MemoryRepo is the demo-quality default, seeded with a starter taxonomy.
type MemoryRepo struct {
	mu         sync.RWMutex
	categories []Category
	topics     []Topic
}

func NewMemoryRepo() *MemoryRepo {
	r := &MemoryRepo{}
	r.categories, r.topics = seedData()
	return r
}

func seedData() ([]Category, []Topic) {
	cats := []Category{
		{ID: 1, Name: "Web Development", Description: "Frontend and backend web technologies"},
		{ID: 2, Name: "Data Structures", Description: "Arrays, lists, trees, graphs, etc."},
		{ID: 3, Name: "Algorithms", Description: "Sorting, searching, dynamic programming"},
		{ID: 4, Name: "Object-Oriented Programming", Description: "Classes, inheritance, polymorphism"},
		{ID: 5, Name: "Database Programming", Description: "SQL, NoSQL, database design"},
	}
	topics := []Topic{
		{ID: 1, CategoryID: 1, Name: "HTML/CSS", Languages: []string{"html", "css"}},
		{ID: 2, CategoryID: 1, Name: "JavaScript DOM", Languages: []string{"javascript"}},
		{ID: 3, CategoryID: 1, Name: "React Components", Languages: []string{"javascript", "typescript"}},
		{ID: 4, CategoryID: 2, Name: "Array Operations", Languages: []string{"python", "javascript", "java", "cpp"}},
		{ID: 5, CategoryID: 2, Name: "Linked Lists", Languages: []string{"python", "java", "cpp", "csharp"}},
		{ID: 6, CategoryID: 3, Name: "Sorting Algorithms", Languages: []string{"python", "java", "cpp"}},
		{ID: 7, CategoryID: 4, Name: "Class Design", Languages: []string{"python", "java", "csharp", "cpp"}},
		{ID: 8, CategoryID: 5, Name: "SQL Queries", Languages: []string{"sql"}},
	}
	return cats, topics
}

func (r *MemoryRepo) Categories(ctx context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

func (r *MemoryRepo) CreateCategory(ctx context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = nextID(len(r.categories), func(i int) int { return r.categories[i].ID })
	c.CreatedAt = time.Now().UTC()
	r.categories = append(r.categories, c)
	return c, nil
}

func (r *MemoryRepo) Topics(ctx context.Context, f TopicFilter) ([]Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Topic, 0, len(r.topics))
	for _, t := range r.topics {
		if !matches(t, r.categories, f) {
			continue
		}
		t.Category = findCategory(r.categories, t.CategoryID)
		out = append(out, t)
	}
	return out, nil
}

func (r *MemoryRepo) CreateTopic(ctx context.Context, t Topic) (Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat := findCategory(r.categories, t.CategoryID)
	if cat == nil {
		return Topic{}, ErrCategoryNotFound
	}
	t.ID = nextID(len(r.topics), func(i int) int { return r.topics[i].ID })
	t.CreatedAt = time.Now().UTC()
	r.topics = append(r.topics, t)
	t.Category = cat
	return t, nil
}

func nextID(n int, id func(int) int) int {
	max := 0
	for i := 0; i < n; i++ {
		if v := id(i); v > max {
			max = v
		}
	}
	return max + 1
}

func matches(t Topic, cats []Category, f TopicFilter) bool {
	if f.CategoryID != 0 && t.CategoryID != f.CategoryID {
		return false
	}
	if f.Language != "" {
		found := false
		for _, l := range t.Languages {
			if strings.EqualFold(l, f.Language) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		nameHit := strings.Contains(strings.ToLower(t.Name), q)
		catHit := false
		if c := findCategory(cats, t.CategoryID); c != nil {
			catHit = strings.Contains(strings.ToLower(c.Name), q)
		}
		if !nameHit && !catHit {
			return false
		}
	}
	return true
}

func findCategory(cats []Category, id int) *Category {
	for i := range cats {
		if cats[i].ID == id {
			c := cats[i]
			return &c
		}
	}
	return nil
}

// TopicsByLanguage aggregates topic counts per language, sorted output is
// left to callers.
func TopicsByLanguage(topics []Topic) map[string]int {
	out := map[string]int{}
	for _, t := range topics {
		for _, l := range t.Languages {
			out[l]++
		}
	}
	return out
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// MostUsedLanguages returns the top n languages by topic count.
func MostUsedLanguages(topics []Topic, n int) []LanguageCount {
	counts := TopicsByLanguage(topics)
	out := make([]LanguageCount, 0, len(counts))
	for l, c := range counts {
		out = append(out, LanguageCount{Language: l, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Language < out[j].Language
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
