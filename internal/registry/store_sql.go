package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLRepo persists the registry in sqlite or postgres (see internal/db).
type SQLRepo struct {
	db *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo {
	return &SQLRepo{db: db}
}

// SeedIfEmpty loads the starter taxonomy when the categories table has no
// rows, so a fresh SQL deployment behaves like the in-memory default.
func (r *SQLRepo) SeedIfEmpty(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	cats, topics := seedData()
	for _, c := range cats {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO categories (id,name,description,created_at) VALUES ($1,$2,$3,$4)`,
			c.ID, c.Name, c.Description, time.Now().Unix()); err != nil {
			return err
		}
	}
	for _, t := range topics {
		lj, _ := json.Marshal(t.Languages)
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO topics (id,category_id,name,languages_json,created_at) VALUES ($1,$2,$3,$4,$5)`,
			t.ID, t.CategoryID, t.Name, string(lj), time.Now().Unix()); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepo) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id,name,description,created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		var created int64
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLRepo) CreateCategory(ctx context.Context, c Category) (Category, error) {
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name,description,created_at) VALUES ($1,$2,$3) RETURNING id`,
		c.Name, c.Description, now.Unix()).Scan(&c.ID)
	if err != nil {
		return Category{}, err
	}
	c.CreatedAt = now
	return c, nil
}

func (r *SQLRepo) Topics(ctx context.Context, f TopicFilter) ([]Topic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.category_id, t.name, t.languages_json, t.created_at,
		       c.id, c.name, c.description
		FROM topics t JOIN categories c ON c.id = t.category_id
		ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []Category{}
	var all []Topic
	for rows.Next() {
		var t Topic
		var cat Category
		var lj string
		var created int64
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.Name, &lj, &created,
			&cat.ID, &cat.Name, &cat.Description); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(lj), &t.Languages); err != nil {
			return nil, err
		}
		t.CreatedAt = time.Unix(created, 0).UTC()
		t.Category = &cat
		cats = append(cats, cat)
		all = append(all, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Filtering is shared with the in-memory implementation.
	out := make([]Topic, 0, len(all))
	for _, t := range all {
		if matches(t, cats, f) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *SQLRepo) CreateTopic(ctx context.Context, t Topic) (Topic, error) {
	var cat Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id,name,description FROM categories WHERE id=$1`, t.CategoryID).
		Scan(&cat.ID, &cat.Name, &cat.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Topic{}, ErrCategoryNotFound
	}
	if err != nil {
		return Topic{}, err
	}

	lj, err := json.Marshal(t.Languages)
	if err != nil {
		return Topic{}, err
	}
	now := time.Now().UTC()
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO topics (category_id,name,languages_json,created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		t.CategoryID, t.Name, string(lj), now.Unix()).Scan(&t.ID)
	if err != nil {
		return Topic{}, err
	}
	t.CreatedAt = now
	t.Category = &cat
	return t, nil
}
