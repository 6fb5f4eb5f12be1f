package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classware/classman-backend/internal/model"
)

// PostRepository handles announcement post data access.
type PostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, title, content, author_id, status, created_at, updated_at`

// GetByID retrieves a post by its ID.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	p := &model.Post{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPublished retrieves published posts, newest first.
func (r *PostRepository) ListPublished(ctx context.Context) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE status = 'published' ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListVisibleTo retrieves published posts plus the caller's own drafts.
func (r *PostRepository) ListVisibleTo(ctx context.Context, authorID int64) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE status = 'published' OR author_id = $1
		 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Post, error) {
	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Create inserts a new draft post.
func (r *PostRepository) Create(ctx context.Context, p *model.Post) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO posts (title, content, author_id, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		p.Title, p.Content, p.AuthorID, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update modifies an existing post's title and content.
func (r *PostRepository) Update(ctx context.Context, p *model.Post) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE posts SET title = $1, content = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`,
		p.Title, p.Content, p.ID,
	)
	return err
}

// SetStatus publishes or unpublishes a post.
func (r *PostRepository) SetStatus(ctx context.Context, id int64, status model.PostStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE posts SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, status, id)
	return err
}

// Delete removes a post by its ID.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}
