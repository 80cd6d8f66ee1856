package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/dberrors"
)

var blogColumns = []string{
	"id", "title", "des", "banner", "content", "tags", "author_id", "draft",
	"total_likes", "total_comments", "total_reads", "created_at", "updated_at",
}

// BlogRepository handles blog database operations
type BlogRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewBlogRepository creates a new BlogRepository
func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db, sb: newBuilder()}
}

var _ repositories.BlogRepository = (*BlogRepository)(nil)

// Create inserts blog.
func (r *BlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	tags := blog.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query, args, err := r.sb.Insert("blogs").
		Columns(blogColumns...).
		Values(
			blog.ID, blog.Title, blog.Des, blog.Banner, blog.Content, string(encoded),
			blog.AuthorID, blog.Draft,
			blog.Activity.TotalLikes, blog.Activity.TotalComments, blog.Activity.TotalReads,
			blog.CreatedAt, blog.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create blog query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error creating blog: %w", err)
	}
	return nil
}

// FindByID retrieves a blog by ID, drafts included.
func (r *BlogRepository) FindByID(ctx context.Context, id string) (*models.Blog, error) {
	query, args, err := r.sb.Select(blogColumns...).
		From("blogs").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find blog query: %w", err)
	}

	blog, err := scanBlog(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.ErrBlogNotFound
		}
		return nil, fmt.Errorf("error getting blog: %w", err)
	}
	return blog, nil
}

// IncrementReads bumps total_reads of a published blog and returns the new row.
func (r *BlogRepository) IncrementReads(ctx context.Context, id string) (*models.Blog, error) {
	query, args, err := r.sb.Update("blogs").
		Set("total_reads", squirrel.Expr("total_reads + 1")).
		Where(squirrel.Eq{"id": id, "draft": false}).
		Suffix("RETURNING " + strings.Join(blogColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build increment reads query: %w", err)
	}

	blog, err := scanBlog(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.ErrBlogNotFound
		}
		return nil, fmt.Errorf("error incrementing reads: %w", err)
	}
	return blog, nil
}

// Trending returns the most read published blogs.
func (r *BlogRepository) Trending(ctx context.Context, limit int) ([]*models.Blog, error) {
	query, args, err := r.sb.Select(blogColumns...).
		From("blogs").
		Where(squirrel.Eq{"draft": false}).
		OrderBy("total_reads DESC", "total_likes DESC", "created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trending query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying trending blogs: %w", err)
	}
	return collectBlogs(rows)
}

// List returns published blogs matching filter, newest first. A malformed
// author id matches nothing.
func (r *BlogRepository) List(ctx context.Context, filter models.BlogFilter, offset uint64, limit int) ([]*models.Blog, error) {
	where, err := blogPredicate(filter)
	if err != nil {
		return nil, err
	}
	query, args, err := r.sb.Select(blogColumns...).
		From("blogs").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list blogs query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsInvalidInput(err) {
			return []*models.Blog{}, nil
		}
		return nil, fmt.Errorf("error listing blogs: %w", err)
	}
	return collectBlogs(rows)
}

// Count returns the number of published blogs matching filter.
func (r *BlogRepository) Count(ctx context.Context, filter models.BlogFilter) (int64, error) {
	where, err := blogPredicate(filter)
	if err != nil {
		return 0, err
	}
	query, args, err := r.sb.Select("COUNT(*)").From("blogs").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count blogs query: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		if dberrors.IsInvalidInput(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("error counting blogs: %w", err)
	}
	return total, nil
}

func blogPredicate(f models.BlogFilter) (squirrel.Sqlizer, error) {
	where := squirrel.And{squirrel.Eq{"draft": false}}
	if f.Tag != "" {
		tag, err := json.Marshal([]string{strings.ToLower(f.Tag)})
		if err != nil {
			return nil, fmt.Errorf("failed to encode tag: %w", err)
		}
		where = append(where, squirrel.Expr("tags @> ?::jsonb", string(tag)))
	}
	if f.AuthorID != "" {
		where = append(where, squirrel.Eq{"author_id": f.AuthorID})
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"des": pattern},
		})
	}
	if f.Query != "" {
		pattern := containsPattern(f.Query)
		where = append(where, squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"content": pattern},
			squirrel.Expr("EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag ILIKE ?)", pattern),
		})
	}
	return where, nil
}

// ToggleLike adds userID's like to a published blog, or removes it when
// present, keeping total_likes in step.
func (r *BlogRepository) ToggleLike(ctx context.Context, blogID, userID string) (*models.LikeResult, error) {
	lock, lockArgs, err := r.sb.Select("total_likes").
		From("blogs").
		Where(squirrel.Eq{"id": blogID, "draft": false}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build like lock query: %w", err)
	}
	unlike, unlikeArgs, err := r.sb.Delete("blog_likes").
		Where(squirrel.Eq{"blog_id": blogID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build unlike query: %w", err)
	}

	result := &models.LikeResult{}
	err = withTx(ctx, r.db, func(tx DBTX) error {
		var current int64
		if err := tx.QueryRowContext(ctx, lock, lockArgs...).Scan(&current); err != nil {
			if isMissing(err) {
				return apperrors.ErrBlogNotFound
			}
			return fmt.Errorf("error locking blog: %w", err)
		}

		res, err := tx.ExecContext(ctx, unlike, unlikeArgs...)
		if err != nil {
			return fmt.Errorf("error removing like: %w", err)
		}
		delta := int64(-1)
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			like, likeArgs, err := r.sb.Insert("blog_likes").
				Columns("blog_id", "user_id").
				Values(blogID, userID).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build like query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, like, likeArgs...); err != nil {
				return fmt.Errorf("error adding like: %w", err)
			}
			delta = 1
			result.Liked = true
		}

		update, updateArgs, err := r.sb.Update("blogs").
			Set("total_likes", squirrel.Expr("GREATEST(total_likes + ?, 0)", delta)).
			Where(squirrel.Eq{"id": blogID}).
			Suffix("RETURNING total_likes").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build like counter query: %w", err)
		}
		if err := tx.QueryRowContext(ctx, update, updateArgs...).Scan(&result.TotalLikes); err != nil {
			return fmt.Errorf("error updating like counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func collectBlogs(rows *sql.Rows) ([]*models.Blog, error) {
	defer rows.Close()

	blogs := []*models.Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning blog row: %w", err)
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blog rows: %w", err)
	}
	return blogs, nil
}

func scanBlog(row rowScanner) (*models.Blog, error) {
	var (
		b    models.Blog
		tags []byte
	)
	err := row.Scan(
		&b.ID, &b.Title, &b.Des, &b.Banner, &b.Content, &tags, &b.AuthorID, &b.Draft,
		&b.Activity.TotalLikes, &b.Activity.TotalComments, &b.Activity.TotalReads,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &b.Tags); err != nil {
			return nil, fmt.Errorf("corrupt tags for blog %s: %w", b.ID, err)
		}
	}
	return &b, nil
}
