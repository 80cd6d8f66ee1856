package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

var (
	commentColumns       = []string{"id", "blog_id", "author_id", "content", "created_at"}
	commentSelectColumns = []string{"id", "blog_id", "author_id", "content", "edited", "created_at"}
)

// CommentRepository handles comment database operations
type CommentRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db, sb: newBuilder()}
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)

// Create inserts comment and bumps the blog's comment counter in one transaction.
// A missing or draft blog yields ErrBlogNotFound.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	bump, bumpArgs, err := r.sb.Update("blogs").
		Set("total_comments", squirrel.Expr("total_comments + 1")).
		Where(squirrel.Eq{"id": comment.BlogID, "draft": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build comment counter query: %w", err)
	}

	insert, insertArgs, err := r.sb.Insert("comments").
		Columns(commentColumns...).
		Values(comment.ID, comment.BlogID, comment.AuthorID, comment.Content, comment.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create comment query: %w", err)
	}

	return withTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, bump, bumpArgs...)
		if err != nil {
			if isMissing(err) {
				return apperrors.ErrBlogNotFound
			}
			return fmt.Errorf("error updating comment counter: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperrors.ErrBlogNotFound
		}

		if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
			return fmt.Errorf("error creating comment: %w", err)
		}
		return nil
	})
}

// FindByID retrieves a comment by ID
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	query, args, err := r.sb.Select(commentSelectColumns...).
		From("comments").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find comment query: %w", err)
	}

	c, err := scanComment(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("error getting comment: %w", err)
	}
	return c, nil
}

// UpdateContent replaces a comment's text and marks it edited.
func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	query, args, err := r.sb.Update("comments").
		Set("content", content).
		Set("edited", true).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(commentSelectColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update comment query: %w", err)
	}

	c, err := scanComment(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("error updating comment: %w", err)
	}
	return c, nil
}

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	if err := row.Scan(&c.ID, &c.BlogID, &c.AuthorID, &c.Content, &c.Edited, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByBlog returns a page of a blog's comments with author fields, newest first.
func (r *CommentRepository) ListByBlog(ctx context.Context, blogID string, offset uint64, limit int) ([]*models.CommentWithAuthor, error) {
	query, args, err := r.sb.Select(
		"c.id", "c.blog_id", "c.author_id", "c.content", "c.edited", "c.created_at",
		"u.fullname", "u.username", "u.profile_img",
	).
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.blog_id": blogID}).
		OrderBy("c.created_at DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isMissing(err) {
			return []*models.CommentWithAuthor{}, nil
		}
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.CommentWithAuthor{}
	for rows.Next() {
		c := &models.CommentWithAuthor{}
		if err := rows.Scan(
			&c.ID, &c.BlogID, &c.AuthorID, &c.Content, &c.Edited, &c.CreatedAt,
			&c.AuthorFullname, &c.AuthorUsername, &c.AuthorProfileImg,
		); err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}
	return comments, nil
}

// Delete removes comment and decrements the blog's comment counter.
func (r *CommentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	del, delArgs, err := r.sb.Delete("comments").
		Where(squirrel.Eq{"id": comment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete comment query: %w", err)
	}

	dec, decArgs, err := r.sb.Update("blogs").
		Set("total_comments", squirrel.Expr("GREATEST(total_comments - 1, 0)")).
		Where(squirrel.Eq{"id": comment.BlogID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build comment counter query: %w", err)
	}

	return withTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, del, delArgs...)
		if err != nil {
			if isMissing(err) {
				return apperrors.ErrCommentNotFound
			}
			return fmt.Errorf("error deleting comment: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperrors.ErrCommentNotFound
		}

		if _, err := tx.ExecContext(ctx, dec, decArgs...); err != nil {
			return fmt.Errorf("error updating comment counter: %w", err)
		}
		return nil
	})
}
