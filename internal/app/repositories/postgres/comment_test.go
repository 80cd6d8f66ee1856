package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

func newComment() *models.Comment {
	return &models.Comment{ID: "c-1", BlogID: "b-1", AuthorID: "u-1", Content: "Nice post", CreatedAt: time.Now()}
}

func TestCommentRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE blogs SET total_comments = total_comments \+ 1 WHERE draft = \$1 AND id = \$2$`).
		WithArgs(false, "b-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^INSERT INTO comments \(id,blog_id,author_id,content,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5\)$`).
		WithArgs("c-1", "b-1", "u-1", "Nice post", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), newComment()))
}

func TestCommentRepository_Create_BlogMissingRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE blogs SET total_comments`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newComment())
	assert.ErrorIs(t, err, apperrors.ErrBlogNotFound)
}

func TestCommentRepository_ListByBlog(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "blog_id", "author_id", "content", "edited", "created_at", "fullname", "username", "profile_img"}).
		AddRow("c-2", "b-1", "u-2", "Second", true, created.Add(time.Hour), "John Roe", "john", "https://img/john").
		AddRow("c-1", "b-1", "u-1", "First", false, created, "Jane Doe", "jane", "https://img/jane")

	mock.ExpectQuery(`^SELECT c.id, .* FROM comments c JOIN users u ON u.id = c.author_id WHERE c.blog_id = \$1 ORDER BY c.created_at DESC LIMIT 10 OFFSET 0$`).
		WithArgs("b-1").
		WillReturnRows(rows)

	comments, err := repo.ListByBlog(context.Background(), "b-1", 0, 10)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "john", comments[0].AuthorUsername)
	assert.True(t, comments[0].Edited)
	assert.Equal(t, "Jane Doe", comments[1].AuthorFullname)
}

func TestCommentRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`^SELECT id, blog_id, author_id, content, edited, created_at FROM comments WHERE id = \$1 LIMIT 1$`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(commentSelectColumns))

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
}

func TestCommentRepository_MalformedIDIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`^SELECT id, blog_id, author_id, content, edited, created_at FROM comments`).
		WithArgs("xyz").
		WillReturnError(invalidUUID())
	_, err := repo.FindByID(context.Background(), "xyz")
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)

	mock.ExpectQuery(`^SELECT c.id, .* FROM comments c`).
		WithArgs("abc").
		WillReturnError(invalidUUID())
	comments, err := repo.ListByBlog(context.Background(), "abc", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, comments)

	mock.ExpectBegin()
	mock.ExpectExec(`^UPDATE blogs SET total_comments`).
		WillReturnError(invalidUUID())
	mock.ExpectRollback()
	c := newComment()
	c.BlogID = "abc"
	assert.ErrorIs(t, repo.Create(context.Background(), c), apperrors.ErrBlogNotFound)
}

func TestCommentRepository_UpdateContent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`^UPDATE comments SET content = \$1, edited = \$2 WHERE id = \$3 RETURNING id, blog_id, author_id, content, edited, created_at$`).
		WithArgs("Fixed typo", true, "c-1").
		WillReturnRows(sqlmock.NewRows(commentSelectColumns).AddRow("c-1", "b-1", "u-1", "Fixed typo", true, created))

	c, err := repo.UpdateContent(context.Background(), "c-1", "Fixed typo")
	require.NoError(t, err)
	assert.Equal(t, "Fixed typo", c.Content)
	assert.True(t, c.Edited)

	mock.ExpectQuery(`^UPDATE comments SET content`).
		WithArgs("Again", true, "c-9").
		WillReturnRows(sqlmock.NewRows(commentSelectColumns))
	_, err = repo.UpdateContent(context.Background(), "c-9", "Again")
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
}

func TestCommentRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`^DELETE FROM comments WHERE id = \$1$`).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^UPDATE blogs SET total_comments = GREATEST\(total_comments - 1, 0\) WHERE id = \$1$`).
		WithArgs("b-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), newComment()))
}
