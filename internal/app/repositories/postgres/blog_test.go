package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

func blogRow(rows *sqlmock.Rows, id string, reads int64) *sqlmock.Rows {
	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "Campus fest", "A recap of the fest", "", "content", []byte(`["fest","campus"]`),
		"u-1", false, int64(2), int64(1), reads, created, created)
}

func TestBlogRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	mock.ExpectExec(`^INSERT INTO blogs \(id,title,des,banner,content,tags,author_id,draft,total_likes,total_comments,total_reads,created_at,updated_at\)`).
		WithArgs("b-1", "Campus fest", "A recap of the fest", "", "content", `["fest"]`, "u-1", false,
			int64(0), int64(0), int64(0), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Blog{
		ID: "b-1", Title: "Campus fest", Des: "A recap of the fest", Content: "content",
		Tags: []string{"fest"}, AuthorID: "u-1", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestBlogRepository_IncrementReads(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	mock.ExpectQuery(`^UPDATE blogs SET total_reads = total_reads \+ 1 WHERE draft = \$1 AND id = \$2 RETURNING`).
		WithArgs(false, "b-1").
		WillReturnRows(blogRow(sqlmock.NewRows(blogColumns), "b-1", 8))

	b, err := repo.IncrementReads(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), b.Activity.TotalReads)
	assert.Equal(t, []string{"fest", "campus"}, b.Tags)
}

func TestBlogRepository_IncrementReads_DraftOrMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	mock.ExpectQuery(`^UPDATE blogs SET total_reads`).
		WithArgs(false, "draft-1").
		WillReturnRows(sqlmock.NewRows(blogColumns))

	_, err := repo.IncrementReads(context.Background(), "draft-1")
	assert.ErrorIs(t, err, apperrors.ErrBlogNotFound)
}

func invalidUUID() error {
	return &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
}

func TestBlogRepository_MalformedIDIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	mock.ExpectQuery(`^UPDATE blogs SET total_reads`).
		WithArgs(false, "abc").
		WillReturnError(invalidUUID())
	_, err := repo.IncrementReads(context.Background(), "abc")
	assert.ErrorIs(t, err, apperrors.ErrBlogNotFound)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	mock.ExpectQuery(`^SELECT .* FROM blogs WHERE id = \$1 LIMIT 1$`).
		WithArgs("abc").
		WillReturnError(invalidUUID())
	_, err = repo.FindByID(context.Background(), "abc")
	assert.ErrorIs(t, err, apperrors.ErrBlogNotFound)
}

func TestBlogRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	rows := sqlmock.NewRows(blogColumns)
	blogRow(rows, "b-2", 1)
	mock.ExpectQuery(`^SELECT .* FROM blogs WHERE \(draft = \$1 AND tags @> \$2::jsonb AND author_id = \$3 AND \(title ILIKE \$4 OR des ILIKE \$5\)\) ORDER BY created_at DESC LIMIT 10 OFFSET 20$`).
		WithArgs(false, `["fest"]`, "u-1", `%50\%%`, `%50\%%`).
		WillReturnRows(rows)

	blogs, err := repo.List(context.Background(), models.BlogFilter{Tag: "Fest", AuthorID: "u-1", Search: "50%"}, 20, 10)
	require.NoError(t, err)
	require.Len(t, blogs, 1)
	assert.Equal(t, "b-2", blogs[0].ID)
}

func TestBlogRepository_List_Query(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	mock.ExpectQuery(`^SELECT .* FROM blogs WHERE \(draft = \$1 AND \(title ILIKE \$2 OR content ILIKE \$3 OR EXISTS \(SELECT 1 FROM jsonb_array_elements_text\(tags\) AS t\(tag\) WHERE t.tag ILIKE \$4\)\)\)`).
		WithArgs(false, "%fest%", "%fest%", "%fest%").
		WillReturnRows(sqlmock.NewRows(blogColumns))

	blogs, err := repo.List(context.Background(), models.BlogFilter{Query: "fest"}, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, blogs)
}

func TestBlogRepository_Count(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM blogs WHERE \(draft = \$1\)$`).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	total, err := repo.Count(context.Background(), models.BlogFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM blogs`).
		WithArgs(false, "not-a-uuid").
		WillReturnError(invalidUUID())
	total, err = repo.Count(context.Background(), models.BlogFilter{AuthorID: "not-a-uuid"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBlogRepository_ToggleLike(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	// First toggle likes.
	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT total_likes FROM blogs WHERE draft = \$1 AND id = \$2 FOR UPDATE$`).
		WithArgs(false, "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"total_likes"}).AddRow(int64(2)))
	mock.ExpectExec(`^DELETE FROM blog_likes WHERE blog_id = \$1 AND user_id = \$2$`).
		WithArgs("b-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^INSERT INTO blog_likes \(blog_id,user_id\) VALUES \(\$1,\$2\)$`).
		WithArgs("b-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`^UPDATE blogs SET total_likes = GREATEST\(total_likes \+ \$1, 0\) WHERE id = \$2 RETURNING total_likes$`).
		WithArgs(int64(1), "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"total_likes"}).AddRow(int64(3)))
	mock.ExpectCommit()

	res, err := repo.ToggleLike(context.Background(), "b-1", "u-2")
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{TotalLikes: 3, Liked: true}, res)

	// Second toggle removes the like.
	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT total_likes FROM blogs`).
		WithArgs(false, "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"total_likes"}).AddRow(int64(3)))
	mock.ExpectExec(`^DELETE FROM blog_likes`).
		WithArgs("b-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`^UPDATE blogs SET total_likes`).
		WithArgs(int64(-1), "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"total_likes"}).AddRow(int64(2)))
	mock.ExpectCommit()

	res, err = repo.ToggleLike(context.Background(), "b-1", "u-2")
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{TotalLikes: 2, Liked: false}, res)
}

func TestBlogRepository_ToggleLike_MissingBlogRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT total_likes FROM blogs`).
		WithArgs(false, "abc").
		WillReturnError(invalidUUID())
	mock.ExpectRollback()

	_, err := repo.ToggleLike(context.Background(), "abc", "u-2")
	assert.ErrorIs(t, err, apperrors.ErrBlogNotFound)
}

func TestBlogRepository_Trending(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	rows := sqlmock.NewRows(blogColumns)
	blogRow(rows, "b-2", 40)
	blogRow(rows, "b-1", 10)
	mock.ExpectQuery(`^SELECT .* FROM blogs WHERE draft = \$1 ORDER BY total_reads DESC, total_likes DESC, created_at DESC LIMIT 5$`).
		WithArgs(false).
		WillReturnRows(rows)

	blogs, err := repo.Trending(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, blogs, 2)
	assert.Equal(t, "b-2", blogs[0].ID)
}

func TestBlogRepository_Trending_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBlogRepository(db)

	mock.ExpectQuery(`^SELECT .* FROM blogs`).WillReturnError(errors.New("db down"))

	_, err := repo.Trending(context.Background(), 5)
	assert.ErrorContains(t, err, "db down")
}
