// Package memstore is an in-memory implementation of the repositories for
// service and HTTP tests. It enforces the same unique fields as the real stores.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

// DB holds all collections behind one lock.
type DB struct {
	mu       sync.RWMutex
	users    map[string]models.User
	blogs    map[string]models.Blog
	comments map[string]models.Comment
	likes    map[string]map[string]bool
	notes    map[string]models.Notification

	// Writes counts successful user inserts.
	Writes int
}

// New creates an empty DB.
func New() *DB {
	return &DB{
		users:    map[string]models.User{},
		blogs:    map[string]models.Blog{},
		comments: map[string]models.Comment{},
		likes:    map[string]map[string]bool{},
		notes:    map[string]models.Notification{},
	}
}

// Store returns a repositories.Store backed by db.
func (db *DB) Store() *repositories.Store {
	return &repositories.Store{
		Users:         &UserRepository{db: db},
		Blogs:         &BlogRepository{db: db},
		Comments:      &CommentRepository{db: db},
		Notifications: &NotificationRepository{db: db},
		Close:         func(context.Context) error { return nil },
	}
}

// User returns a copy of the stored user.
func (db *DB) User(id string) (models.User, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	u, ok := db.users[id]
	return u, ok
}

// Blog returns a copy of the stored blog.
func (db *DB) Blog(id string) (models.Blog, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	b, ok := db.blogs[id]
	return b, ok
}

// UserCount returns the number of stored users.
func (db *DB) UserCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.users)
}

func uniqueValue(u models.User, field models.UniqueField) (string, bool) {
	switch field {
	case models.UniqueEmail:
		return u.Email, true
	case models.UniqueUsername:
		return u.Username, true
	case models.UniquePhone:
		return u.Phone, true
	case models.UniqueKTUID:
		return models.KTUIDOf(u.Details)
	default:
		return "", false
	}
}

var uniqueFields = []models.UniqueField{
	models.UniqueEmail, models.UniqueUsername, models.UniquePhone, models.UniqueKTUID,
}

// conflict reports the first unique field of u already held by another user.
func (db *DB) conflict(u models.User) error {
	for _, field := range uniqueFields {
		value, ok := uniqueValue(u, field)
		if !ok {
			continue
		}
		for id, other := range db.users {
			if id == u.ID {
				continue
			}
			if v, ok := uniqueValue(other, field); ok && v == value {
				return repositories.DuplicateFieldError(field)
			}
		}
	}
	return nil
}

func copyUser(u models.User) *models.User {
	u.SocialLinks = models.SocialLinks{}.Merge(u.SocialLinks)
	return &u
}

// UserRepository is the in-memory repositories.UserRepository.
type UserRepository struct {
	db *DB
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.db.conflict(*user); err != nil {
		return err
	}
	r.db.users[user.ID] = *copyUser(*user)
	r.db.Writes++
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.Username == username })
}

func (r *UserRepository) find(ctx context.Context, match func(models.User) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) ExistsBy(ctx context.Context, field models.UniqueField, value, excludeID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for id, u := range r.db.users {
		if id == excludeID {
			continue
		}
		if v, ok := uniqueValue(u, field); ok && v == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	updated := patch.Apply(current)
	updated.UpdatedAt = time.Now().UTC()
	if err := r.db.conflict(updated); err != nil {
		return nil, err
	}
	r.db.users[id] = *copyUser(updated)
	return copyUser(updated), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, id, url string) error {
	return r.update(ctx, id, func(u *models.User) { u.ProfileImg = url })
}

func (r *UserRepository) update(ctx context.Context, id string, fn func(*models.User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.db.users[id] = u
	return nil
}

// BlogRepository is the in-memory repositories.BlogRepository.
type BlogRepository struct {
	db *DB
}

var _ repositories.BlogRepository = (*BlogRepository)(nil)

func (r *BlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b := *blog
	b.Tags = append([]string(nil), blog.Tags...)
	r.db.blogs[b.ID] = b
	return nil
}

func (r *BlogRepository) FindByID(ctx context.Context, id string) (*models.Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	b, ok := r.db.blogs[id]
	if !ok {
		return nil, apperrors.ErrBlogNotFound
	}
	return &b, nil
}

func (r *BlogRepository) IncrementReads(ctx context.Context, id string) (*models.Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.blogs[id]
	if !ok || b.Draft {
		return nil, apperrors.ErrBlogNotFound
	}
	b.Activity.TotalReads++
	r.db.blogs[id] = b
	return &b, nil
}

func (r *BlogRepository) Trending(ctx context.Context, limit int) ([]*models.Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]*models.Blog, 0, len(r.db.blogs))
	for _, b := range r.db.blogs {
		if b.Draft {
			continue
		}
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Activity.TotalReads != b.Activity.TotalReads {
			return a.Activity.TotalReads > b.Activity.TotalReads
		}
		if a.Activity.TotalLikes != b.Activity.TotalLikes {
			return a.Activity.TotalLikes > b.Activity.TotalLikes
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *BlogRepository) List(ctx context.Context, filter models.BlogFilter, offset uint64, limit int) ([]*models.Blog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matched := r.db.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	out := make([]*models.Blog, 0)
	for i, b := range matched {
		if uint64(i) < offset {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BlogRepository) Count(ctx context.Context, filter models.BlogFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.matching(filter))), nil
}

func (db *DB) matching(f models.BlogFilter) []*models.Blog {
	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	var out []*models.Blog
	for _, b := range db.blogs {
		if b.Draft {
			continue
		}
		if f.Tag != "" && !hasTag(b.Tags, strings.ToLower(f.Tag)) {
			continue
		}
		if f.AuthorID != "" && b.AuthorID != f.AuthorID {
			continue
		}
		if f.Search != "" && !contains(b.Title, f.Search) && !contains(b.Des, f.Search) {
			continue
		}
		if f.Query != "" && !contains(b.Title, f.Query) && !contains(b.Content, f.Query) && !anyTagContains(b.Tags, f.Query) {
			continue
		}
		b := b
		out = append(out, &b)
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func anyTagContains(tags []string, sub string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func (r *BlogRepository) ToggleLike(ctx context.Context, blogID, userID string) (*models.LikeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.blogs[blogID]
	if !ok || b.Draft {
		return nil, apperrors.ErrBlogNotFound
	}
	likers := r.db.likes[blogID]
	if likers == nil {
		likers = map[string]bool{}
		r.db.likes[blogID] = likers
	}
	liked := !likers[userID]
	if liked {
		likers[userID] = true
		b.Activity.TotalLikes++
	} else {
		delete(likers, userID)
		if b.Activity.TotalLikes > 0 {
			b.Activity.TotalLikes--
		}
	}
	r.db.blogs[blogID] = b
	return &models.LikeResult{TotalLikes: b.Activity.TotalLikes, Liked: liked}, nil
}

// CommentRepository is the in-memory repositories.CommentRepository.
type CommentRepository struct {
	db *DB
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.blogs[comment.BlogID]
	if !ok || b.Draft {
		return apperrors.ErrBlogNotFound
	}
	b.Activity.TotalComments++
	r.db.blogs[b.ID] = b
	r.db.comments[comment.ID] = *comment
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, apperrors.ErrCommentNotFound
	}
	return &c, nil
}

func (r *CommentRepository) ListByBlog(ctx context.Context, blogID string, offset uint64, limit int) ([]*models.CommentWithAuthor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var matched []models.Comment
	for _, c := range r.db.comments {
		if c.BlogID == blogID {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	out := make([]*models.CommentWithAuthor, 0)
	for i, c := range matched {
		if uint64(i) < offset {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		author, ok := r.db.users[c.AuthorID]
		if !ok {
			continue
		}
		out = append(out, &models.CommentWithAuthor{
			Comment:          c,
			AuthorFullname:   author.Fullname,
			AuthorUsername:   author.Username,
			AuthorProfileImg: author.ProfileImg,
		})
	}
	return out, nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, apperrors.ErrCommentNotFound
	}
	c.Content = content
	c.Edited = true
	r.db.comments[id] = c
	return &c, nil
}

func (r *CommentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.comments[comment.ID]; !ok {
		return apperrors.ErrCommentNotFound
	}
	delete(r.db.comments, comment.ID)
	if b, ok := r.db.blogs[comment.BlogID]; ok && b.Activity.TotalComments > 0 {
		b.Activity.TotalComments--
		r.db.blogs[b.ID] = b
	}
	return nil
}

// NotificationRepository is the in-memory repositories.NotificationRepository.
type NotificationRepository struct {
	db *DB
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.notes[n.ID] = *n
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, offset uint64, limit int) ([]*models.NotificationWithSender, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var matched []models.Notification
	for _, n := range r.db.notes {
		if n.RecipientID == recipientID {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	out := make([]*models.NotificationWithSender, 0)
	for i, n := range matched {
		if uint64(i) < offset {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		sender, ok := r.db.users[n.SenderID]
		if !ok {
			continue
		}
		out = append(out, &models.NotificationWithSender{
			Notification:     n,
			SenderFullname:   sender.Fullname,
			SenderUsername:   sender.Username,
			SenderProfileImg: sender.ProfileImg,
			BlogTitle:        r.db.blogs[n.BlogID].Title,
		})
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, note := range r.db.notes {
		if note.RecipientID == recipientID && !note.Read {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID string, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		if n, ok := r.db.notes[id]; ok && n.RecipientID == recipientID {
			n.Read = true
			r.db.notes[id] = n
		}
	}
	return nil
}
