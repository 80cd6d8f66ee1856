package models

import "time"

// BlogActivity holds the engagement counters of a blog.
type BlogActivity struct {
	TotalLikes    int64
	TotalComments int64
	TotalReads    int64
}

// Blog defines a published or draft post.
type Blog struct {
	ID        string
	Title     string
	Des       string
	Banner    string
	Content   string
	Tags      []string
	AuthorID  string
	Draft     bool
	Activity  BlogActivity
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment is a reader comment on a blog.
type Comment struct {
	ID        string
	BlogID    string
	AuthorID  string
	Content   string
	Edited    bool
	CreatedAt time.Time
}

// CommentWithAuthor is a comment joined with its author's public fields.
type CommentWithAuthor struct {
	Comment
	AuthorFullname   string
	AuthorUsername   string
	AuthorProfileImg string
}

// BlogFilter narrows a blog listing. Zero fields match everything; drafts are
// never listed.
type BlogFilter struct {
	Tag      string
	AuthorID string
	// Search matches title or description, case-insensitively.
	Search string
	// Query matches title, content or any tag, case-insensitively.
	Query string
}

// LikeResult is the state of a blog's likes after a toggle.
type LikeResult struct {
	TotalLikes int64
	Liked      bool
}
