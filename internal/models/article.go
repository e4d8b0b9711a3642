package models

import (
	"encoding/json"
	"time"
)

type ArticleStatus string

const (
	StatusDraft        ArticleStatus = "draft"
	StatusOnModeration ArticleStatus = "on_moderation"
	StatusPublished    ArticleStatus = "published"
	StatusRejected     ArticleStatus = "rejected"
)

// Editable reports whether the author may still edit, submit or delete.
func (s ArticleStatus) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// Comment is an optional moderator comment. The zero value is absent.
type Comment struct {
	text string
	set  bool
}

func SomeComment(text string) Comment { return Comment{text: text, set: true} }

func NoComment() Comment { return Comment{} }

func (c Comment) Get() (string, bool) { return c.text, c.set }

func (c Comment) Present() bool { return c.set }

func (c Comment) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return json.Marshal(c.text)
}

// Ptr converts to the nullable column representation.
func (c Comment) Ptr() *string {
	if !c.set {
		return nil
	}
	s := c.text
	return &s
}

func CommentFromPtr(p *string) Comment {
	if p == nil {
		return NoComment()
	}
	return SomeComment(*p)
}

type Article struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Content           string        `json:"content"`
	AuthorID          string        `json:"author_id"`
	AuthorName        string        `json:"author_name"`
	Status            ArticleStatus `json:"status"`
	ModeratorComments Comment       `json:"moderator_comments"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// ArticlePatch carries the optional fields of an edit.
type ArticlePatch struct {
	Title   *string
	Content *string
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)
