package model

import (
	"time"

	"github.com/google/uuid"

	apperrors "vidtube/backend/pkg/errors"
)

// User is a channel owner or viewer. The engine never mutates users.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullname"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the projection of a user embedded in views
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

// Summary returns the embeddable projection of u
func (u *User) Summary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// Video is an uploaded video. Owner is immutable after creation.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment is a comment on a video
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Video     string    `json:"video"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tweet is a short text post on a channel
type Tweet struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Playlist is an ordered set of video ids owned by a user
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	Videos      []string  `json:"videos"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Contains reports whether videoID is a member of the playlist
func (p *Playlist) Contains(videoID string) bool {
	for _, v := range p.Videos {
		if v == videoID {
			return true
		}
	}
	return false
}

// NewID returns a fresh entity or edge identifier
func NewID() string {
	return uuid.New().String()
}

// ValidateID checks that id is a well-formed identifier
func ValidateID(field, id string) error {
	if id == "" {
		return apperrors.NewInvalidArgument(field, "is required")
	}
	// only the canonical lowercase form is accepted so ids compare byte-wise
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return apperrors.NewInvalidArgument(field, "malformed identifier")
	}
	return nil
}
