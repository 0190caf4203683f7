package models

import "time"

// Post represents one shared entry in a circle.
type Post struct {
	// ID is the server-assigned post identifier.
	ID int64 `json:"post_id"`

	// CircleID is the circle the post was shared into.
	CircleID int64 `json:"circle_id"`

	// AuthorID and AuthorName identify the poster. AuthorName is denormalized
	// by the backend so the client never joins against a user list.
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name"`

	// Content is the post body, at most MaxPostContentLen characters.
	Content string `json:"content"`

	// PhotoURL is the location of the attached photo, empty when none.
	PhotoURL string `json:"photo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// LikeCount is the total number of likes on the post.
	LikeCount int `json:"like_count"`

	// ViewerLiked reports whether the authenticated viewer has liked the post.
	ViewerLiked bool `json:"user_liked"`
}

// LikeResult is the backend's answer to a like toggle. The caller adjusts the
// displayed count by one in the indicated direction instead of refetching.
type LikeResult struct {
	Liked bool `json:"liked"`
}
