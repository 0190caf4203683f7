package ui

import "github.com/circleshare/circleshare/internal/models"

// Intent messages are emitted by pages when the user commits an action; App
// translates each into the matching controller or client call.

type loginIntent struct {
	email    string
	password string
}

type registerIntent struct {
	name     string
	email    string
	password string
}

type createPostIntent struct{ content string }

type deletePostIntent struct{ postID int64 }

type toggleLikeIntent struct{ postID int64 }

type openCommentsIntent struct{ postID int64 }

type createCommentIntent struct{ content string }

type deleteCommentIntent struct{ commentID int64 }

type inviteIntent struct{ email string }

type respondInvitationIntent struct {
	invitationID int64
	action       string
}

type removeMemberIntent struct{ memberID int64 }

// Result messages are delivered when a command finishes. Pages re-read
// controller state when they receive one.

type sessionCheckedMsg struct{ authed bool }

type loginDoneMsg struct{ err error }

type registerDoneMsg struct{ err error }

type feedLoadedMsg struct{}

type postCreatedMsg struct{ err error }

type postDeletedMsg struct{ err error }

type likeToggledMsg struct {
	postID int64
	result models.LikeResult
	err    error
}

type commentsLoadedMsg struct{}

type commentMutatedMsg struct{ err error }

type rosterLoadedMsg struct{ err error }

type inviteDoneMsg struct{ err error }

type invitationRespondedMsg struct{ err error }

type memberRemovedMsg struct{ err error }
