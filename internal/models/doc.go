// Package models defines the wire-level entities exchanged with the
// CircleShare backend.
//
// # Entities
//
//   - Post: an entry shared into the author's circle
//   - Comment: a reply attached to a post
//   - CircleMember: a user belonging to the viewer's circle
//   - Invitation: a pending request to join someone's circle
//   - User: a registered account (server side only)
//   - TokenPair: the bearer credential returned by login
//
// # Design Principles
//
//  1. The backend is authoritative: the client never invents identifiers,
//     timestamps, or counts. Everything here is created from server responses.
//  2. Field tags mirror the backend's JSON exactly (snake_case, `post_id`
//     rather than `id` on posts). Do not rename tags without a contract change.
//  3. Avoid circular references: relationships are ID fields, not pointers.
//  4. Client-side validation lives next to the shapes it protects (see
//     validate.go) so the API client and the UI apply identical rules.
package models
