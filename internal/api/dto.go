package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notelink/internal/followsvc"
	"github.com/starford/notelink/internal/models"
)

// FollowRequest is the request body for following a reference.
type FollowRequest struct {
	Ref  string `json:"ref" example:"projects/todo.md#next" validate:"required"`
	From string `json:"from,omitempty" example:"/home/me/notes/index.md"`
}

// Validate validates the request.
func (r FollowRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Ref, validation.Required),
	)
}

// FollowResponse is the outcome of a follow (aliased from the domain layer).
type FollowResponse = followsvc.Result

// ClassifyResponse names the kind of a reference.
type ClassifyResponse struct {
	Ref  string `json:"ref" example:"@smith2020" validate:"required"`
	Kind string `json:"kind" example:"citation" validate:"required"`
}

// LinksResponse lists the links of one note.
type LinksResponse struct {
	Note  string              `json:"note" example:"index.md" validate:"required"`
	Links []models.LinkReport `json:"links" validate:"required"`
}

// HistoryResponse lists history entries, most recent first.
type HistoryResponse struct {
	Entries []models.HistoryEntry `json:"entries" validate:"required"`
	Active  string                `json:"active,omitempty"`
}

// DocumentResponse names a document.
type DocumentResponse struct {
	Path string `json:"path" example:"/home/me/notes/index.md"`
}
