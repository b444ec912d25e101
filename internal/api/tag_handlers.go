package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"todonest/internal/model"
)

// TagResponse wraps a single tag
type TagResponse struct {
	Success bool       `json:"success"`
	Tag     *model.Tag `json:"tag"`
}

// TagListResponse wraps the user's tags
type TagListResponse struct {
	Success bool        `json:"success"`
	Tags    []model.Tag `json:"tags"`
}

// CreateTagRequest represents the create payload
type CreateTagRequest struct {
	Name string `json:"name"`
}

// UpdateTagRequest represents the partial update payload
type UpdateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// HandleListTags returns all of the user's tags sorted by name
func (s *Server) HandleListTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	tags, err := s.db.ListTags(r.Context(), userID)
	if err != nil {
		s.respondStoreError(w, r, err, "list tags")
		return
	}

	respondJSON(w, http.StatusOK, TagListResponse{Success: true, Tags: tags})
}

// HandleCreateTag creates a tag, or returns the existing one with the same
// name. Repeating a create is not an error.
func (s *Server) HandleCreateTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req CreateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := s.db.GetOrCreateTag(r.Context(), userID, req.Name)
	if err != nil {
		s.respondStoreError(w, r, err, "create tag")
		return
	}

	respondJSON(w, http.StatusCreated, TagResponse{Success: true, Tag: tag})
}

// HandleUpdateTag renames or recolors a tag
func (s *Server) HandleUpdateTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req UpdateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := s.db.UpdateTag(r.Context(), userID, chi.URLParam(r, "id"), req.Name, req.Color)
	if err != nil {
		s.respondStoreError(w, r, err, "update tag")
		return
	}

	respondJSON(w, http.StatusOK, TagResponse{Success: true, Tag: tag})
}

// HandleDeleteTag deletes a tag and detaches it from every todo
func (s *Server) HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	if err := s.db.DeleteTag(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		s.respondStoreError(w, r, err, "delete tag")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
