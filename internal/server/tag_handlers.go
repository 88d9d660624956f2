package server

import (
	"net/http"

	"todo-api/internal/models"
	"todo-api/internal/validation"
)

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTagRequest
	if err := s.decode(w, r, validation.CreateTag, &req); err != nil {
		fail(w, r, err, nil)
		return
	}

	tag, err := s.tags.Create(r.Context(), req.Name)
	if err != nil {
		fail(w, r, err, errMessages{http.StatusConflict: "tag with this name already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	msgs := errMessages{http.StatusNotFound: "tag not found"}

	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, msgs)
		return
	}
	tag, err := s.tags.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, msgs)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	msgs := errMessages{
		http.StatusNotFound: "tag not found",
		http.StatusConflict: "tag is used by existing tasks",
	}

	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, msgs)
		return
	}
	if err := s.tags.Delete(r.Context(), id); err != nil {
		fail(w, r, err, msgs)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
