package server

import (
	"net/http"

	"todo-api/internal/models"
	"todo-api/internal/validation"
)

var taskMessages = errMessages{http.StatusNotFound: "task not found"}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := s.decode(w, r, validation.CreateTask, &req); err != nil {
		fail(w, r, err, nil)
		return
	}

	task, err := s.tasks.Create(r.Context(), currentUser(r), req)
	if err != nil {
		fail(w, r, err, errMessages{http.StatusNotFound: "tag not found"})
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ListForUser(r.Context(), currentUser(r))
	if err != nil {
		fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, taskMessages)
		return
	}

	task, err := s.tasks.Get(r.Context(), currentUser(r), id)
	if err != nil {
		fail(w, r, err, taskMessages)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, taskMessages)
		return
	}

	var req models.UpdateTaskRequest
	if err := s.decode(w, r, validation.UpdateTask, &req); err != nil {
		fail(w, r, err, nil)
		return
	}

	task, err := s.tasks.Update(r.Context(), currentUser(r), id, req)
	if err != nil {
		fail(w, r, err, errMessages{http.StatusNotFound: "task or tag not found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err, taskMessages)
		return
	}

	if err := s.tasks.Delete(r.Context(), currentUser(r), id); err != nil {
		fail(w, r, err, taskMessages)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
