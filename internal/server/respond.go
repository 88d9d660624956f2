package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"todo-api/internal/apperr"
	"todo-api/internal/logger"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// errMessages переопределяет текст ответа для конкретного статуса
type errMessages map[int]string

var defaultMessages = map[int]string{
	http.StatusUnprocessableEntity: "validation failed",
	http.StatusUnauthorized:        "unauthorized",
	http.StatusConflict:            "conflict",
	http.StatusNotFound:            "not found",
	http.StatusInternalServerError: "internal server error",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(context.Background(), err, "Ошибка записи ответа")
	}
}

// fail превращает ошибку в JSON-ответ; детали внутренних ошибок клиенту не отдаются
func fail(w http.ResponseWriter, r *http.Request, err error, msgs errMessages) {
	status := apperr.HTTPStatus(err)
	body := errorBody{Message: defaultMessages[status]}
	if m, ok := msgs[status]; ok {
		body.Message = m
	}

	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body.Errors = ve.Fields
	}

	if status == http.StatusInternalServerError {
		logger.Error(r.Context(), err, "Внутренняя ошибка", "method", r.Method, "path", r.URL.Path)
	} else {
		logger.Debug(r.Context(), "Запрос отклонён", "status", status, "reason", err.Error())
	}
	writeJSON(w, status, body)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Invalid("body", fmt.Sprintf("must not exceed %d bytes", maxBodyBytes))
		}
		return nil, apperr.Invalid("body", "could not read request body")
	}
	return body, nil
}

// decode читает тело и прогоняет его через схему
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	return s.validator.Decode(schema, body, dst)
}

// pathID: нечисловой id не может указывать на существующую запись, поэтому ErrNotFound
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q: %w", raw, apperr.ErrNotFound)
	}
	return id, nil
}
