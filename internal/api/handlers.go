package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"aerogate/internal/access"
	"aerogate/internal/accesslog"
	"aerogate/internal/models"
	"aerogate/internal/registry"
	"aerogate/internal/utils"
)

// GetTimeHandler returns the current server time in RFC3339 format
func GetTimeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"time": time.Now().Format(time.RFC3339)})
}

// ScanStatesHandler returns the label and hint for every scanner screen state.
func ScanStatesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ScanStates)
}

// RegisterHandler enrolls a member from a multipart form with a face capture.
func (s *server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	img, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.registrar.Register(r.Context(), access.RegisterRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Passport: r.FormValue("passport"),
		Expiry:   r.FormValue("expiry"),
		Image:    img,
	})
	if err != nil {
		var verr *access.ValidationError
		if errors.As(err, &verr) {
			err = utils.Wrap(http.StatusBadRequest, verr.Error(), err)
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// VerifyHandler checks an uploaded face capture.
func (s *server) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	img, err := s.readUpload(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(img) == 0 {
		s.fail(w, r, utils.New(http.StatusBadRequest, "file: required"))
		return
	}
	res, err := s.verifier.Verify(r.Context(), img)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = utils.Wrap(http.StatusServiceUnavailable, "verification cancelled", err)
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LogsHandler lists access-log rows, newest first. Optional query parameters:
// status (all, granted, denied), q (search text) and limit.
func (s *server) LogsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// SummaryHandler counts the rows LogsHandler would return.
func (s *server) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accesslog.Counts(entries))
}

func (s *server) entries(r *http.Request) ([]accesslog.Entry, error) {
	q := r.URL.Query()
	status, err := accesslog.ParseStatusFilter(q.Get("status"))
	if err != nil {
		return nil, utils.Wrap(http.StatusBadRequest, err.Error(), err)
	}
	var query registry.AccessQuery
	switch status {
	case accesslog.ShowGranted:
		query.Status = models.StatusGranted
	case accesslog.ShowDenied:
		query.Status = models.StatusDenied
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return nil, utils.New(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		query.Limit = n
	}

	recs, err := s.accessLog.Access(r.Context(), query)
	if err != nil {
		return nil, err
	}
	filter := accesslog.Filter{Status: status, Query: q.Get("q")}
	return filter.Apply(accesslog.FromRecords(recs)), nil
}

// readUpload parses the multipart form and returns the "file" part, or nil if absent.
func (s *server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, utils.Wrap(http.StatusRequestEntityTooLarge, "upload too large", err)
		}
		return nil, utils.Wrap(http.StatusBadRequest, "expected multipart form", err)
	}
	f, _, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.Wrap(http.StatusBadRequest, "unreadable file", err)
	}
	defer f.Close()
	img, err := io.ReadAll(f)
	if err != nil {
		return nil, utils.Wrap(http.StatusBadRequest, "unreadable file", err)
	}
	return img, nil
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := utils.StatusOf(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", w.Header().Get(requestIDHeader)),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeError(w, code, msg)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
