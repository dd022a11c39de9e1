package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"server/internal/imagegen"
	"server/internal/providers/genai"
)

const defaultStreamCount = 3

// streamRecord is one newline-delimited JSON line of the streaming response.
// Exactly one of ImageBase64 or Error is set.
type streamRecord struct {
	Index       int    `json:"index"`
	ImageBase64 string `json:"image_base64,omitempty"`
	Error       string `json:"error,omitempty"`
}

// HairstylesStream handles the streaming operation: up to count generation
// attempts against the same validated upload, one JSON line per attempt,
// flushed as each attempt completes. Validation failures are answered with a
// plain 400 before the first body byte; once streaming has begun, failures are
// embedded in the final record instead.
func (a *App) HairstylesStream(w http.ResponseWriter, r *http.Request) {
	req, ok := a.parseEditForm(w, r)
	if !ok {
		return
	}

	count := defaultStreamCount
	if raw := strings.TrimSpace(r.FormValue("count")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "invalid_argument", "count must be an integer")
			return
		}
		count = parsed
	}
	if count < 1 {
		a.error(w, http.StatusBadRequest, "invalid_argument", "count must be at least 1")
		return
	}
	if count > a.Config.MaxStreamCount {
		a.error(w, http.StatusBadRequest, "invalid_argument",
			"count must not exceed "+strconv.Itoa(a.Config.MaxStreamCount))
		return
	}

	policy := imagegen.RetryPolicy{
		MaxRetries: a.Config.MaxRetryAttempts,
		Delay:      a.Config.RetryDelay,
	}
	stream, err := a.Editor.NewStream(req, count, policy)
	if err != nil {
		if errors.Is(err, imagegen.ErrInvalidImage) {
			a.error(w, http.StatusBadRequest, "invalid_image", "uploaded file is not a decodable image")
			return
		}
		a.editError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "application/jsonl")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	ctx := r.Context()
	for {
		attempt, ok := stream.Next(ctx)
		if !ok {
			return
		}

		record := streamRecord{Index: attempt.Index}
		if attempt.Err != nil {
			record.Error = streamFailureMessage(attempt.Err)
			a.Logger.Warn().Err(attempt.Err).Int("index", attempt.Index).Msg("stream: attempt failed")
		} else {
			record.ImageBase64 = base64.StdEncoding.EncodeToString(attempt.Image)
		}

		// Encode appends the newline that delimits records.
		if err := enc.Encode(record); err != nil {
			a.Logger.Debug().Err(err).Msg("stream: client went away")
			return
		}
		flusher.Flush()

		if attempt.Err != nil {
			return
		}
	}
}

func streamFailureMessage(err error) string {
	switch {
	case errors.Is(err, imagegen.ErrInvalidImage):
		return "uploaded file is not a decodable image"
	case errors.Is(err, genai.ErrMissingAPIKey):
		return "image generation credential is not configured"
	case errors.Is(err, imagegen.ErrModelFailure):
		return err.Error()
	default:
		return "unexpected error: " + err.Error()
	}
}
