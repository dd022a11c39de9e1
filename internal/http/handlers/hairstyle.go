package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"server/internal/imagegen"
	"server/internal/providers/genai"
)

const maxUploadBytes = 32 << 20

// Hairstyle handles the single-result operation: one upload, one prompt, one
// edited image back as a binary body.
func (a *App) Hairstyle(w http.ResponseWriter, r *http.Request) {
	req, ok := a.parseEditForm(w, r)
	if !ok {
		return
	}

	image, err := a.Editor.Edit(r.Context(), req)
	if err != nil {
		a.editError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image)
}

// parseEditForm extracts the uploaded image and prompt shared by both
// endpoints. It answers the request itself on validation failure.
func (a *App) parseEditForm(w http.ResponseWriter, r *http.Request) (imagegen.EditRequest, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return imagegen.EditRequest{}, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file is required")
		return imagegen.EditRequest{}, false
	}
	defer file.Close()

	mediaType := uploadMediaType(header)
	if !supportedMediaType(mediaType) {
		a.error(w, http.StatusBadRequest, "unsupported_media_type", "image must be image/jpeg or image/png")
		return imagegen.EditRequest{}, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read image body")
		return imagegen.EditRequest{}, false
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		prompt = DefaultPrompt
	}

	return imagegen.EditRequest{ImageData: data, MIMEType: mediaType, Prompt: prompt}, true
}

// editError maps classified orchestrator failures to HTTP responses.
func (a *App) editError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, imagegen.ErrInvalidImage):
		a.error(w, http.StatusBadRequest, "invalid_image", "uploaded file is not a decodable image")
	case errors.Is(err, genai.ErrMissingAPIKey):
		a.error(w, http.StatusInternalServerError, "unconfigured_credential", "image generation credential is not configured")
	case errors.Is(err, imagegen.ErrModelFailure):
		a.Logger.Error().Err(err).Msg("hairstyle: generation failed")
		a.error(w, http.StatusInternalServerError, "model_failure", "image generation failed")
	default:
		a.Logger.Error().Err(err).Msg("hairstyle: unexpected failure")
		a.error(w, http.StatusInternalServerError, "internal", "unexpected error")
	}
}

func uploadMediaType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func supportedMediaType(mediaType string) bool {
	switch mediaType {
	case "image/jpeg", "image/png":
		return true
	}
	return false
}
