package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"server/internal/infra"
	"server/internal/providers/genai"
)

// ContentGenerator is the slice of the Gemini client the orchestrator needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, req *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error)
}

// Orchestrator sequences one generation: decode and validate the input image,
// invoke the model fallback sequence in order, and extract the first returned
// image payload. It holds no per-request state and performs a fresh external
// call on every invocation.
type Orchestrator struct {
	client ContentGenerator
	models []string
	logger infra.Logger
}

// NewOrchestrator wires an orchestrator to a shared Gemini client and an
// ordered, non-empty model identifier sequence.
func NewOrchestrator(client ContentGenerator, models []string, logger infra.Logger) *Orchestrator {
	if len(models) == 0 {
		models = []string{infra.DefaultModel}
	}
	return &Orchestrator{client: client, models: models, logger: logger}
}

var _ Editor = (*Orchestrator)(nil)

// ValidateImage decodes the bytes and materializes the full pixel data so that
// truncated or corrupt uploads surface immediately rather than inside a model
// call. Wraps ErrInvalidImage on failure.
func ValidateImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty image body", ErrInvalidImage)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if bounds := img.Bounds(); bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("%w: decoded %s image has no pixels", ErrInvalidImage, format)
	}
	return nil
}

// Edit runs the full decode, invoke, extract sequence for a single attempt.
func (o *Orchestrator) Edit(ctx context.Context, req EditRequest) ([]byte, error) {
	if err := ValidateImage(req.ImageData); err != nil {
		return nil, err
	}
	return o.generate(ctx, req)
}

// generate assumes the image has already been validated. The streaming path
// calls it directly so the upload is decoded once per request, not once per
// attempt.
func (o *Orchestrator) generate(ctx context.Context, req EditRequest) ([]byte, error) {
	payload := &genai.GenerateContentRequest{
		Contents: []genai.Content{{
			Role: "user",
			Parts: []genai.Part{
				{InlineData: &genai.InlineData{
					MimeType: normalizeMIME(req.MIMEType),
					Data:     base64.StdEncoding.EncodeToString(req.ImageData),
				}},
				{Text: req.Prompt},
			},
		}},
		GenerationConfig: &genai.GenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	var resp *genai.GenerateContentResponse
	var lastErr error
	for _, model := range o.models {
		r, err := o.client.GenerateContent(ctx, model, payload)
		if err == nil {
			resp = r
			break
		}
		if isTerminal(err) {
			return nil, err
		}
		o.logger.Warn().Err(err).Str("model", model).Msg("imagegen: model invocation failed")
		lastErr = err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: all models failed: %v", ErrModelFailure, lastErr)
	}

	out, err := extractImage(resp)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isTerminal reports whether an invocation error must bypass both the model
// fallback loop and the streaming retry policy.
func isTerminal(err error) bool {
	return errors.Is(err, genai.ErrMissingAPIKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// extractImage scans the response parts for the first inline image payload and
// decodes it to raw bytes.
func extractImage(resp *genai.GenerateContentResponse) ([]byte, error) {
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			inline := part.InlineData
			if inline == nil || inline.Data == "" {
				continue
			}
			if inline.MimeType != "" && !strings.HasPrefix(inline.MimeType, "image/") {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(inline.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: decode inline image: %v", ErrModelFailure, err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: no image returned", ErrModelFailure)
}

func normalizeMIME(mime string) string {
	mime = strings.TrimSpace(strings.ToLower(mime))
	if mime == "" {
		return "image/png"
	}
	return mime
}
