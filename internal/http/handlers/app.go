package handlers

import (
	"encoding/json"
	"net/http"

	"server/internal/imagegen"
	"server/internal/infra"
)

// DefaultPrompt is used when the client omits the prompt field.
const DefaultPrompt = "Change my hairstyle keep my face same"

// App bundles the dependencies shared by all handlers. The editor is
// constructed once at startup and reused across requests.
type App struct {
	Config *infra.Config
	Logger infra.Logger
	Editor imagegen.Editor
}

func NewApp(cfg *infra.Config, logger infra.Logger, editor imagegen.Editor) *App {
	return &App{Config: cfg, Logger: logger, Editor: editor}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"code": errCode, "message": message})
}
