package handlers

import (
	"net/http"

	"esg-assess/internal/config"
)

// ConfigHandler handles configuration requests
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// AppConfig is the public configuration the frontend needs
type AppConfig struct {
	Name               string `json:"name"`
	Version            string `json:"version"`
	EnableRegistration bool   `json:"enable_registration"`
	Timeframes         []int  `json:"roadmap_timeframes"`
	ChatEnabled        bool   `json:"chat_enabled"`
}

// GetAppConfig returns the public app configuration for the frontend
// @Summary Get app configuration
// @Description Public settings. chat_enabled reports whether a language model answers chat queries.
// @Tags Configuration
// @Produce json
// @Success 200 {object} AppConfig
// @Router /config/app [get]
func (h *ConfigHandler) GetAppConfig(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, AppConfig{
		Name:               h.config.App.Name,
		Version:            h.config.App.Version,
		EnableRegistration: h.config.App.EnableRegistration,
		Timeframes:         []int{30, 60, 90},
		ChatEnabled:        h.config.LLM.Enabled,
	})
}
