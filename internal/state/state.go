package state

import (
	"whodunnit-be/internal/config"
	"whodunnit-be/internal/service"
	"whodunnit-be/internal/service/narration"
)

type AppState struct {
	Cfg        *config.AppConfig
	SessionSvc *service.SessionService
	Themes     *narration.Registry
}

func NewAppState(
	cfg *config.AppConfig,
	sessionSvc *service.SessionService,
	themes *narration.Registry,
) *AppState {
	return &AppState{
		Cfg:        cfg,
		SessionSvc: sessionSvc,
		Themes:     themes,
	}
}
