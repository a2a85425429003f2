// Package api exposes the controller over a local HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lotas/tabdedupe/internal/analyzer"
	"github.com/lotas/tabdedupe/internal/controller"
	"github.com/lotas/tabdedupe/internal/firefox"
	"github.com/lotas/tabdedupe/internal/inventory"
	"github.com/lotas/tabdedupe/internal/server"
	"github.com/lotas/tabdedupe/internal/types"
)

// Service is the part of *controller.Controller the API calls.
type Service interface {
	RefreshMode(ctx context.Context, mode types.MatchMode) (*inventory.Snapshot, error)
	WindowHosts(ctx context.Context, windowID int) ([]analyzer.HostCount, error)
	Plan(ctx context.Context, req controller.ActionRequest) (types.Plan, error)
	Apply(ctx context.Context, req controller.ActionRequest) (controller.Result, error)
	SwitchTo(ctx context.Context, tabID int) error
	Preferences() types.Preferences
	SetPreferences(ctx context.Context, p types.Preferences) error
}

// NewServer returns the HTTP handler for svc.
func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("tabdedupe API", "1.0.0")
	api := humachi.New(router, cfg)

	registerHealthHandlers(api)
	registerGroupHandlers(api, svc)
	registerWindowHandlers(api, svc)
	registerActionHandlers(api, svc)
	registerPreferenceHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, controller.ErrGroupNotFound),
		errors.Is(err, controller.ErrTabNotFound),
		errors.Is(err, controller.ErrWindowNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, inventory.ErrSuperseded):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, firefox.ErrReadOnly):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, server.ErrNotConnected), errors.Is(err, server.ErrDisconnected):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, inventory.ErrHostQuery):
		return huma.Error502BadGateway(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
