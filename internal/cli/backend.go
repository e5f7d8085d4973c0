package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hfnukal/morotasks/internal/backend/googletasks"
	"github.com/hfnukal/morotasks/internal/backend/restapi"
	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/service"
)

// ErrNotLoggedIn is returned when the googletasks backend has no usable
// credentials in the config directory.
var ErrNotLoggedIn = errors.New("not logged in")

// NewService builds the backend selected by cfg.Backend.
func NewService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	switch cfg.Backend {
	case config.BackendREST, "":
		return restapi.New(cfg, cfg.Logger)
	case config.BackendGoogleTasks:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("%w: oauth_client.json not found in %s", ErrNotLoggedIn, cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, fmt.Errorf("%w (run: morotasks login)", ErrNotLoggedIn)
		}
		return googletasks.New(ctx, cfg, cfg.Logger)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}
