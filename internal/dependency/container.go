// Package dependency wires the core localhive services using go.uber.org/dig.
package dependency

import (
	"go.uber.org/dig"

	"github.com/localhive/localhive/internal/auth"
	"github.com/localhive/localhive/internal/chat"
	"github.com/localhive/localhive/internal/config"
	"github.com/localhive/localhive/internal/places"
	"github.com/localhive/localhive/internal/providers"
	"github.com/localhive/localhive/internal/retention"
	"github.com/localhive/localhive/internal/schema"
	"github.com/localhive/localhive/internal/server"
	"github.com/localhive/localhive/internal/store"
	"github.com/localhive/localhive/internal/tools"
)

// Container holds the resolved service singletons. Callers use the typed
// getters; they never need to import dig directly.
type Container struct {
	store        store.Store
	orchestrator *chat.Orchestrator
	server       *server.Server
	retention    *retention.Service
}

func (c *Container) Store() store.Store              { return c.store }
func (c *Container) Orchestrator() *chat.Orchestrator { return c.orchestrator }
func (c *Container) Server() *server.Server          { return c.server }
func (c *Container) Retention() *retention.Service   { return c.retention }

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	for _, provide := range []any{
		func() *config.Config { return cfg },
		newStore,
		newProvider,
		newPlacesClient,
		newRegistry,
		newOrchestrator,
		newAuthMiddleware,
		newServer,
		newRetention,
	} {
		if err := d.Provide(provide); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		st store.Store,
		orchestrator *chat.Orchestrator,
		srv *server.Server,
		ret *retention.Service,
	) {
		result = &Container{
			store:        st,
			orchestrator: orchestrator,
			server:       srv,
			retention:    ret,
		}
	})
	return result, err
}

func newStore(cfg *config.Config) (store.Store, error) {
	return store.NewSQLiteStore(cfg.Store.Path)
}

func newProvider(cfg *config.Config) schema.LLMProvider {
	return providers.NewOpenAIProvider(cfg.LLM)
}

func newPlacesClient(cfg *config.Config) *places.Client {
	return places.NewClient(cfg.Places)
}

func newRegistry(placesClient *places.Client) *tools.Registry {
	return tools.NewRegistry(
		tools.NewPokemonTool(),
		tools.NewGreetingTool(),
		tools.NewPlacesTool(placesClient),
		tools.NewMathTool(),
	)
}

func newOrchestrator(cfg *config.Config, provider schema.LLMProvider, registry *tools.Registry) *chat.Orchestrator {
	opts := schema.NewChatOptions(cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	return chat.NewOrchestrator(provider, registry, opts)
}

func newAuthMiddleware(cfg *config.Config, st store.Store) *auth.Middleware {
	return auth.NewMiddleware(auth.NewClient(cfg.Auth), st, cfg.Auth.Disabled)
}

func newServer(cfg *config.Config, orchestrator *chat.Orchestrator, st store.Store, placesClient *places.Client, mw *auth.Middleware) *server.Server {
	return server.New(cfg.Server.Addr, orchestrator, st, placesClient, mw)
}

func newRetention(cfg *config.Config, st store.Store) *retention.Service {
	return retention.NewService(st, cfg.Retention)
}
