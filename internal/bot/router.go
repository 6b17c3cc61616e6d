package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/gatekeeper-bot/internal/bot/handlers"
)

type route struct {
	prefix  string
	handler handlers.Handler
}

// Router matches message text against command prefixes in registration order.
type Router struct {
	mu             sync.RWMutex
	routes         []route
	unknownHandler handlers.Handler
	defaultHandler handlers.Handler
	middlewares    []handlers.Middleware
	log            *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for text starting with cmd.
// Commands are matched in the order they were first registered.
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.routes {
		if r.routes[i].prefix == cmd {
			r.routes[i].handler = h
			return
		}
	}
	r.routes = append(r.routes, route{prefix: cmd, handler: h})
}

// SetUnknown sets the handler for slash commands that match no registered command.
func (r *Router) SetUnknown(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unknownHandler = h
}

// SetDefault sets the fallback handler for plain text.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming update to exactly one handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	name, handler := r.match(c.Text())
	if handler == nil {
		r.log.Debug("no handler for update", slog.String("route", name))
		return nil
	}

	c.Set(handlers.ContextKeyCommand, name)
	return r.executeHandler(handler, c)
}

func (r *Router) match(text string) (string, handlers.Handler) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rt := range r.routes {
		if strings.HasPrefix(text, rt.prefix) {
			return rt.prefix, rt.handler
		}
	}

	if strings.HasPrefix(text, "/") {
		return RouteUnknown, r.unknownHandler
	}

	return RouteText, r.defaultHandler
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
