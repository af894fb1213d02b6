package httpapi

import (
	"newsfeed/auth"
	"newsfeed/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Server wires the HTTP surface over the session manager and repositories
type Server struct {
	srv        router.Server[*fiber.App]
	logger     auth.Logger
	sessions   *auth.SessionManager
	repo       repository.Manager
	contextKey string
	debug      bool
}

type ServerOption func(*Server)

// WithServerLogger overrides the default logger
func WithServerLogger(logger auth.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServerDebug toggles payload dumps on the controllers
func WithServerDebug(debug bool) ServerOption {
	return func(s *Server) {
		s.debug = debug
	}
}

// NewServer builds the fiber-backed server and mounts every route
func NewServer(repo repository.Manager, sessions *auth.SessionManager, cfg auth.Config, opts ...ServerOption) *Server {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	s := &Server{
		srv:        srv,
		repo:       repo,
		sessions:   sessions,
		logger:     defLogger{},
		contextKey: cfg.GetContextKey(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	p := s.srv.Router()

	protected := Protected(s.sessions, s.contextKey, s.logger)
	guard := auth.NewOwnershipGuard(s.logger)

	users := NewUsersController(func(c *UsersController) *UsersController {
		c.Debug = s.debug
		c.Logger = s.logger
		c.Repo = s.repo
		c.Sessions = s.sessions
		c.ContextKey = s.contextKey
		return c
	})
	users.RegisterRoutes(p, protected)

	posts := NewPostsController(func(c *PostsController) *PostsController {
		c.Debug = s.debug
		c.Logger = s.logger
		c.Repo = s.repo
		c.Guard = guard
		c.ContextKey = s.contextKey
		return c
	})
	posts.RegisterRoutes(p, protected)

	comments := NewCommentsController(func(c *CommentsController) *CommentsController {
		c.Debug = s.debug
		c.Logger = s.logger
		c.Repo = s.repo
		c.Guard = guard
		c.ContextKey = s.contextKey
		return c
	})
	comments.RegisterRoutes(p, protected)
}

// Router exposes the underlying router, mostly for tests and extra routes
func (s *Server) Router() router.Router[*fiber.App] {
	return s.srv.Router()
}

// Serve starts listening on the given address
func (s *Server) Serve(addr string) error {
	return s.srv.Serve(addr)
}
