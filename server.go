package newswire

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/hopebrooke/newswire/sessionauth"
)

type ServerConfig struct {
	Addr string
}

// A StoryHook runs after a story has been created, once it has an id and an
// author name. Hook failures are logged and never fail the request; the
// network must keep working when an announcement target is down.
type StoryHook func(story *Story) error

type Server struct {
	Logger zerolog.Logger

	config     *ServerConfig
	store      Store
	router     *httprouter.Router
	sessions   sessionauth.Service
	storyHooks []StoryHook

	done            chan struct{}
	idleConnsClosed chan struct{}
}

func NewServer(config *ServerConfig, logger zerolog.Logger, store Store, sessions sessionauth.Service) *Server {
	return &Server{
		Logger:          logger,
		config:          config,
		store:           store,
		sessions:        sessions,
		router:          httprouter.New(),
		done:            make(chan struct{}),
		idleConnsClosed: make(chan struct{}),
	}
}

// AddStoryHook registers a hook run after each story creation.
func (s *Server) AddStoryHook(h StoryHook) {
	s.storyHooks = append(s.storyHooks, h)
}

// Prepare connects the store and declares the routes. It must be called
// before Start.
func (s *Server) Prepare() error {
	err := s.store.Connect()
	if err != nil {
		return err
	}

	s.router.POST("/api/login", s.HandleLogin())
	s.router.GET("/api/stories", s.HandleListStories())

	withMiddlewares(func(wrap middleware) {
		s.router.POST("/api/logout", wrap(s.HandleLogout()))
		s.router.POST("/api/stories", wrap(s.HandleCreateStory()))
		s.router.DELETE("/api/stories/:id", wrap(s.HandleDeleteStory()))
	}, s.loadSessionMiddleware())

	// Wrong-verb requests answer 405, except under the per-story path where
	// the original service answered 503. Both are part of the wire contract.
	s.router.MethodNotAllowed = http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/stories/") {
			errDeleteBadMethod.Respond(res)
			return
		}
		errMethodNotAllowed.Respond(res)
	})

	return nil
}

// Start runs the HTTP server until Stop is called.
func (s *Server) Start() error {
	httpServer := http.Server{Addr: s.config.Addr, Handler: s}

	go func() {
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.Logger.Fatal().Err(err).Msg("Cannot listen and serve")
		}
	}()

	<-s.done

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return err
	}
	close(s.idleConnsClosed)

	return nil
}

// Stop shuts the server down, waiting for in-flight requests to complete.
func (s *Server) Stop() {
	close(s.done)
	<-s.idleConnsClosed
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(res, req)
}
