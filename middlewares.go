package newswire

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// middleware is a convenient type for declaring middlewares.
type middleware func(httprouter.Handle) httprouter.Handle

// contextKey is a type for storing values in each request context.
type contextKey string

// String returns a stringified context key.
func (k contextKey) String() string { return string(k) }

// ctxKeyUsername is the context key for the authenticated caller's username.
var ctxKeyUsername = contextKey("username")

// ctxUsername fetches the authenticated username from the context, "" when
// the caller is anonymous.
func ctxUsername(ctx context.Context) string {
	if v := ctx.Value(ctxKeyUsername); v != nil {
		return v.(string)
	}
	return ""
}

// withMiddlewares is a helper function to declare routes with middlewares
// more easily. The caller declares its routes in the body of the f function,
// calling f's argument on its httprouter.Handle to wrap them.
func withMiddlewares(f func(middleware), middlewares ...middleware) {
	wrapper := func(handle httprouter.Handle) httprouter.Handle {
		h := handle
		for i := len(middlewares) - 1; i >= 0; i-- {
			m := middlewares[i]
			h = m(h)
		}
		return h
	}

	f(wrapper)
}

// loadSessionMiddleware resolves the caller's session through the session
// service and stores the username in the request context. Anonymous callers
// get an empty username; deciding what that means is left to each handler,
// since login-required failures answer different codes on different routes.
func (s *Server) loadSessionMiddleware() middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return httprouter.Handle(func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
			username, err := s.sessions.CurrentUsername(r)
			if err != nil {
				s.Logger.Warn().Err(err).Msg("Failed to read session")
				http.Error(w, "Failed to read session", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUsername, username)
			next(w, r.WithContext(ctx), p)
		})
	}
}
