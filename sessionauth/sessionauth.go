// Package sessionauth holds the cookie-session state of API callers. A
// caller is either anonymous or authenticated as a username; login opens a
// session, logout closes it, and nothing expires it in between.
package sessionauth

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const sessionKey = "newswire-session"

// A Service binds authentication state to the calling connection.
type Service interface {
	// Open starts a session for the given username.
	Open(res http.ResponseWriter, req *http.Request, username string) error
	// Close terminates the current session, if any.
	Close(res http.ResponseWriter, req *http.Request) error
	// CurrentUsername returns the authenticated username, or "" when the
	// caller is anonymous.
	CurrentUsername(req *http.Request) (string, error)
}

// sessionData is what gets serialized into the cookie.
type sessionData struct {
	Username string `json:"username"`
}

// CookieService implements Service on top of a gorilla cookie store.
type CookieService struct {
	sessionStore *sessions.CookieStore
	logger       zerolog.Logger
}

var _ Service = (*CookieService)(nil)

func New(serverSecret string, logger zerolog.Logger) *CookieService {
	return &CookieService{
		sessionStore: sessions.NewCookieStore([]byte(serverSecret)),
		logger:       logger,
	}
}

func (s *CookieService) Open(res http.ResponseWriter, req *http.Request, username string) error {
	session, err := s.sessionStore.Get(req, sessionKey)
	if err != nil {
		return err
	}

	b, err := json.Marshal(sessionData{Username: username})
	if err != nil {
		return err
	}

	session.Values["account"] = b
	return session.Save(req, res)
}

func (s *CookieService) Close(res http.ResponseWriter, req *http.Request) error {
	session, err := s.sessionStore.Get(req, sessionKey)
	if err != nil {
		return err
	}

	session.Options.MaxAge = -1
	session.Values["account"] = nil
	return session.Save(req, res)
}

func (s *CookieService) CurrentUsername(req *http.Request) (string, error) {
	session, err := s.sessionStore.Get(req, sessionKey)
	if err != nil {
		// A cookie we can't decode is an anonymous caller, not a server
		// error; it happens whenever the server secret rotates.
		s.logger.Debug().Err(err).Msg("undecodable session cookie")
		return "", nil
	}

	b, ok := session.Values["account"].([]byte)
	if !ok {
		return "", nil
	}

	var data sessionData
	if err := json.Unmarshal(b, &data); err != nil {
		return "", err
	}

	return data.Username, nil
}
