package newswire

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
)

// storyPayload is the JSON body accepted when posting a story.
type storyPayload struct {
	Headline string `json:"headline"`
	Category string `json:"category"`
	Region   string `json:"region"`
	Details  string `json:"details"`
}

// storyItem is the per-story shape of the list response. Field names are
// fixed by the network-wide envelope format.
type storyItem struct {
	Key          string `json:"key"`
	Headline     string `json:"headline"`
	StoryCat     string `json:"story_cat"`
	StoryRegion  string `json:"story_region"`
	Author       string `json:"author"`
	StoryDate    string `json:"story_date"`
	StoryDetails string `json:"story_details"`
}

type storiesEnvelope struct {
	Stories []storyItem `json:"stories"`
}

// HandleLogin handles credential logins, opening a cookie session on
// success.
func (s *Server) HandleLogin() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		if err := req.ParseForm(); err != nil {
			s.Logger.Warn().Err(err).Msg("Failed to parse login form")
			errCredentialsNotStrings.Respond(res)
			return
		}

		if !req.PostForm.Has("username") || !req.PostForm.Has("password") {
			errCredentialsNotStrings.Respond(res)
			return
		}

		username := req.PostFormValue("username")
		password := req.PostFormValue("password")

		account, err := s.store.FindAccountByUsername(username)
		if errors.Is(err, ErrNoRecord) {
			errInvalidCredentials.Respond(res)
			return
		}
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to fetch account")
			http.Error(res, "Failed to fetch account", http.StatusInternalServerError)
			return
		}

		if !account.CheckPassword(password) {
			errInvalidCredentials.Respond(res)
			return
		}

		if err := s.sessions.Open(res, req, account.Username); err != nil {
			s.Logger.Error().Err(err).Msg("Failed to open session")
			http.Error(res, "Failed to open session", http.StatusInternalServerError)
			return
		}

		s.Logger.Debug().Str("username", account.Username).Msg("logged in")
		res.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(res, "You have logged in. Welcome!")
	}
}

// HandleLogout terminates the caller's session, if one is active.
func (s *Server) HandleLogout() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		username := ctxUsername(req.Context())
		if username == "" {
			errNotLoggedOut.Respond(res)
			return
		}

		if err := s.sessions.Close(res, req); err != nil {
			s.Logger.Error().Err(err).Msg("Failed to close session")
			http.Error(res, "Failed to close session", http.StatusInternalServerError)
			return
		}

		s.Logger.Debug().Str("username", username).Msg("logged out")
		res.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(res, "You have logged out. Goodbye.")
	}
}

// HandleCreateStory validates and persists a story posted by an
// authenticated author, stamping it with the current server date.
func (s *Server) HandleCreateStory() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		username := ctxUsername(req.Context())
		if username == "" {
			errNotLoggedIn.Respond(res)
			return
		}

		var payload storyPayload
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			s.Logger.Warn().Err(err).Msg("Failed to decode story payload")
			errBadBody.Respond(res)
			return
		}

		if !ValidCategory(payload.Category) {
			errBadCategory.Respond(res)
			return
		}
		if !ValidRegion(payload.Region) {
			errBadRegion.Respond(res)
			return
		}
		// bounds count characters, not bytes, like the VARCHAR columns do
		if utf8.RuneCountInString(payload.Headline) > MaxHeadlineLen || utf8.RuneCountInString(payload.Details) > MaxDetailsLen {
			errFieldsTooLong.Respond(res)
			return
		}

		account, err := s.store.FindAccountByUsername(username)
		if err != nil {
			s.Logger.Error().Err(err).Str("username", username).Msg("Failed to fetch account")
			http.Error(res, "Failed to fetch account", http.StatusInternalServerError)
			return
		}

		author, err := s.store.AuthorForAccount(account.ID)
		if err != nil {
			s.Logger.Error().Err(err).Str("username", username).Msg("Failed to fetch author")
			http.Error(res, "Failed to fetch author", http.StatusInternalServerError)
			return
		}

		story := NewStory(payload.Headline, payload.Category, payload.Region, author.ID, payload.Details)
		if err := s.store.InsertStory(story); err != nil {
			s.Logger.Error().Err(err).Msg("Failed to insert story")
			http.Error(res, "Failed to insert story", http.StatusInternalServerError)
			return
		}

		story.Author = author.Username
		for _, h := range s.storyHooks {
			if err := h(story); err != nil {
				s.Logger.Warn().Err(err).Int64("id", story.ID).Msg("story hook failed")
			}
		}

		res.WriteHeader(http.StatusCreated)
	}
}

// HandleListStories serves the filtered story listing. All three filter
// parameters are required; '*' leaves a field unconstrained. The date filter
// is a lower bound, not an equality match.
func (s *Server) HandleListStories() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		query := req.URL.Query()
		cat := query.Get("story_cat")
		reg := query.Get("story_region")
		date := query.Get("story_date")

		if cat != Wildcard && !ValidCategory(cat) {
			errBadFilterCategory.Respond(res)
			return
		}
		if reg != Wildcard && !ValidRegion(reg) {
			errBadFilterRegion.Respond(res)
			return
		}

		var filter StoryFilter
		if cat != Wildcard {
			filter.Category = cat
		}
		if reg != Wildcard {
			filter.Region = reg
		}
		if date != Wildcard {
			since, err := ParseWireDate(date)
			if err != nil {
				errBadFilterDate.Respond(res)
				return
			}
			filter.Since = since
		}

		stories, err := s.store.ListStories(filter)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to list stories")
			http.Error(res, "Failed to list stories", http.StatusInternalServerError)
			return
		}

		if len(stories) == 0 {
			errNoStories.Respond(res)
			return
		}

		envelope := storiesEnvelope{Stories: make([]storyItem, 0, len(stories))}
		for _, story := range stories {
			envelope.Stories = append(envelope.Stories, storyItem{
				Key:          strconv.FormatInt(story.ID, 10),
				Headline:     story.Headline,
				StoryCat:     story.Category,
				StoryRegion:  story.Region,
				Author:       story.Author,
				StoryDate:    story.Date.Format(DateFormat),
				StoryDetails: story.Details,
			})
		}

		res.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(res).Encode(envelope); err != nil {
			s.Logger.Error().Err(err).Msg("Failed to encode stories")
		}
	}
}

// HandleDeleteStory deletes a story by id for an authenticated caller.
func (s *Server) HandleDeleteStory() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		username := ctxUsername(req.Context())
		if username == "" {
			errNotLoggedIn.Respond(res)
			return
		}

		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			// non-numeric ids never routed anywhere in the original service
			http.NotFound(res, req)
			return
		}

		err = s.store.DeleteStory(id)
		if errors.Is(err, ErrNoRecord) {
			errStoryNotFound.Respond(res)
			return
		}
		if err != nil {
			s.Logger.Error().Err(err).Int64("id", id).Msg("Failed to delete story")
			http.Error(res, "Failed to delete story", http.StatusInternalServerError)
			return
		}

		s.Logger.Debug().Int64("id", id).Str("username", username).Msg("story deleted")
	}
}
