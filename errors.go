package newswire

import (
	"fmt"
	"net/http"
)

// An APIError is a terminal per-request failure reported to the caller as a
// plain text body. Agencies in the network predate this implementation and
// their clients match on both status code and wording, so the texts below
// are part of the wire contract and must not be reworded. That includes the
// long-standing 503s where 401 or 404 would have been the semantically
// right choice.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %v", e.Status, e.Body)
}

// Respond writes the error on the wire as text/plain.
func (e *APIError) Respond(res http.ResponseWriter) {
	res.Header().Set("Content-Type", "text/plain")
	res.WriteHeader(e.Status)
	fmt.Fprint(res, e.Body)
}

var (
	errCredentialsNotStrings = &APIError{http.StatusBadRequest, "Username and password must be strings."}
	errInvalidCredentials    = &APIError{http.StatusUnauthorized, "Invalid username or password. Please try again."}
	errNotLoggedOut          = &APIError{http.StatusUnauthorized, "You are not logged in."}
	errMethodNotAllowed      = &APIError{http.StatusMethodNotAllowed, "Method not allowed."}

	// 503 family, kept verbatim from the original service.
	errNotLoggedIn     = &APIError{http.StatusServiceUnavailable, "You are not logged in."}
	errBadCategory     = &APIError{http.StatusServiceUnavailable, "Category should be: 'pol', 'art', 'tech' or 'trivia'."}
	errBadRegion       = &APIError{http.StatusServiceUnavailable, "Region should be: 'uk', 'eu' or 'w'"}
	errFieldsTooLong   = &APIError{http.StatusServiceUnavailable, "Headline should be no more than 64 characters and Details should be no more than 128 characters"}
	errStoryNotFound   = &APIError{http.StatusServiceUnavailable, "Story does not exist."}
	errDeleteBadMethod = &APIError{http.StatusServiceUnavailable, "Method not allowed."}

	// list filter validation, a plain 400 family.
	errBadFilterCategory = &APIError{http.StatusBadRequest, "Category should be: 'pol', 'art', 'tech' or 'trivia' if specifying."}
	errBadFilterRegion   = &APIError{http.StatusBadRequest, "Region should be: 'uk', 'eu' or 'w' if specifying"}
	errBadFilterDate     = &APIError{http.StatusBadRequest, "Date must be valid and in the format: 'dd/mm/YYYY'."}
	errNoStories         = &APIError{http.StatusNotFound, "No stories found"}

	errBadBody = &APIError{http.StatusBadRequest, "Could not parse request body."}
)
