package sessionauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"
)

// requestWithCookies copies the cookies a previous response set onto a fresh
// request, the way a client would on its next call.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest("POST", "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestCookieService(t *testing.T) {
	c := qt.New(t)

	c.Run("open then read", func(c *qt.C) {
		svc := New("secret", zerolog.Nop())

		rec := httptest.NewRecorder()
		err := svc.Open(rec, httptest.NewRequest("POST", "/", nil), "tintin")
		c.Assert(err, qt.IsNil)

		username, err := svc.CurrentUsername(requestWithCookies(rec))
		c.Assert(err, qt.IsNil)
		c.Assert(username, qt.Equals, "tintin")
	})

	c.Run("no cookie means anonymous", func(c *qt.C) {
		svc := New("secret", zerolog.Nop())

		username, err := svc.CurrentUsername(httptest.NewRequest("GET", "/", nil))
		c.Assert(err, qt.IsNil)
		c.Assert(username, qt.Equals, "")
	})

	c.Run("close drops the session", func(c *qt.C) {
		svc := New("secret", zerolog.Nop())

		rec := httptest.NewRecorder()
		err := svc.Open(rec, httptest.NewRequest("POST", "/", nil), "tintin")
		c.Assert(err, qt.IsNil)

		rec2 := httptest.NewRecorder()
		err = svc.Close(rec2, requestWithCookies(rec))
		c.Assert(err, qt.IsNil)

		username, err := svc.CurrentUsername(requestWithCookies(rec2))
		c.Assert(err, qt.IsNil)
		c.Assert(username, qt.Equals, "")
	})

	c.Run("a cookie from another secret is anonymous", func(c *qt.C) {
		svc := New("secret", zerolog.Nop())

		rec := httptest.NewRecorder()
		err := svc.Open(rec, httptest.NewRequest("POST", "/", nil), "tintin")
		c.Assert(err, qt.IsNil)

		rotated := New("other-secret", zerolog.Nop())
		username, err := rotated.CurrentUsername(requestWithCookies(rec))
		c.Assert(err, qt.IsNil)
		c.Assert(username, qt.Equals, "")
	})
}
