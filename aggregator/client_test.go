package aggregator

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"
)

func newTestClient(c *qt.C, cfg *Config, input string) (*Client, *bytes.Buffer) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := &bytes.Buffer{}
	client, err := NewClient(cfg, strings.NewReader(input), out, zerolog.Nop())
	c.Assert(err, qt.IsNil)
	return client, out
}

func TestRunDispatch(t *testing.T) {
	c := qt.New(t)

	c.Run("unknown commands", func(c *qt.C) {
		client, out := newTestClient(c, nil, "bogus\nexit\n")
		c.Assert(client.Run(), qt.IsNil)
		c.Assert(out.String(), qt.Contains, invalidCommandMsg)
	})

	c.Run("commands are case-insensitive", func(c *qt.C) {
		client, out := newTestClient(c, nil, "MENU\nQuit\n")
		c.Assert(client.Run(), qt.IsNil)
		// the menu prints once at startup and once for the command
		c.Assert(strings.Count(out.String(), "Available commands:"), qt.Equals, 2)
	})

	c.Run("blank lines are skipped", func(c *qt.C) {
		client, out := newTestClient(c, nil, "\n\nexit\n")
		c.Assert(client.Run(), qt.IsNil)
		c.Assert(out.String(), qt.Not(qt.Contains), invalidCommandMsg)
	})

	c.Run("end of input stops the loop", func(c *qt.C) {
		client, _ := newTestClient(c, nil, "")
		c.Assert(client.Run(), qt.IsNil)
	})
}

func TestLogin(t *testing.T) {
	c := qt.New(t)

	c.Run("successful login prints the server's message", func(c *qt.C) {
		var gotUsername, gotPassword string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Assert(r.URL.Path, qt.Equals, "/api/login")
			c.Assert(r.ParseForm(), qt.IsNil)
			gotUsername = r.PostFormValue("username")
			gotPassword = r.PostFormValue("password")
			w.Write([]byte("You have logged in. Welcome!"))
		}))
		defer ts.Close()

		client, out := newTestClient(c, nil, "tintin\nsecret\n")
		client.login([]string{"login", ts.URL})

		c.Assert(gotUsername, qt.Equals, "tintin")
		c.Assert(gotPassword, qt.Equals, "secret")
		c.Assert(out.String(), qt.Contains, "You have logged in. Welcome!")
	})

	c.Run("rejected login is prefixed with Error:", func(c *qt.C) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid username or password. Please try again."))
		}))
		defer ts.Close()

		client, out := newTestClient(c, nil, "tintin\nwrong\n")
		client.login([]string{"login", ts.URL})

		c.Assert(out.String(), qt.Contains, "Error: Invalid username or password. Please try again.")
	})

	c.Run("unreachable target", func(c *qt.C) {
		client, out := newTestClient(c, nil, "tintin\nsecret\n")
		client.login([]string{"login", "http://localhost:1"})

		c.Assert(out.String(), qt.Contains,
			"Error: Unable to connect to url provided - http://localhost:1/api/login. Please try again.")
	})

	c.Run("missing url argument", func(c *qt.C) {
		client, out := newTestClient(c, nil, "")
		client.login([]string{"login"})
		c.Assert(out.String(), qt.Contains, invalidCommandMsg)
	})
}

func TestPost(t *testing.T) {
	c := qt.New(t)

	c.Run("posts the collected fields", func(c *qt.C) {
		var body string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Assert(r.URL.Path, qt.Equals, "/api/stories")
			b, err := io.ReadAll(r.Body)
			c.Assert(err, qt.IsNil)
			body = string(b)
			w.WriteHeader(http.StatusCreated)
		}))
		defer ts.Close()

		cfg := DefaultConfig()
		cfg.Target = ts.URL
		client, out := newTestClient(c, cfg, "Vote delayed\npol\nuk\nThe vote slipped again.\n")
		client.post([]string{"post"})

		c.Assert(body, qt.Contains, `"headline":"Vote delayed"`)
		c.Assert(body, qt.Contains, `"category":"pol"`)
		c.Assert(out.String(), qt.Contains, "Story has been posted successfully.")
	})

	c.Run("overlong headline is rejected locally", func(c *qt.C) {
		headline := strings.Repeat("a", 65)
		client, out := newTestClient(c, nil, headline+"\n")
		client.post([]string{"post"})

		c.Assert(out.String(), qt.Contains,
			"Your story's headline should be no more than 64 characters. This is 65 characters.")
	})

	c.Run("headline length counts characters, not bytes", func(c *qt.C) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))
		defer ts.Close()

		cfg := DefaultConfig()
		cfg.Target = ts.URL

		// 64 two-byte characters pass the local check
		headline := strings.Repeat("é", 64)
		client, out := newTestClient(c, cfg, headline+"\npol\nuk\nd\n")
		client.post([]string{"post"})
		c.Assert(out.String(), qt.Contains, "Story has been posted successfully.")

		client, out = newTestClient(c, cfg, strings.Repeat("é", 65)+"\n")
		client.post([]string{"post"})
		c.Assert(out.String(), qt.Contains,
			"Your story's headline should be no more than 64 characters. This is 65 characters.")
	})

	c.Run("bad category is rejected locally", func(c *qt.C) {
		client, out := newTestClient(c, nil, "Vote delayed\nsport\n")
		client.post([]string{"post"})

		c.Assert(out.String(), qt.Contains, "Category should be: 'pol', 'art', 'tech' or 'trivia'.")
	})

	c.Run("server rejection is relayed", func(c *qt.C) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("You are not logged in."))
		}))
		defer ts.Close()

		cfg := DefaultConfig()
		cfg.Target = ts.URL
		client, out := newTestClient(c, cfg, "Vote delayed\npol\nuk\nThe vote slipped again.\n")
		client.post([]string{"post"})

		c.Assert(out.String(), qt.Contains, "Error: You are not logged in.\nPlease try again")
	})
}

func TestDelete(t *testing.T) {
	c := qt.New(t)

	c.Run("success", func(c *qt.C) {
		var gotPath, gotMethod string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
		}))
		defer ts.Close()

		cfg := DefaultConfig()
		cfg.Target = ts.URL
		client, out := newTestClient(c, cfg, "")
		client.delete([]string{"delete", "42"})

		c.Assert(gotMethod, qt.Equals, http.MethodDelete)
		c.Assert(gotPath, qt.Equals, "/api/stories/42")
		c.Assert(out.String(), qt.Contains, "Story successfully deleted.")
	})

	c.Run("non-numeric key", func(c *qt.C) {
		client, out := newTestClient(c, nil, "")
		client.delete([]string{"delete", "forty-two"})
		c.Assert(out.String(), qt.Contains, invalidCommandMsg)
	})

	c.Run("unreachable target", func(c *qt.C) {
		cfg := DefaultConfig()
		cfg.Target = "http://localhost:1"
		client, out := newTestClient(c, cfg, "")
		client.delete([]string{"delete", "42"})

		c.Assert(out.String(), qt.Contains,
			"Error: Unable to connect to url provided, or you are not logged in. Please try again.")
	})
}

func TestList(t *testing.T) {
	c := qt.New(t)

	c.Run("prints each agency", func(c *qt.C) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"agency_name":"Daily Bugle","url":"http://bugle.example.com","agency_code":"BUG01"}]`))
		}))
		defer ts.Close()

		cfg := DefaultConfig()
		cfg.DirectoryURL = ts.URL
		client, out := newTestClient(c, cfg, "")
		client.list([]string{"list"})

		c.Assert(out.String(), qt.Contains, "Name: Daily Bugle\nURL: http://bugle.example.com\nCode/ID: BUG01")
	})

	c.Run("unreachable directory", func(c *qt.C) {
		cfg := DefaultConfig()
		cfg.DirectoryURL = "http://localhost:1"
		client, out := newTestClient(c, cfg, "")
		client.list([]string{"list"})

		c.Assert(out.String(), qt.Contains,
			"Error: Unable to connect to the directory service. Please try again.")
	})
}
