package pgstore

import (
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/hopebrooke/newswire"
)

// newTestStore connects to the database named by NEWSWIRE_TEST_DB_STRING,
// e.g. "user=postgres dbname=newswire_test sslmode=disable password=postgres
// host=127.0.0.1". Tests are skipped when it is unset.
func newTestStore(c *qt.C) *PGStore {
	dbString := os.Getenv("NEWSWIRE_TEST_DB_STRING")
	if dbString == "" {
		c.Skip("NEWSWIRE_TEST_DB_STRING is not set")
	}

	store := New(dbString)
	c.Assert(store.Connect(), qt.IsNil)
	c.Assert(store.EnsureSchema(), qt.IsNil)

	c.Cleanup(func() {
		store.DB().MustExec("TRUNCATE TABLE stories, authors, accounts RESTART IDENTITY CASCADE;")
	})

	return store
}

func TestPGStoreAccounts(t *testing.T) {
	c := qt.New(t)
	store := newTestStore(c)

	account, err := store.CreateAccount("tintin", "hash")
	c.Assert(err, qt.IsNil)
	c.Assert(account.ID, qt.Not(qt.Equals), int64(0))

	found, err := store.FindAccountByUsername("tintin")
	c.Assert(err, qt.IsNil)
	c.Assert(found.Username, qt.Equals, "tintin")
	c.Assert(found.PasswordHash, qt.Equals, "hash")

	_, err = store.FindAccountByUsername("milou")
	c.Assert(err, qt.Equals, newswire.ErrNoRecord)

	author, err := store.AuthorForAccount(account.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(author.Username, qt.Equals, "tintin")
}

func TestPGStoreStories(t *testing.T) {
	c := qt.New(t)
	store := newTestStore(c)

	account, err := store.CreateAccount("tintin", "hash")
	c.Assert(err, qt.IsNil)
	author, err := store.AuthorForAccount(account.ID)
	c.Assert(err, qt.IsNil)

	date := func(s string) time.Time {
		d, err := newswire.ParseWireDate(s)
		c.Assert(err, qt.IsNil)
		return d
	}

	for _, s := range []struct {
		headline, category, region, d string
	}{
		{"vote delayed", "pol", "uk", "01/02/2024"},
		{"gallery opens", "art", "eu", "05/02/2024"},
		{"chip plant", "tech", "uk", "09/02/2024"},
	} {
		story := &newswire.Story{
			Headline: s.headline,
			Category: s.category,
			Region:   s.region,
			AuthorID: author.ID,
			Date:     date(s.d),
			Details:  "details",
		}
		c.Assert(store.InsertStory(story), qt.IsNil)
		c.Assert(story.ID, qt.Not(qt.Equals), int64(0))
	}

	c.Run("list resolves author names through the join", func(c *qt.C) {
		stories, err := store.ListStories(newswire.StoryFilter{})
		c.Assert(err, qt.IsNil)
		c.Assert(stories, qt.HasLen, 3)
		c.Assert(stories[0].Author, qt.Equals, "tintin")
	})

	c.Run("filters conjunctively with a date lower bound", func(c *qt.C) {
		stories, err := store.ListStories(newswire.StoryFilter{
			Region: "uk",
			Since:  date("05/02/2024"),
		})
		c.Assert(err, qt.IsNil)
		c.Assert(stories, qt.HasLen, 1)
		c.Assert(stories[0].Headline, qt.Equals, "chip plant")
		c.Assert(stories[0].Date, qt.Equals, date("09/02/2024"))
	})

	c.Run("find and delete", func(c *qt.C) {
		story, err := store.FindStory(1)
		c.Assert(err, qt.IsNil)
		c.Assert(story.Headline, qt.Equals, "vote delayed")

		c.Assert(store.DeleteStory(1), qt.IsNil)
		_, err = store.FindStory(1)
		c.Assert(err, qt.Equals, newswire.ErrNoRecord)

		c.Assert(store.DeleteStory(1), qt.Equals, newswire.ErrNoRecord)
	})
}
