package newswire

import (
	"errors"
	"time"
)

// ErrNoRecord is returned by stores when a lookup matches nothing.
var ErrNoRecord = errors.New("newswire: record not found")

// A StoryFilter narrows ListStories results. Zero values leave the
// corresponding field unconstrained. Since is a lower bound: stories dated
// on or after it match.
type StoryFilter struct {
	Category string
	Region   string
	Since    time.Time
}

type Store interface {
	Connect() error
	CreateAccount(username string, passwordHash string) (*Account, error)
	FindAccountByUsername(username string) (*Account, error)
	AuthorForAccount(accountID int64) (*Author, error)
	InsertStory(story *Story) error
	ListStories(filter StoryFilter) ([]*Story, error)
	FindStory(id int64) (*Story, error)
	DeleteStory(id int64) error
}
