// Package memstore is an in-memory Store, used by tests the same way
// fake auth services stand in for real providers: everything behaves like
// the Postgres store, nothing touches the network.
package memstore

import (
	"sync"

	"github.com/hopebrooke/newswire"
)

type MemStore struct {
	mu sync.Mutex

	accounts []*newswire.Account
	authors  []*newswire.Author
	stories  []*newswire.Story

	nextAccountID int64
	nextAuthorID  int64
	nextStoryID   int64
}

var _ newswire.Store = (*MemStore)(nil)

func New() *MemStore {
	return &MemStore{
		nextAccountID: 1,
		nextAuthorID:  1,
		nextStoryID:   1,
	}
}

func (s *MemStore) Connect() error { return nil }

func (s *MemStore) CreateAccount(username string, passwordHash string) (*newswire.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := &newswire.Account{
		ID:           s.nextAccountID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    newswire.NowFunc(),
	}
	s.nextAccountID++
	s.accounts = append(s.accounts, account)

	author := &newswire.Author{
		ID:        s.nextAuthorID,
		AccountID: account.ID,
		Username:  username,
	}
	s.nextAuthorID++
	s.authors = append(s.authors, author)

	copied := *account
	return &copied, nil
}

func (s *MemStore) FindAccountByUsername(username string) (*newswire.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.accounts {
		if account.Username == username {
			copied := *account
			return &copied, nil
		}
	}
	return nil, newswire.ErrNoRecord
}

func (s *MemStore) AuthorForAccount(accountID int64) (*newswire.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, author := range s.authors {
		if author.AccountID == accountID {
			copied := *author
			return &copied, nil
		}
	}
	return nil, newswire.ErrNoRecord
}

func (s *MemStore) InsertStory(story *newswire.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	story.ID = s.nextStoryID
	s.nextStoryID++

	copied := *story
	copied.Author = s.usernameForAuthor(story.AuthorID)
	s.stories = append(s.stories, &copied)

	return nil
}

func (s *MemStore) ListStories(filter newswire.StoryFilter) ([]*newswire.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := []*newswire.Story{}
	for _, story := range s.stories {
		if filter.Category != "" && story.Category != filter.Category {
			continue
		}
		if filter.Region != "" && story.Region != filter.Region {
			continue
		}
		if !filter.Since.IsZero() && story.Date.Before(filter.Since) {
			continue
		}
		copied := *story
		matches = append(matches, &copied)
	}

	return matches, nil
}

func (s *MemStore) FindStory(id int64) (*newswire.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, story := range s.stories {
		if story.ID == id {
			copied := *story
			return &copied, nil
		}
	}
	return nil, newswire.ErrNoRecord
}

func (s *MemStore) DeleteStory(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, story := range s.stories {
		if story.ID == id {
			s.stories = append(s.stories[:i], s.stories[i+1:]...)
			return nil
		}
	}
	return newswire.ErrNoRecord
}

// StoryCount reports how many stories are held; handy for row-count
// invariants in tests.
func (s *MemStore) StoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stories)
}

func (s *MemStore) usernameForAuthor(authorID int64) string {
	for _, author := range s.authors {
		if author.ID == authorID {
			return author.Username
		}
	}
	return ""
}
