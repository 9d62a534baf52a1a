package pgstore

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/hopebrooke/newswire"
)

// schema is applied by EnsureSchema; statements are idempotent so seeds and
// tests can call it freely.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS authors (
	id         BIGSERIAL PRIMARY KEY,
	account_id BIGINT NOT NULL UNIQUE REFERENCES accounts (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS stories (
	id        BIGSERIAL PRIMARY KEY,
	headline  VARCHAR(64) NOT NULL,
	category  VARCHAR(6) NOT NULL,
	region    VARCHAR(2) NOT NULL,
	author_id BIGINT NOT NULL REFERENCES authors (id) ON DELETE CASCADE,
	date      DATE NOT NULL,
	details   VARCHAR(128) NOT NULL
);
`

// A PGStore is responsible of interacting with the storage layer using a
// Postgresql database.
type PGStore struct {
	dbString string
	db       *sqlx.DB
}

// New returns a PGStore configured for a given address string, using the
// "user=postgres dbname=newswire ..." format.
func New(addr string) *PGStore {
	return &PGStore{
		dbString: addr,
	}
}

// Connect establish a connection with the database using the address given
// at initialization.
func (s *PGStore) Connect() error {
	db, err := sqlx.Connect("postgres", s.dbString)
	if err != nil {
		return err
	}

	s.db = db

	return nil
}

// DB returns the existing connection, making it suitable to perform requests
// not already supported by the store interface. If called while not
// connected, it will return nil.
func (s *PGStore) DB() *sqlx.DB {
	return s.db
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *PGStore) EnsureSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// CreateAccount inserts the account and its author row in one transaction.
func (s *PGStore) CreateAccount(username string, passwordHash string) (*newswire.Account, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	account := newswire.Account{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    newswire.NowFunc(),
	}
	err = tx.Get(&account.ID,
		"INSERT INTO accounts (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id",
		account.Username, account.PasswordHash, account.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec("INSERT INTO authors (account_id) VALUES ($1)", account.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *PGStore) FindAccountByUsername(username string) (*newswire.Account, error) {
	account := newswire.Account{}
	err := s.db.Get(&account, "SELECT * FROM accounts WHERE username=$1", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newswire.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *PGStore) AuthorForAccount(accountID int64) (*newswire.Author, error) {
	author := newswire.Author{}
	err := s.db.Get(&author,
		"SELECT authors.*, accounts.username AS username FROM authors JOIN accounts ON authors.account_id = accounts.id WHERE authors.account_id=$1",
		accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newswire.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}

	return &author, nil
}

func (s *PGStore) InsertStory(story *newswire.Story) error {
	var id int64
	err := s.db.Get(&id,
		"INSERT INTO stories (headline, category, region, author_id, date, details) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		story.Headline, story.Category, story.Region, story.AuthorID, story.Date, story.Details)
	if err != nil {
		return err
	}

	story.ID = id

	return nil
}

// ListStories applies the filter conjunctively. Author names come from a
// single join rather than a per-row lookup; the response shape is unchanged.
func (s *PGStore) ListStories(filter newswire.StoryFilter) ([]*newswire.Story, error) {
	q := strings.Builder{}
	q.WriteString("SELECT stories.*, accounts.username AS author FROM stories " +
		"JOIN authors ON stories.author_id = authors.id " +
		"JOIN accounts ON authors.account_id = accounts.id")

	var conds []string
	var args []interface{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, "stories.category = $"+strconv.Itoa(len(args)))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		conds = append(conds, "stories.region = $"+strconv.Itoa(len(args)))
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		conds = append(conds, "stories.date >= $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		q.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	q.WriteString(" ORDER BY stories.id ASC")

	stories := []*newswire.Story{}
	err := s.db.Select(&stories, q.String(), args...)
	if err != nil {
		return nil, err
	}

	// DATE columns come back at midnight in the session's zone; normalize so
	// date comparisons in callers stay exact.
	for _, story := range stories {
		story.Date = newswire.DateOnly(story.Date)
	}

	return stories, nil
}

func (s *PGStore) FindStory(id int64) (*newswire.Story, error) {
	story := newswire.Story{}
	err := s.db.Get(&story,
		"SELECT stories.*, accounts.username AS author FROM stories JOIN authors ON stories.author_id = authors.id JOIN accounts ON authors.account_id = accounts.id WHERE stories.id=$1",
		id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newswire.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}

	story.Date = newswire.DateOnly(story.Date)

	return &story, nil
}

func (s *PGStore) DeleteStory(id int64) error {
	result, err := s.db.Exec("DELETE FROM stories WHERE id=$1", id)
	if err != nil {
		return err
	}

	count, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return newswire.ErrNoRecord
	}

	return nil
}

var _ newswire.Store = (*PGStore)(nil)
