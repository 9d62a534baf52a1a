package newswire

import (
	"time"
)

// Categories and Regions are the short codes every agency in the network
// exchanges on the wire. The long names only ever show up in UIs.
var (
	Categories = []string{"pol", "art", "tech", "trivia"}
	Regions    = []string{"uk", "eu", "w"}
)

const (
	MaxHeadlineLen = 64
	MaxDetailsLen  = 128

	// DateFormat is the wire format for story dates, dd/mm/yyyy.
	DateFormat = "02/01/2006"

	// Wildcard marks an unconstrained filter field in the list query.
	Wildcard = "*"
)

type Story struct {
	ID       int64     `db:"id"`
	Headline string    `db:"headline"`
	Category string    `db:"category"`
	Region   string    `db:"region"`
	AuthorID int64     `db:"author_id"`
	Author   string    `db:"author"`
	Date     time.Time `db:"date"`
	Details  string    `db:"details"`
}

// NewStory builds a story stamped with the current server date. The date is
// set once here and never changes afterwards.
func NewStory(headline, category, region string, authorID int64, details string) *Story {
	return &Story{
		Headline: headline,
		Category: category,
		Region:   region,
		AuthorID: authorID,
		Date:     DateOnly(NowFunc()),
		Details:  details,
	}
}

func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

func ValidRegion(r string) bool {
	for _, reg := range Regions {
		if r == reg {
			return true
		}
	}
	return false
}

// ParseWireDate parses a dd/mm/yyyy date. It rejects inputs that do not
// round-trip back to the same string, so "3/1/2024" is invalid even though
// time.Parse would accept it.
func ParseWireDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(DateFormat) != s {
		return time.Time{}, &time.ParseError{Layout: DateFormat, Value: s, Message: ": does not round-trip"}
	}
	return t, nil
}
