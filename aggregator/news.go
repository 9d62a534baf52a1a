package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/hopebrooke/newswire"
	"github.com/hopebrooke/newswire/directory"
)

// newsQuery is the parsed form of the optional news flags.
type newsQuery struct {
	code     string
	category string
	region   string
	date     string
}

// wireStory is one story as agencies serve it. Decoding goes through
// mapstructure so missing keys can be told apart from empty values.
type wireStory struct {
	Key      string `mapstructure:"key"`
	Headline string `mapstructure:"headline"`
	Category string `mapstructure:"story_cat"`
	Region   string `mapstructure:"story_region"`
	Author   string `mapstructure:"author"`
	Date     string `mapstructure:"story_date"`
	Details  string `mapstructure:"story_details"`
}

func (c *Client) ctx() context.Context {
	return context.Background()
}

// news fetches stories across the network. Agencies are queried in
// parallel but reported in selection order, and one broken agency never
// hides the others' stories.
func (c *Client) news(args []string) {
	query, ok := c.parseNewsArgs(args)
	if !ok {
		return
	}

	entries, err := c.directory.List(c.ctx())
	if err != nil {
		c.logger.Debug().Err(err).Msg("directory listing failed")
		fmt.Fprintln(c.out, "Error: Unable to connect to the directory service. Please try again.")
		return
	}

	selected := c.selectAgencies(entries, query.code)
	if len(selected) == 0 {
		fmt.Fprintln(c.out, "No agencies found. Check that any id provided is a valid agency code.")
		return
	}

	params := url.Values{
		"story_cat":    []string{query.category},
		"story_region": []string{query.region},
		"story_date":   []string{query.date},
	}.Encode()

	reports := make([]string, len(selected))
	sem := make(chan struct{}, c.cfg.FanOutWorkers)
	var wg sync.WaitGroup
	for i := range selected {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			reports[i] = c.agencyReport(selected[i], params)
		}(i)
	}
	wg.Wait()

	for _, report := range reports {
		fmt.Fprint(c.out, report)
	}
}

// parseNewsArgs reads the optional -id=, -cat=, -reg= and -date= flags,
// defaulting each to the wildcard.
func (c *Client) parseNewsArgs(args []string) (newsQuery, bool) {
	query := newsQuery{
		code:     newswire.Wildcard,
		category: newswire.Wildcard,
		region:   newswire.Wildcard,
		date:     newswire.Wildcard,
	}

	if len(args) > 5 {
		c.invalid()
		return query, false
	}

	for _, arg := range args[1:] {
		switch {
		case strings.HasPrefix(arg, "-id="):
			query.code = strings.TrimPrefix(arg, "-id=")
		case strings.HasPrefix(arg, "-cat="):
			query.category = strings.TrimPrefix(arg, "-cat=")
		case strings.HasPrefix(arg, "-reg="):
			query.region = strings.TrimPrefix(arg, "-reg=")
		case strings.HasPrefix(arg, "-date="):
			query.date = strings.TrimPrefix(arg, "-date=")
		default:
			c.invalid()
			return query, false
		}
	}

	if query.category != newswire.Wildcard && !newswire.ValidCategory(query.category) {
		fmt.Fprintln(c.out, "Category should be: 'pol', 'art', 'tech' or 'trivia'.")
		return query, false
	}
	if query.region != newswire.Wildcard && !newswire.ValidRegion(query.region) {
		fmt.Fprintln(c.out, "Region should be: 'uk' (for the uk), 'eu' (for europe) or 'w' (for world)")
		return query, false
	}
	if query.date != newswire.Wildcard {
		if _, err := newswire.ParseWireDate(query.date); err != nil {
			fmt.Fprintln(c.out, "That is not a valid date. Please try again.")
			return query, false
		}
	}

	return query, true
}

// selectAgencies narrows the directory listing to the requested code, or
// samples the network when it is larger than the fan-out cap.
func (c *Client) selectAgencies(entries []directory.Entry, code string) []directory.Entry {
	if code != newswire.Wildcard {
		var matches []directory.Entry
		for _, entry := range entries {
			if entry.AgencyCode == code {
				matches = append(matches, entry)
			}
		}
		return matches
	}

	if len(entries) > c.cfg.SampleSize {
		sampled := make([]directory.Entry, 0, c.cfg.SampleSize)
		for _, i := range c.rand.Perm(len(entries))[:c.cfg.SampleSize] {
			sampled = append(sampled, entries[i])
		}
		return sampled
	}

	return entries
}

// agencyReport queries one agency and renders its section of the output.
// Failures stay local to the section.
func (c *Client) agencyReport(agency directory.Entry, params string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\n-------------------------- From %s: --------------------------\n", agency.AgencyName)

	target := strings.TrimSuffix(agency.URL, "/") + "/api/stories?" + params
	resp, err := c.httpClient.Get(target)
	if err != nil {
		c.logger.Debug().Err(err).Str("agency", agency.AgencyCode).Msg("agency unreachable")
		fmt.Fprintf(&b, "Error collecting stories from url: %v\n", err)
		return b.String()
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		stories, err := decodeStories(resp.Body)
		if err != nil {
			c.logger.Debug().Err(err).Str("agency", agency.AgencyCode).Msg("bad story payload")
			fmt.Fprintln(&b, "Error: This news agency hasn't returned the appropriate format.")
			return b.String()
		}
		for _, story := range stories {
			fmt.Fprintf(&b, "\n%s (id: %s)\n", story.Headline, story.Key)
			fmt.Fprintf(&b, "By: %s, %s\n", story.Author, story.Date)
			fmt.Fprintf(&b, "Category: %s, Region: %s\n", story.Category, story.Region)
			fmt.Fprintln(&b, story.Details)
		}
	case http.StatusNotFound:
		fmt.Fprintln(&b, "No news stories were found at this agency.")
	default:
		fmt.Fprintln(&b, "Error: Could not get stories from this agency")
	}

	return b.String()
}

// decodeStories parses an agency response strictly: every story key must be
// present and a string. Agencies run heterogeneous software, so a missing
// key is treated as a format error rather than a zero value.
func decodeStories(r io.Reader) ([]wireStory, error) {
	var envelope struct {
		Stories []map[string]interface{} `json:"stories"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.Stories == nil {
		return nil, errors.New("payload has no stories list")
	}

	stories := make([]wireStory, 0, len(envelope.Stories))
	for _, item := range envelope.Stories {
		var story wireStory
		var md mapstructure.Metadata
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:   &story,
			Metadata: &md,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(item); err != nil {
			return nil, err
		}
		if len(md.Unset) > 0 {
			return nil, fmt.Errorf("story is missing keys: %v", md.Unset)
		}
		stories = append(stories, story)
	}

	return stories, nil
}
