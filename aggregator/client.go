// Package aggregator is the interactive client of the news network. It
// authenticates against a single story service for posting and deleting,
// and fans read queries out across the agencies listed in the central
// directory.
package aggregator

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/hopebrooke/newswire"
	"github.com/hopebrooke/newswire/directory"
)

const invalidCommandMsg = "That is not a valid command. Please try again."

type Config struct {
	// DirectoryURL is the address of the central agency registry.
	DirectoryURL string
	// Target is the story service used by login, logout, post and delete
	// until a login command replaces it.
	Target string
	// SampleSize bounds the fan-out when the directory is large.
	SampleSize int
	// FanOutWorkers bounds how many agencies are queried at once.
	FanOutWorkers int
}

func DefaultConfig() *Config {
	return &Config{
		Target:        "http://localhost:8080",
		SampleSize:    20,
		FanOutWorkers: 5,
	}
}

// A Client holds all the state a command needs: the active target, the
// cookie jar carrying the session, and the directory handle. Commands never
// reach for globals.
type Client struct {
	cfg        *Config
	target     string
	httpClient *http.Client
	directory  *directory.Client
	scanner    *bufio.Scanner
	out        io.Writer
	logger     zerolog.Logger
	rand       *rand.Rand
}

func NewClient(cfg *Config, in io.Reader, out io.Writer, logger zerolog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	// The jar makes the session survive across commands, like a browser
	// would. No timeout override: a slow agency is reported per-agency, not
	// globally.
	httpClient := &http.Client{Jar: jar}

	return &Client{
		cfg:        cfg,
		target:     cfg.Target,
		httpClient: httpClient,
		directory:  directory.NewClient(cfg.DirectoryURL, httpClient, logger),
		scanner:    bufio.NewScanner(in),
		out:        out,
		logger:     logger,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run reads commands until exit/quit or end of input.
func (c *Client) Run() error {
	fmt.Fprintln(c.out, "\nWelcome to the newswire aggregator!")
	c.menu()

	for {
		fmt.Fprint(c.out, "\n>> ")
		if !c.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(c.scanner.Text())
		lower := strings.ToLower(line)
		if lower == "exit" || lower == "quit" {
			break
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch strings.ToLower(args[0]) {
		case "login":
			c.login(args)
		case "logout":
			c.logout(args)
		case "post":
			c.post(args)
		case "news":
			c.news(args)
		case "list":
			c.list(args)
		case "delete":
			c.delete(args)
		case "menu":
			c.menu()
		default:
			c.invalid()
		}
	}

	return c.scanner.Err()
}

func (c *Client) invalid() {
	fmt.Fprintln(c.out, invalidCommandMsg)
}

func (c *Client) menu() {
	fmt.Fprint(c.out, `
Available commands:
  login <url>                           log in to your agency
  logout                                log out
  post                                  post a story
  news [-id=] [-cat=] [-reg=] [-date=]  read stories across the network
  list                                  list registered agencies
  delete <story_key>                    delete one of your agency's stories
  menu                                  show this menu again
  exit / quit                           leave
`)
}

// prompt prints a label and reads the next input line.
func (c *Client) prompt(label string) string {
	fmt.Fprint(c.out, label)
	if !c.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(c.scanner.Text())
}

func (c *Client) login(args []string) {
	if len(args) != 2 {
		c.invalid()
		return
	}

	// the target changes even if the login attempt fails, matching how the
	// rest of the network's clients behave
	c.target = args[1]

	username := c.prompt("Username: ")
	password := c.prompt("Password: ")

	form := url.Values{
		"username": []string{username},
		"password": []string{password},
	}
	resp, err := c.httpClient.PostForm(c.target+"/api/login", form)
	if err != nil {
		c.logger.Debug().Err(err).Msg("login request failed")
		fmt.Fprintf(c.out, "Error: Unable to connect to url provided - %s/api/login. Please try again.\n", c.target)
		return
	}
	defer resp.Body.Close()

	body := readBody(resp.Body)
	if resp.StatusCode == http.StatusOK {
		fmt.Fprintln(c.out, body)
	} else {
		fmt.Fprintln(c.out, "Error: "+body)
	}
}

func (c *Client) logout(args []string) {
	if len(args) != 1 {
		c.invalid()
		return
	}

	resp, err := c.httpClient.Post(c.target+"/api/logout", "", nil)
	if err != nil {
		c.logger.Debug().Err(err).Msg("logout request failed")
		fmt.Fprintf(c.out, "Error: Unable to connect to url provided - %s/api/logout. Please try again.\n", c.target)
		return
	}
	defer resp.Body.Close()

	body := readBody(resp.Body)
	if resp.StatusCode == http.StatusOK {
		fmt.Fprintln(c.out, body)
	} else {
		fmt.Fprintln(c.out, "Error: "+body)
	}
}

func (c *Client) post(args []string) {
	if len(args) != 1 {
		c.invalid()
		return
	}

	fmt.Fprintln(c.out, "Please give the following information...")

	headline := c.prompt("Headline:\n>> ")
	if n := utf8.RuneCountInString(headline); n > newswire.MaxHeadlineLen {
		fmt.Fprintf(c.out, "Your story's headline should be no more than %d characters. This is %d characters.\n",
			newswire.MaxHeadlineLen, n)
		return
	}

	category := c.prompt("Category:\nChoices are: 'pol' (for politics), 'art' (for art), 'tech' (for technology) or 'trivia' (for trivial)\n>> ")
	if !newswire.ValidCategory(category) {
		fmt.Fprintln(c.out, "Category should be: 'pol', 'art', 'tech' or 'trivia'.")
		return
	}

	region := c.prompt("Region:\nChoices are: 'uk' (for the uk), 'eu' (for europe) or 'w' (for world)\n>> ")
	if !newswire.ValidRegion(region) {
		fmt.Fprintln(c.out, "Region should be: 'uk' (for the uk), 'eu' (for europe) or 'w' (for world)")
		return
	}

	details := c.prompt("Details:\n>> ")
	if n := utf8.RuneCountInString(details); n > newswire.MaxDetailsLen {
		fmt.Fprintf(c.out, "Your story's details should be no more than %d characters. This is %d characters.\n",
			newswire.MaxDetailsLen, n)
		return
	}

	// the server re-validates everything above; this is only to spare the
	// user a round-trip
	payload := fmt.Sprintf(`{"headline":%q,"category":%q,"region":%q,"details":%q}`,
		headline, category, region, details)
	resp, err := c.httpClient.Post(c.target+"/api/stories", "application/json", strings.NewReader(payload))
	if err != nil {
		c.logger.Debug().Err(err).Msg("post request failed")
		fmt.Fprintf(c.out, "Error: Unable to connect to the url provided - %s/api/stories. Please try again.\n", c.target)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		fmt.Fprintln(c.out, "Story has been posted successfully.")
	} else {
		fmt.Fprintln(c.out, "Error: "+readBody(resp.Body)+"\nPlease try again")
	}
}

func (c *Client) list(args []string) {
	if len(args) != 1 {
		c.invalid()
		return
	}

	entries, err := c.directory.List(c.ctx())
	if err != nil {
		c.logger.Debug().Err(err).Msg("directory listing failed")
		fmt.Fprintln(c.out, "Error: Unable to connect to the directory service. Please try again.")
		return
	}

	for _, entry := range entries {
		fmt.Fprintf(c.out, "\nName: %s\nURL: %s\nCode/ID: %s\n", entry.AgencyName, entry.URL, entry.AgencyCode)
	}
}

func (c *Client) delete(args []string) {
	if len(args) != 2 || !allDigits(args[1]) {
		c.invalid()
		return
	}

	req, err := http.NewRequest(http.MethodDelete, c.target+"/api/stories/"+args[1], nil)
	if err != nil {
		c.invalid()
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("delete request failed")
		fmt.Fprintln(c.out, "Error: Unable to connect to url provided, or you are not logged in. Please try again.")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		fmt.Fprintln(c.out, "Story successfully deleted.")
	} else {
		fmt.Fprintln(c.out, "Error: "+readBody(resp.Body))
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(b)
}
