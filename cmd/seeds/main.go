package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/hopebrooke/newswire"
	"github.com/hopebrooke/newswire/cmd"
	"github.com/hopebrooke/newswire/directory"
	"github.com/hopebrooke/newswire/pgstore"
)

var usernames = []string{"tintin", "milou", "haddock", "castafiore", "tournesol"}

var headlines = []struct {
	headline string
	category string
	region   string
	details  string
}{
	{"Budget vote delayed again", "pol", "uk", "The vote has been pushed back a third time while the whips count heads."},
	{"Retrospective opens at the riverside gallery", "art", "eu", "Four decades of prints and sketches, most never shown publicly before."},
	{"Chip plant breaks ground up north", "tech", "uk", "Construction starts this month; first wafers are promised within two years."},
	{"World's largest pumpkin weighed in", "trivia", "w", "The grower credits a wet spring and a lot of patience."},
	{"Coalition talks stretch into the night", "pol", "eu", "Negotiators emerged after midnight with no agreement and fewer smiles."},
	{"Restored organ plays first notes in a century", "art", "w", "The pipes were found in crates in the cathedral basement."},
	{"Open source release draws record contributors", "tech", "w", "Maintainers say the first week saw more patches than all of last year."},
	{"Village bakes a mile-long sausage roll", "trivia", "uk", "Organizers ran out of tables halfway through and borrowed church pews."},
}

func main() {
	register := flag.Bool("register", false, "register this agency with the directory service")
	flag.Parse()

	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)
	logger.Info().Msg("Seeding database")

	pg := pgstore.New(cfg.DatabaseString())
	err = pg.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("Can't connect to database")
	}

	err = pg.EnsureSchema()
	if err != nil {
		log.Fatal().Err(err).Msg("Can't create schema")
	}

	// every demo account logs in with its own username as password
	var authorIDs []int64
	for _, username := range usernames {
		hash, err := newswire.HashPassword(username)
		if err != nil {
			log.Fatal().Err(err).Msg("Can't hash password")
		}

		account, err := pg.CreateAccount(username, hash)
		if err != nil {
			log.Fatal().Err(err).Msg("Can't create account")
		}

		author, err := pg.AuthorForAccount(account.ID)
		if err != nil {
			log.Fatal().Err(err).Msg("Can't fetch author")
		}
		authorIDs = append(authorIDs, author.ID)
	}

	for i, h := range headlines {
		authorID := authorIDs[i%len(authorIDs)]
		story := newswire.NewStory(h.headline, h.category, h.region, authorID, h.details)
		err = pg.InsertStory(story)
		if err != nil {
			log.Fatal().Err(err).Msg("Can't create story")
		}
	}

	if *register {
		if cfg.DirectoryURL == "" || cfg.PublicURL == "" {
			log.Fatal().Msg("Registration needs directory_url and public_url configured")
		}

		dir := directory.NewClient(cfg.DirectoryURL, nil, logger)
		err = dir.Register(context.Background(), directory.Entry{
			AgencyName: cfg.AgencyName,
			URL:        cfg.PublicURL,
			AgencyCode: cfg.AgencyCode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Can't register agency")
		}
	}
}
