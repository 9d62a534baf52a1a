package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/hopebrooke/newswire"
	"github.com/hopebrooke/newswire/cmd"
	"github.com/hopebrooke/newswire/pgstore"
	"github.com/hopebrooke/newswire/sessionauth"
)

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)

	// setup database
	pg := pgstore.New(cfg.DatabaseString())

	// setup sessions
	ll := logger.With().Str("component", "sessions").Logger()
	sessionService := sessionauth.New(cfg.ServerSecret, ll)

	// fire the server
	s := newswire.NewServer(&newswire.ServerConfig{Addr: cfg.Addr}, logger, pg, sessionService)

	if cfg.SlackWebhookURL != "" {
		webhookURL := cfg.SlackWebhookURL
		s.AddStoryHook(func(story *newswire.Story) error {
			return slack.PostWebhook(webhookURL, &slack.WebhookMessage{
				Text: fmt.Sprintf("%v posted \"%v\" [%v/%v]",
					story.Author, story.Headline, story.Category, story.Region),
			})
		})
	}

	err = s.Prepare()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot prepare server")
	}

	err = s.Start()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot start server")
	}
}
