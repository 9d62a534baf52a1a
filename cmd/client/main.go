package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hopebrooke/newswire/aggregator"
	"github.com/hopebrooke/newswire/cmd"
)

func main() {
	cfg := cmd.DefaultConfig()
	// the client holds no session secret of its own
	cfg.ServerSecret = "unused"
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)

	aggCfg := aggregator.DefaultConfig()
	aggCfg.DirectoryURL = cfg.DirectoryURL
	if cfg.PublicURL != "" {
		aggCfg.Target = cfg.PublicURL
	}

	client, err := aggregator.NewClient(aggCfg, os.Stdin, os.Stdout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot set up client")
	}

	if err := client.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Client exited with an error")
	}
}
