// Command camtoken prints the registration token for a camera id, derived
// from the relay's shared secret.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/CamRelay/internal/app"
	"github.com/dkeye/CamRelay/internal/config"
	"github.com/dkeye/CamRelay/internal/domain"
)

func main() {
	configFile := flag.String("config", "", "config file (default config/config.$CONFIG_ENV.yaml)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: camtoken [-config file] <camera-id>...")
		os.Exit(2)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	for _, arg := range flag.Args() {
		id := domain.ClientID(arg)
		if err := id.Validate(); err != nil {
			log.Fatal().Err(err).Str("camera", arg).Msg("invalid camera id")
		}
		fmt.Printf("%s %s\n", id, app.CameraToken(cfg.SharedSecret, id))
	}
}
