package main

import (
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"matchbot/bot"
	"matchbot/config"
	"matchbot/dal"
	"matchbot/scheduler"
)

var (
	configPath = flag.String(
		"config",
		"",
		"Path to a yaml config file.",
	)
	botToken = flag.String(
		"token",
		"",
		"Bot access token. Overrides the config file.",
	)
	guildID = flag.String(
		"guild",
		"",
		"Test guild ID. If not set, slash commands will be registered globally.",
	)
	dbPath = flag.String(
		"dbPath",
		"",
		"SQLite database file path. Overrides the config file.",
	)
)

func loadConfig(log zerolog.Logger) config.Config {
	cfg := config.Default()

	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
		cfg = loaded
	}

	if *botToken != "" {
		cfg.Token = *botToken
	}
	if *guildID != "" {
		cfg.GuildID = *guildID
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if cfg.Token == "" {
		log.Fatal().Msg("bot token must be provided via -token or the config file")
	}

	return cfg
}

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cfg := loadConfig(log)

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	db, err := dal.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	log.Info().Str("path", cfg.DBPath).Msg("connected to database")

	b, err := bot.New(cfg.Token, cfg.GuildID, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start bot")
	}
	defer b.Shutdown(cfg.GuildID)

	sched := scheduler.New(scheduler.Options{
		Store:     dal.Store{DB: db},
		Lookup:    b.LookupRoleMembers,
		RoleNames: b.RoleNames,
		Deliverer: b,
		Now:       time.Now,
		Log:       log,
	})

	ticker := time.NewTicker(cfg.TickInterval.Std())
	done := make(chan bool)
	go sched.Run(ticker, done)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	done <- true
}
