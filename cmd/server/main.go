package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"vocabbie/internal/config"
	"vocabbie/internal/corpus"
	"vocabbie/internal/protocol"
	"vocabbie/internal/session"
	"vocabbie/internal/tyv"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	store, err := corpus.Open(cfg.Corpus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Corpus init error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Printf("[Main] corpus opened (driver=%s, %s words, cache=%s entries)",
		cfg.Corpus.Driver, humanize.Comma(int64(corpus.TotalWords)), humanize.Comma(int64(cfg.Corpus.CacheSize)))

	sessions := session.NewStore(
		time.Duration(cfg.Session.IdleTimeoutSeconds)*time.Second,
		time.Duration(cfg.Session.SweepIntervalSeconds)*time.Second,
	)
	defer sessions.Close()
	log.Printf("[Main] session store started (idle timeout: %s, sweep interval: %s)",
		time.Duration(cfg.Session.IdleTimeoutSeconds)*time.Second,
		time.Duration(cfg.Session.SweepIntervalSeconds)*time.Second)

	lists := tyv.Load()
	log.Printf("[Main] tyv word lists loaded (broad=%d, narrow=%d)", len(lists.Broad), len(lists.Narrow))

	var tyvModel *tyv.Model
	if cfg.Tyv.Enabled {
		log.Printf("[Main] initializing tyv model...")
		m, err := tyv.NewModel(cfg.Tyv, len(lists.Broad), len(lists.Narrow))
		if err != nil {
			log.Printf("[Main] WARNING: tyv model disabled: %v", err)
		} else {
			tyvModel = m
			defer tyvModel.Close()
			log.Printf("[Main] ✓ tyv model ready (%s)", cfg.Tyv.ModelPath)
		}
	} else {
		log.Printf("[Main] tyv disabled in config - recall-tyv sessions will be refused")
	}

	deps := &protocol.Deps{
		Corpus:   store,
		Sessions: sessions,
		TyvLists: lists,
		TyvModel: tyvModel,
	}

	r := protocol.SetupRouter(cfg, deps)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("[Main] starting server on %s%s", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
