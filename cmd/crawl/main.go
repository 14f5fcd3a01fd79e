package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/BaskovKonstantin/EstateFinder/internal/cache"
	"github.com/BaskovKonstantin/EstateFinder/internal/fetch"
	"github.com/BaskovKonstantin/EstateFinder/internal/geo"
	"github.com/BaskovKonstantin/EstateFinder/internal/scoring"
	searchsvc "github.com/BaskovKonstantin/EstateFinder/internal/search/service"
	"github.com/BaskovKonstantin/EstateFinder/internal/search/transport"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
	"github.com/BaskovKonstantin/EstateFinder/platform/logger"
	"github.com/BaskovKonstantin/EstateFinder/platform/validator"
)

// A one-shot crawl from the command line, useful for smoke-testing filters
// without the HTTP server:
//
//	crawl -query "deal_type=sale&region=2&limit=5"
func main() {
	query := flag.String("query", "", "search query string, e.g. deal_type=sale&region=2&limit=5")
	pretty := flag.Bool("pretty", false, "indent the JSON output")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: crawl -query \"deal_type=sale&region=2\" [-pretty]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config", err)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	values, err := url.ParseQuery(*query)
	if err != nil {
		fatal("parse query", err)
	}

	val := validator.New()
	req, err := transport.ParseSearchRequest(values, val)
	if err != nil {
		fatal("invalid search request", err)
	}

	store, err := cache.NewFileStore(cfg)
	if err != nil {
		fatal("init cache", err)
	}

	scorer, err := scoring.New(cfg)
	if err != nil {
		fatal("load scoring profiles", err)
	}

	fetcher := fetch.New(cfg, log)
	geocoder := geo.NewGeocoder(cfg, log)
	pois := geo.NewPOIClient(cfg, log)

	svc := searchsvc.New(cfg, log, val, fetcher, geocoder, pois, scorer, store, nil, nil)

	resp, err := svc.Search(ctx, req)
	if err != nil {
		fatal("search", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		fatal("encode response", err)
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "crawl: %s: %v\n", msg, err)
	os.Exit(1)
}
