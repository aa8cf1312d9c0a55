package main

import (
	"fmt"
	"log"

	"billsage/internal/analysis"
	"billsage/internal/completion"
	"billsage/internal/completion/anthropic"
	"billsage/internal/completion/openai"
	"billsage/internal/config"
	"billsage/internal/handler"
	"billsage/internal/port"
	"billsage/internal/repository/postgres"
	"billsage/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registerProviders()

	client, err := buildCompletionClient(&cfg.Completion)
	if err != nil {
		return fmt.Errorf("failed to initialize completion client: %w", err)
	}

	// A down pricing store degrades analyses instead of blocking startup
	var pricingRepo port.PricingRepository
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		log.Printf("pricing store unavailable, analyses will run without benchmarks: %v", err)
	} else {
		defer db.Close()
		pricingRepo = postgres.NewPricingRepo(db)
	}

	pipeline := analysis.NewPipeline(client, pricingRepo)

	analyzeH := handler.NewAnalyzeHandler(pipeline)
	pricingH := handler.NewPricingHandler(pricingRepo)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(&cfg.CORS, analyzeH, pricingH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func registerProviders() {
	completion.RegisterProvider("openai", func(cfg *config.CompletionProviderConfig) (port.CompletionClient, error) {
		return openai.NewClient(cfg), nil
	})
	completion.RegisterProvider("anthropic", func(cfg *config.CompletionProviderConfig) (port.CompletionClient, error) {
		return anthropic.NewClient(cfg), nil
	})
}

// buildCompletionClient wires the primary provider, wrapping it in a
// fallback chain when a secondary provider is configured.
func buildCompletionClient(cfg *config.CompletionConfig) (port.CompletionClient, error) {
	primary, err := completion.NewClient(&cfg.Primary)
	if err != nil {
		return nil, err
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := completion.NewClient(secondaryCfg)
	if err != nil {
		return nil, err
	}
	return completion.NewFallbackClient(
		[]port.CompletionClient{primary, secondary},
		[]string{cfg.Primary.Provider, secondaryCfg.Provider},
	), nil
}
