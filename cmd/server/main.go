package main

import (
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"shipstream/internal/cache"
	"shipstream/internal/completion"
	"shipstream/internal/completion/anthropic"
	"shipstream/internal/completion/openai"
	"shipstream/internal/config"
	"shipstream/internal/decoder"
	"shipstream/internal/domain"
	"shipstream/internal/extract"
	"shipstream/internal/handler"
	"shipstream/internal/mapper"
	"shipstream/internal/normalize"
	"shipstream/internal/port"
	"shipstream/internal/repository/postgres"
	"shipstream/internal/router"
	"shipstream/internal/service"
	s3storage "shipstream/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerProviders() {
	completion.RegisterProvider("openai", func(cfg *config.CompletionProviderConfig) (port.CompletionClient, error) {
		return openai.NewClient(cfg), nil
	})
	completion.RegisterProvider("anthropic", func(cfg *config.CompletionProviderConfig) (port.CompletionClient, error) {
		return anthropic.NewClient(cfg), nil
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	shipRepo := postgres.NewShipmentRepo(db)

	// Initialize storage (optional archival)
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize completion clients
	registerProviders()
	completionClient, err := buildCompletionClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize completion client: %w", err)
	}

	// Initialize mapping cache
	mappingCache := buildMappingCache(cfg)

	// Initialize extraction pipeline
	dateOrder := normalize.DateOrder(cfg.Ingest.DateOrder)
	heuristic := mapper.NewHeuristicMapper(cfg.Mapping.HeuristicThreshold)

	var aiMapper extract.AIFieldResolver
	var ocr *extract.OCRExtractor
	if completionClient != nil {
		aiMapper = mapper.NewAIMapper(completionClient, mappingCache, cfg.Cache.TTL)
		ocr = extract.NewOCRExtractor(completionClient, dateOrder)
	}

	walker := extract.NewWalker(heuristic, aiMapper, dateOrder)
	decoders := map[domain.FileType]port.SheetDecoder{
		domain.FileTypeXLSX: decoder.NewExcelDecoder(),
		domain.FileTypeCSV:  decoder.NewCSVDecoder(),
	}

	// Initialize services
	ingestSvc := service.NewIngestService(docRepo, shipRepo, storage, decoders, walker, ocr, cfg)
	docSvc := service.NewDocumentService(docRepo, shipRepo, storage, cfg.S3)
	shipSvc := service.NewShipmentService(shipRepo, cfg.Scoring, dateOrder)

	// Initialize handlers
	ingestH := handler.NewIngestHandler(ingestSvc)
	docH := handler.NewDocumentHandler(docSvc)
	shipH := handler.NewShipmentHandler(shipSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, ingestH, docH, shipH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildCompletionClient wires the primary provider and, when configured, a
// secondary provider behind the rate-limit fallback. A missing primary API key
// disables AI mapping and OCR entirely.
func buildCompletionClient(cfg *config.Config) (port.CompletionClient, error) {
	if cfg.Completion.Primary.APIKey == "" {
		log.Println("no completion API key configured; AI mapping and image extraction disabled")
		return nil, nil
	}

	primary, err := completion.NewClient(&cfg.Completion.Primary)
	if err != nil {
		return nil, err
	}

	secondaryCfg := cfg.Completion.SecondaryConfig()
	if secondaryCfg == nil || secondaryCfg.APIKey == "" {
		return primary, nil
	}

	secondary, err := completion.NewClient(secondaryCfg)
	if err != nil {
		return nil, err
	}
	return completion.NewFallbackClient(
		[]port.CompletionClient{primary, secondary},
		[]string{cfg.Completion.Primary.Provider, secondaryCfg.Provider},
	), nil
}

func buildMappingCache(cfg *config.Config) port.MappingCache {
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		return cache.NewRedisCache(client)
	}
	return cache.NewMemoryCache()
}
