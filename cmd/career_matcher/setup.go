package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mertksaa/career-app/internal/config"
	"github.com/mertksaa/career-app/internal/db"
	"github.com/mertksaa/career-app/internal/logging"
	"github.com/mertksaa/career-app/internal/match"
	"github.com/mertksaa/career-app/internal/nlp"
	"github.com/mertksaa/career-app/internal/recommend"
)

// runtime bundles everything a command needs: config, logger, database
// connection, analysis components, and the scoring pipeline.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	database  *db.DB
	embedder  *nlp.GeminiEmbedder
	extractor *nlp.LexiconExtractor
	index     *match.Index
	pipeline  *recommend.Pipeline
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.FromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRuntime wires the full component graph. The caller owns the returned
// runtime and must call Close.
func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if cfg.LexiconPath == "" {
		return nil, fmt.Errorf("skills lexicon is required; set SKILLS_LEXICON or lexicon_path in the config file")
	}

	logger, err := logging.New(logJSON || cfg.LogJSON, verbose || cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	extractor, err := nlp.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills lexicon: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	embedder, err := nlp.NewGeminiEmbedder(ctx, cfg.APIKey, cfg.EmbeddingModel)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	index := match.NewIndex(database, embedder, extractor, logger)
	scorer := match.NewScorer(cfg.ScoringWeights())
	pipeline := recommend.NewPipeline(
		index,
		scorer,
		embedder,
		match.SubstringInferrer{},
		database,
		database,
		cfg.TopK,
		logger,
	)

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		database:  database,
		embedder:  embedder,
		extractor: extractor,
		index:     index,
		pipeline:  pipeline,
	}, nil
}

func (r *runtime) Close() {
	if r.embedder != nil {
		if err := r.embedder.Close(); err != nil {
			r.logger.Warn("failed to close embedder", zap.Error(err))
		}
	}
	if r.database != nil {
		r.database.Close()
	}
	_ = r.logger.Sync()
}
