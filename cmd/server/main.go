// Command server runs the Guardian agent orchestration service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TejasNaik24/GUARDIAN/internal/agentlog"
	"github.com/TejasNaik24/GUARDIAN/internal/agents"
	"github.com/TejasNaik24/GUARDIAN/internal/agents/subagents"
	"github.com/TejasNaik24/GUARDIAN/internal/api"
	"github.com/TejasNaik24/GUARDIAN/internal/config"
	"github.com/TejasNaik24/GUARDIAN/internal/llm"
	"github.com/TejasNaik24/GUARDIAN/internal/rag"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "guardian-server",
		Short: "Medical query agent orchestration server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	agentLog := agentlog.FromZerolog(log)

	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		VisionModel: cfg.LLM.VisionModel,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create llm client")
	}

	embedder, err := rag.NewOllamaEmbedder(rag.OllamaConfig{
		BaseURL:   cfg.Embeddings.BaseURL,
		Model:     cfg.Embeddings.Model,
		Dimension: cfg.Embeddings.Dimension,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create embedder")
	}

	retriever, err := rag.NewMilvusRetriever(context.Background(), rag.MilvusConfig{
		Address:    cfg.Database.Address(),
		Collection: cfg.Database.Collection,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
	}, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to vector store")
	}
	defer retriever.Close()

	registry := agents.NewRegistry()
	registry.Register(subagents.NewSafetyAgent(client, agentLog))
	registry.Register(subagents.NewSymptomsAgent(client, agentLog))
	registry.Register(subagents.NewTriageAgent(client, agentLog))
	registry.Register(subagents.NewFirstAidAgent(client, agentLog))
	registry.Register(subagents.NewPediatricAgent(client, agentLog))
	registry.Register(subagents.NewImageAnalysisAgent(client, agentLog))
	registry.Register(subagents.NewRagLookupAgent(retriever, subagents.RagLookupConfig{
		TopK:                cfg.Retrieval.TopK,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
	}, agentLog))

	orchestrator := agents.NewOrchestrator(
		agents.NewRouter(client, agentLog),
		registry,
		agents.NewSynthesizer(client),
		agentLog,
	)

	server := api.NewServer(api.Config{
		Address: cfg.Server.Address,
		Timeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}, orchestrator, log)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
