package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mwhite7112/woodpantry-parser/internal/api"
	"github.com/mwhite7112/woodpantry-parser/internal/extract"
	"github.com/mwhite7112/woodpantry-parser/internal/logging"
	"github.com/mwhite7112/woodpantry-parser/internal/service"
)

func main() {
	logging.Setup()

	port := envOrDefault("PORT", "8080")
	model := envOrDefault("GLINER2_MODEL", "fastino/gliner2-base-v1")

	timeout := 30 * time.Second
	if t := os.Getenv("EXTRACT_TIMEOUT"); t != "" {
		secs, err := strconv.Atoi(t)
		if err != nil {
			slog.Error("invalid EXTRACT_TIMEOUT", "error", err)
			os.Exit(1)
		}
		timeout = time.Duration(secs) * time.Second
	}

	// API mode when a key is present, otherwise in-process inference.
	var factory extract.Factory
	switch {
	case os.Getenv("PIONEER_API_KEY") != "":
		baseURL := envOrDefault("PIONEER_API_URL", "https://api.fastino.ai")
		httpClient := &http.Client{Timeout: timeout}
		factory = extract.APIFactory(baseURL, os.Getenv("PIONEER_API_KEY"), model, httpClient)
		slog.Info("using extraction API backend", "base_url", baseURL, "model", model)
	case os.Getenv("MODEL_DIR") != "":
		modelDir := os.Getenv("MODEL_DIR")
		factory = extract.LocalFactory(extract.LocalConfig{
			ModelPath:     filepath.Join(modelDir, "model.onnx"),
			TokenizerPath: filepath.Join(modelDir, "tokenizer.json"),
			OrtSharedLib:  os.Getenv("ORT_SHARED_LIB"),
		})
		slog.Info("using local extraction backend", "model_dir", modelDir)
	default:
		slog.Error("PIONEER_API_KEY or MODEL_DIR is required")
		os.Exit(1)
	}

	cacheExtractor := envOrDefault("EXTRACTOR_CACHE", "false") == "true"
	provider := extract.NewProvider(factory, cacheExtractor)
	defer provider.Close() //nolint:errcheck

	svc := service.New(provider)
	handler := api.NewRouter(svc)

	addr := fmt.Sprintf(":%s", port)
	slog.Info("parser service listening", "addr", addr, "cache_extractor", cacheExtractor)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
