package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Configuration constants
var (
	// GoogleAIAPIKey authenticates against the Gemini API
	GoogleAIAPIKey string

	// TavilyAPIKey authenticates web search; empty disables research search
	TavilyAPIKey string

	// SupabaseURL and SupabaseKey locate the knowledge base; empty disables RAG
	SupabaseURL string
	SupabaseKey string

	// Port is the listen port for the HTTP server
	Port = "8010"

	// DataDir is the directory for conversation storage
	DataDir = "data/conversations"

	// Timeout constants
	TitleGenTimeout = 30 * time.Second

	// CORS allowed origins (configurable via environment)
	// In development (empty/default), allows any localhost port
	// In production, set CORS_ALLOWED_ORIGINS environment variable
	CORSAllowedOrigins = []string{}

	// MaxRequestBodySize is the maximum allowed request body size (1MB)
	MaxRequestBodySize int64 = 1 << 20

	// DiagnosisCacheTTL is the time-to-live for cached diagnoses
	DiagnosisCacheTTL = 5 * time.Minute
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file - try multiple locations
	envLocations := []string{
		".env",    // Current directory
		"../.env", // Parent directory
	}

	envLoaded := false
	for _, envPath := range envLocations {
		absPath, err := filepath.Abs(envPath)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			if err := godotenv.Load(absPath); err == nil {
				log.Printf("Loaded .env from: %s", absPath)
				envLoaded = true
				break
			}
		}
	}

	if !envLoaded {
		log.Printf("Warning: .env file not found in any expected location")
	}

	GoogleAIAPIKey = os.Getenv("GOOGLE_AI_API_KEY")
	if GoogleAIAPIKey == "" {
		log.Fatal("GOOGLE_AI_API_KEY environment variable is required")
	}

	// Optional collaborators degrade gracefully when unset
	TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	if TavilyAPIKey == "" {
		log.Println("TAVILY_API_KEY not set - research search disabled")
	}
	SupabaseURL = os.Getenv("SUPABASE_URL")
	SupabaseKey = os.Getenv("SUPABASE_KEY")
	if SupabaseURL == "" || SupabaseKey == "" {
		log.Println("Supabase credentials not set - knowledge base retrieval disabled")
	}

	if port := os.Getenv("PORT"); port != "" {
		Port = port
	}

	// Load CORS origins from environment if provided
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		CORSAllowedOrigins = []string{}
		for _, origin := range filepath.SplitList(corsOrigins) {
			if origin != "" {
				CORSAllowedOrigins = append(CORSAllowedOrigins, origin)
			}
		}
	}

	log.Println("Configuration loaded successfully")
}
