package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"problem-navigator/agents"
	"problem-navigator/catalog"
	"problem-navigator/llm"
	"problem-navigator/rag"
	"problem-navigator/search"
)

// Pipeline collaborators, wired once at startup
var (
	llmClient      *llm.GeminiClient
	registry       *catalog.Registry
	knowledgeBase  *rag.KnowledgeBase
	diagnoser      *agents.DiagnosisConsolidator
	analyzer       *agents.MintoAnalyzer
	fastAnalyzer   *agents.FastAnalyzer
	recommender    *agents.FrameworkRecommender
	runner         *agents.Runner
	consolidator   *agents.FrameworkConsolidator
	researcher     *agents.ResearchAgent
	diagnosisCache *DiagnosisCache
)

func main() {
	// Load configuration
	LoadConfig()

	// Wire collaborators
	llmClient = llm.NewGeminiClient(GoogleAIAPIKey)
	registry = catalog.Default()
	knowledgeBase = rag.NewKnowledgeBase(SupabaseURL, SupabaseKey, llmClient)
	searchClient := search.NewClient(TavilyAPIKey)

	diagnoser = agents.NewDiagnosisConsolidator(llmClient)
	analyzer = agents.NewMintoAnalyzer(llmClient)
	fastAnalyzer = agents.NewFastAnalyzer(llmClient)
	recommender = agents.NewFrameworkRecommender(llmClient, registry)
	runner = agents.NewRunner(agents.NewFrameworkExecutor(llmClient, registry))
	consolidator = agents.NewFrameworkConsolidator(llmClient)
	researcher = agents.NewResearchAgent(llmClient, searchClient)
	diagnosisCache = NewDiagnosisCache(DiagnosisCacheTTL)

	// Create Gin router
	router := gin.Default()

	// Request size limit middleware
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodySize)
		c.Next()
	})

	// CORS middleware with dynamic origin validation
	router.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			// In production, use environment-configured origins
			if len(CORSAllowedOrigins) > 0 && CORSAllowedOrigins[0] != "" {
				for _, allowedOrigin := range CORSAllowedOrigins {
					if origin == allowedOrigin {
						return true
					}
				}
				return false
			}
			// In development, allow any localhost/127.0.0.1 origin
			return len(origin) > 0 && (len(origin) >= 16 && origin[:16] == "http://localhost" ||
				len(origin) >= 14 && origin[:14] == "http://127.0.0")
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	// Routes
	router.GET("/", healthCheck)
	router.GET("/api/frameworks", listFrameworksHandler)
	router.GET("/api/conversations", listConversationsHandler)
	router.POST("/api/conversations", createConversationHandler)
	router.GET("/api/conversations/:id", getConversationHandler)
	router.POST("/api/conversations/:id/message", sendMessageHandler)
	router.POST("/api/conversations/:id/diagnose", diagnoseHandler)
	router.POST("/api/conversations/:id/analyze", analyzeHandler)
	router.POST("/api/conversations/:id/recommend", recommendHandler)
	router.POST("/api/conversations/:id/frameworks", executeFrameworksHandler)
	router.POST("/api/conversations/:id/research", researchHandler)

	// Start server
	log.Printf("Starting Problem Navigator backend on port %s...", Port)
	if err := router.Run(":" + Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck returns a simple health check response.
// GET / - Returns service status information.
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "Problem Navigator API",
	})
}

// listFrameworksHandler lists the framework catalog.
// GET /api/frameworks - Returns every catalog entry grouped by id.
func listFrameworksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"frameworks": registry.All(),
		"count":      registry.Len(),
	})
}

// listConversationsHandler lists all conversations with metadata only.
// GET /api/conversations - Returns array of conversation metadata sorted by date.
func listConversationsHandler(c *gin.Context) {
	conversations, err := ListConversations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to list conversations: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// createConversationHandler creates a new conversation.
// POST /api/conversations - Generates a new UUID and creates an empty conversation.
func createConversationHandler(c *gin.Context) {
	conversationID := uuid.New().String()

	conversation, err := CreateConversation(conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to create conversation: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// getConversationHandler gets a specific conversation by ID.
// GET /api/conversations/:id - Returns full conversation including all messages.
func getConversationHandler(c *gin.Context) {
	conversation, ok := loadConversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conversation)
}

// SendMessageRequest is the body for appending a message.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// sendMessageHandler appends a user message to a conversation.
// POST /api/conversations/:id/message - Stores the message and invalidates the
// cached diagnosis. The diagnostic pipeline runs through the dedicated
// endpoints so the UI can trigger each stage independently.
func sendMessageHandler(c *gin.Context) {
	conversationID := c.Param("id")

	var request SendMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	conversation, ok := loadConversation(c)
	if !ok {
		return
	}

	isFirstMessage := len(conversation.Messages) == 0

	if err := AddUserMessage(conversationID, request.Content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to add user message: %v", err),
		})
		return
	}
	diagnosisCache.Invalidate(conversationID)

	// Generate title if first message (run in background)
	if isFirstMessage {
		go func() {
			ctx := context.Background()
			title, err := GenerateConversationTitle(ctx, llmClient, request.Content)
			if err != nil {
				log.Printf("Failed to generate title: %v", err)
				UpdateConversationTitle(conversationID, "New Conversation")
			} else {
				UpdateConversationTitle(conversationID, title)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "stored",
		"message_count": len(conversation.Messages) + 1,
	})
}

// diagnoseHandler runs the four classifiers and consolidation.
// POST /api/conversations/:id/diagnose - Returns the problem profile,
// research advice, and dashboard state. Cached per message count.
func diagnoseHandler(c *gin.Context) {
	conversation, ok := loadConversation(c)
	if !ok {
		return
	}

	diagnosis, cached := diagnoseConversation(c.Request.Context(), conversation)
	c.JSON(http.StatusOK, gin.H{
		"diagnosis": diagnosis,
		"cached":    cached,
	})
}

// analyzeHandler runs the pyramid context analysis.
// POST /api/conversations/:id/analyze - Full Minto decomposition; ?fast=true
// switches to the low-latency variant with the same response shape.
func analyzeHandler(c *gin.Context) {
	conversation, ok := loadConversation(c)
	if !ok {
		return
	}

	ui := cachedUIState(conversation)

	var pyramid *agents.PyramidAnalysis
	if c.Query("fast") == "true" {
		pyramid = fastAnalyzer.Analyze(c.Request.Context(), conversation.Messages, ui)
	} else {
		pyramid = analyzer.Analyze(c.Request.Context(), conversation.Messages, ui)
	}

	c.JSON(http.StatusOK, pyramid)
}

// recommendHandler selects 3-7 frameworks for the current conversation.
// POST /api/conversations/:id/recommend - Runs the fast context analysis to
// detect signals, then the selector.
func recommendHandler(c *gin.Context) {
	conversation, ok := loadConversation(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	diagnosis, _ := diagnoseConversation(ctx, conversation)
	pyramid := fastAnalyzer.Analyze(ctx, conversation.Messages, &diagnosis.UIUpdates)
	recommendations := recommender.Recommend(ctx, pyramid, diagnosis)

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommendations,
		"pyramid":         pyramid,
	})
}

// ExecuteFrameworksRequest is the body for a framework execution run.
type ExecuteFrameworksRequest struct {
	FrameworkIDs []string `json:"framework_ids" binding:"required"`
}

// executeFrameworksHandler runs the selected frameworks in parallel and
// streams results via SSE.
// POST /api/conversations/:id/frameworks - Events: frameworks_start,
// framework_complete (one per framework), consolidation_complete, complete.
// A cancelled request still emits the completed subset with partial set.
func executeFrameworksHandler(c *gin.Context) {
	conversation, ok := loadConversation(c)
	if !ok {
		return
	}

	var request ExecuteFrameworksRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid request: %v", err),
		})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	diagnosis, _ := diagnoseConversation(ctx, conversation)
	pyramid := fastAnalyzer.Analyze(ctx, conversation.Messages, &diagnosis.UIUpdates)

	sendSSEEvent(c, gin.H{"type": "frameworks_start", "count": len(request.FrameworkIDs)})

	batch := runner.ExecuteParallel(ctx, request.FrameworkIDs, pyramid, conversation.Messages, &diagnosis.UIUpdates)
	for i := range batch.Results {
		sendSSEEvent(c, gin.H{"type": "framework_complete", "data": batch.Results[i]})
	}

	// Consolidation uses the pro model even when the run was cut short; the
	// partial flag tells the UI what it is looking at.
	report := consolidator.Consolidate(ctx, batch.Results, pyramid)
	sendSSEEvent(c, gin.H{
		"type":    "consolidation_complete",
		"data":    report,
		"partial": batch.Partial,
	})

	sendSSEEvent(c, gin.H{"type": "complete"})
}

// researchHandler runs the three-phase research workflow.
// POST /api/conversations/:id/research - Returns the full synthesis with the
// ranked citation table.
func researchHandler(c *gin.Context) {
	conversation, ok := loadConversation(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	diagnosis, _ := diagnoseConversation(ctx, conversation)
	synthesis := researcher.Research(ctx, conversation.Messages, diagnosis)

	c.JSON(http.StatusOK, synthesis)
}

// loadConversation resolves the :id param to a stored conversation, writing
// the error response itself when the lookup fails.
func loadConversation(c *gin.Context) (*Conversation, bool) {
	conversationID := c.Param("id")

	conversation, err := GetConversation(conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to get conversation: %v", err),
		})
		return nil, false
	}
	if conversation == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Conversation not found",
		})
		return nil, false
	}
	return conversation, true
}

// diagnoseConversation returns the cached diagnosis when fresh, otherwise
// runs the classifier fan-out with knowledge base grounding.
func diagnoseConversation(ctx context.Context, conversation *Conversation) (*agents.Diagnosis, bool) {
	if diagnosis, ok := diagnosisCache.Get(conversation.ID, len(conversation.Messages)); ok {
		return diagnosis, true
	}

	citations := retrieveCitations(ctx, conversation)
	diagnosis := diagnoser.Diagnose(ctx, conversation.Messages, nil, citations)
	diagnosisCache.Set(conversation.ID, len(conversation.Messages), diagnosis)
	return diagnosis, false
}

// cachedUIState returns the dashboard state from a fresh cached diagnosis, or
// nil when none exists. Analysis works without it.
func cachedUIState(conversation *Conversation) *agents.UIState {
	diagnosis, ok := diagnosisCache.Get(conversation.ID, len(conversation.Messages))
	if !ok {
		return nil
	}
	return &diagnosis.UIUpdates
}

// retrieveCitations pulls knowledge base chunks matching the latest user
// message. Retrieval failures are logged, not surfaced; the pipeline runs
// fine without grounding.
func retrieveCitations(ctx context.Context, conversation *Conversation) []llm.Citation {
	if !knowledgeBase.Configured() {
		return nil
	}

	var lastUser string
	for i := len(conversation.Messages) - 1; i >= 0; i-- {
		if conversation.Messages[i].Role == "user" {
			lastUser = conversation.Messages[i].Content
			break
		}
	}
	if lastUser == "" {
		return nil
	}

	chunks, err := knowledgeBase.RetrieveContext(ctx, lastUser, rag.DefaultTopK, rag.DefaultThreshold)
	if err != nil {
		log.Printf("Knowledge base retrieval failed: %v", err)
		return nil
	}

	citations := make([]llm.Citation, 0, len(chunks))
	for _, chunk := range chunks {
		citations = append(citations, llm.Citation{
			Title:  chunk.Title,
			Text:   chunk.Content,
			Source: chunk.Source,
		})
	}
	return citations
}

// sendSSEEvent sends a Server-Sent Event.
// Marshals data to JSON and writes as SSE format with "data: " prefix.
func sendSSEEvent(c *gin.Context, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal SSE event: %v", err)
		return
	}
	c.Writer.WriteString(fmt.Sprintf("data: %s\n\n", string(jsonData)))
	c.Writer.Flush()
}
