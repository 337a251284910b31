package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"articleqa/internal/types"
	"articleqa/pkg/config"
	"articleqa/pkg/extractor"
	"articleqa/pkg/fetcher"
	"articleqa/pkg/llm"
	"articleqa/pkg/processor"
	"articleqa/pkg/rag"
	"articleqa/pkg/store"
	"articleqa/server"
)

type options struct {
	configPath string
	apiKey     string
	urls       string
	serve      bool
	addr       string
}

func main() {
	// Best-effort .env load for local development.
	_ = godotenv.Load()

	opts := parseFlags()

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.configPath, "config", "", "Path to config file")
	flag.StringVar(&opts.apiKey, "api-key", "", "Groq API key (secrets file and GROQ_API_KEY take precedence)")
	flag.StringVar(&opts.urls, "urls", "", "Comma-separated article URLs to ingest")
	flag.BoolVar(&opts.serve, "serve", false, "Run the WebSocket server instead of the interactive prompt")
	flag.StringVar(&opts.addr, "addr", ":8080", "Server listen address")
	flag.Parse()

	return opts
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(opts options) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config error: %v", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	apiKey, err := config.ResolveAPIKey(config.DefaultProviders(opts.apiKey)...)
	if err != nil {
		return err
	}

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   cfg.Embedder.Model,
		BaseURL: cfg.Embedder.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      apiKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %w", err)
	}

	index, err := newVectorStore(cfg, embedder)
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %w", err)
	}
	defer index.Close()

	pageFetcher := fetcher.NewWithConfig(fetcher.FetcherConfig{
		Timeout:     time.Duration(cfg.Fetcher.TimeoutSecs) * time.Second,
		RateLimit:   cfg.Fetcher.RateLimit,
		SettleDelay: time.Duration(cfg.Fetcher.SettleDelaySecs) * time.Second,
		UserAgent:   cfg.Fetcher.UserAgent,
	})

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:    cfg.Processor.ChunkSize,
		ChunkOverlap: cfg.Processor.ChunkOverlap,
	})

	pipeline := rag.NewPipeline(pageFetcher, extractor.New(), proc, index)
	engine := rag.NewEngine(index, chatEngine, cfg.Answer.TopK)

	if opts.serve {
		return server.New(pipeline, engine).ListenAndServe(opts.addr)
	}

	ctx := context.Background()

	if opts.urls != "" {
		urls := splitURLs(opts.urls)
		if err := ingest(ctx, pipeline, urls); err != nil {
			return err
		}
	}

	return chatLoop(ctx, engine)
}

// ingest drains the pipeline's event stream to the terminal. The terminal
// event decides the exit status.
func ingest(ctx context.Context, pipeline *rag.Pipeline, urls []string) error {
	color.Blue("\nProcessing %d article(s)...\n", len(urls))

	var failed string
	for event := range pipeline.Ingest(ctx, urls) {
		switch event.Kind {
		case rag.EventWarn:
			color.Yellow("%s", event.Message)
		case rag.EventError:
			color.Red("%s", event.Message)
		case rag.EventFatal:
			color.Red("%s", event.Message)
			failed = event.Message
		case rag.EventComplete:
			color.Green("%s", event.Message)
		default:
			fmt.Println(event.Message)
		}
	}

	if failed != "" {
		return fmt.Errorf("ingestion failed: %s", failed)
	}
	return nil
}

func chatLoop(ctx context.Context, engine *rag.Engine) error {
	color.Cyan("\nAsk questions about your articles (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.ToLower(query) == "exit" {
			break
		}

		spinner := getSpinner("🤖 Thinking...")
		answer, err := engine.Answer(ctx, query)
		spinner.Finish()
		fmt.Print("\r")

		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		assistantPrompt("Assistant: %s\n", answer.Text)
		if len(answer.Sources) > 0 {
			color.Blue("\nSources:\n%s", answer.SourcesList())
			fmt.Println()
		}
	}

	return scanner.Err()
}

func newVectorStore(cfg *config.Config, embedder types.Embedder) (types.VectorIndex, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or database.url)")
	}
	return store.NewWithConfig(store.VectorStoreConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.TableName,
		VectorDim:  cfg.Database.VectorDim,
	}, embedder)
}

func splitURLs(s string) []string {
	var urls []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
