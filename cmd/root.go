package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	globalConfig "github.com/adlytic/meta-ads-mcp/config"
	coreconfig "github.com/adlytic/meta-ads-mcp/core/config"
	coreDB "github.com/adlytic/meta-ads-mcp/core/database"
	domainAdLibrary "github.com/adlytic/meta-ads-mcp/domains/adlibrary"
	domainMedia "github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/adlytic/meta-ads-mcp/infrastructure/mediafetch"
	"github.com/adlytic/meta-ads-mcp/infrastructure/scrapecreators"
	"github.com/adlytic/meta-ads-mcp/integrations/gemini"
	"github.com/adlytic/meta-ads-mcp/integrations/openai"
	"github.com/adlytic/meta-ads-mcp/mediacache"
	"github.com/adlytic/meta-ads-mcp/pkg/utils"
	"github.com/adlytic/meta-ads-mcp/usecase"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	mediaStore *mediacache.Store

	// Usecase
	adLibraryUsecase domainAdLibrary.IAdLibraryUsecase
	mediaUsecase     domainMedia.IMediaUsecase
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Short: "Meta Ads Library research server",
	Long: `Search the Meta Ads Library, download ad creatives and analyze them
with AI. Results are cached on disk so repeated lookups never re-download
or re-analyze the same media.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Initialize flags first, before any subcommands are added
	initFlags()

	// Then initialize other components
	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig loads configuration from environment variables
func initEnvConfig() {
	// Application settings
	if envPort := viper.GetString("app_port"); envPort != "" {
		globalConfig.AppPort = envPort
	}
	if envDebug := viper.GetBool("app_debug"); envDebug {
		globalConfig.AppDebug = envDebug
	}

	// Ad Library API settings
	if envKey := viper.GetString("scrapecreators_api_key"); envKey != "" {
		globalConfig.ScrapeCreatorsAPIKey = envKey
	}
	if envBase := viper.GetString("scrapecreators_base_url"); envBase != "" {
		globalConfig.ScrapeCreatorsBaseURL = strings.TrimRight(envBase, "/")
	}

	// Analyzer settings
	if envProvider := viper.GetString("media_analyzer_provider"); envProvider != "" {
		globalConfig.AnalyzerProvider = strings.ToLower(envProvider)
	}
	if envKey := viper.GetString("gemini_api_key"); envKey != "" {
		globalConfig.GeminiAPIKey = envKey
	}
	if envKey := viper.GetString("openai_api_key"); envKey != "" {
		globalConfig.OpenAIAPIKey = envKey
	}

	// Cache settings
	if envDir := viper.GetString("media_cache_dir"); envDir != "" {
		globalConfig.PathMediaCache = envDir
	}
	if v := viper.GetInt("media_cache_max_age_days"); v > 0 {
		globalConfig.CacheMaxAgeDays = v
	}
	if v := viper.GetInt64("media_cache_max_size_mb"); v > 0 {
		globalConfig.CacheMaxSizeMB = v
	}
}

func initFlags() {
	// Application flags
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppPort,
		"port", "p",
		globalConfig.AppPort,
		"change port number with --port <number> | example: --port=3000",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.AppDebug,
		"debug", "d",
		globalConfig.AppDebug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)

	// Cache flags
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.PathMediaCache,
		"cache-dir", "",
		globalConfig.PathMediaCache,
		`directory for cached ad media --cache-dir <string> | example: --cache-dir="storages/mediacache"`,
	)
	rootCmd.PersistentFlags().IntVarP(
		&globalConfig.CacheMaxAgeDays,
		"cache-max-age-days", "",
		globalConfig.CacheMaxAgeDays,
		"default retention in days for cached media --cache-max-age-days <number> | example: --cache-max-age-days=30",
	)
	rootCmd.PersistentFlags().Int64VarP(
		&globalConfig.CacheMaxSizeMB,
		"cache-max-size-mb", "",
		globalConfig.CacheMaxSizeMB,
		"default size budget in MB for cached media --cache-max-size-mb <number> | example: --cache-max-size-mb=5120",
	)

	// Ad Library API flags
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.ScrapeCreatorsAPIKey,
		"scrapecreators-api-key", "",
		globalConfig.ScrapeCreatorsAPIKey,
		"API key for the ScrapeCreators Ad Library API --scrapecreators-api-key <string>",
	)

	// Analyzer flags
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AnalyzerProvider,
		"analyzer", "",
		globalConfig.AnalyzerProvider,
		`media analysis provider --analyzer <gemini/openai> | example: --analyzer=gemini`,
	)
}

func initApp() {
	if globalConfig.AppDebug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[APP] Failed to load configuration: %v", err)
	}

	// Flags and legacy settings win over plain env defaults.
	cfg.App.Port = globalConfig.AppPort
	cfg.App.Debug = globalConfig.AppDebug
	cfg.Paths.MediaCache = globalConfig.PathMediaCache
	cfg.Cache.MaxAgeDays = globalConfig.CacheMaxAgeDays
	cfg.Cache.MaxSizeMB = globalConfig.CacheMaxSizeMB
	cfg.Analyzer.Provider = globalConfig.AnalyzerProvider
	if globalConfig.ScrapeCreatorsAPIKey != "" {
		cfg.APIKeys.ScrapeCreators = globalConfig.ScrapeCreatorsAPIKey
	}
	if globalConfig.GeminiAPIKey != "" {
		cfg.APIKeys.Gemini = globalConfig.GeminiAPIKey
	}
	if globalConfig.OpenAIAPIKey != "" {
		cfg.APIKeys.OpenAI = globalConfig.OpenAIAPIKey
	}

	if err := utils.EnsureCacheDirectories(cfg.Paths.MediaCache); err != nil {
		logrus.Fatalf("[APP] Failed to prepare cache directories: %v", err)
	}

	db, err := coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[APP] Failed to open database: %v", err)
	}

	ctx := context.Background()

	mediaStore = mediacache.NewStore(cfg.Paths.MediaCache, db)
	if err := mediaStore.Init(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to init media cache: %v", err)
	}

	if cfg.APIKeys.ScrapeCreators == "" {
		logrus.Warn("[APP] SCRAPECREATORS_API_KEY is not set; ad library lookups will fail")
	}

	adsClient := scrapecreators.NewClient(globalConfig.ScrapeCreatorsBaseURL, cfg.APIKeys.ScrapeCreators)
	adLibraryUsecase = usecase.NewAdLibraryService(adsClient)

	fetcher := mediafetch.NewFetcher(
		time.Duration(cfg.Fetch.TimeoutSecs)*time.Second,
		cfg.Fetch.MaxDownloadBytes,
	)

	analyzer := selectAnalyzer(cfg)
	if analyzer == nil {
		logrus.Warn("[APP] No analyzer API key configured; media analysis tools are disabled")
	} else {
		logrus.Infof("[APP] Media analysis enabled via %s", analyzer.Name())
	}

	mediaUsecase = usecase.NewMediaService(mediaStore, fetcher, analyzer, cfg.Cache)
	mediaUsecase.StartBackgroundCleanup(ctx)
}

// selectAnalyzer resolves the configured provider to a concrete analyzer,
// falling back to whichever provider has a key. Returns nil when no key is
// available at all.
func selectAnalyzer(cfg *coreconfig.Config) domainMedia.Analyzer {
	switch cfg.Analyzer.Provider {
	case "openai":
		if cfg.APIKeys.OpenAI != "" {
			return openai.NewAnalyzer(cfg.APIKeys.OpenAI, cfg.Analyzer.OpenAIModel)
		}
		logrus.Warn("[APP] Analyzer provider is openai but OPENAI_API_KEY is empty; trying gemini")
		if cfg.APIKeys.Gemini != "" {
			return gemini.NewAnalyzer(cfg.APIKeys.Gemini, cfg.Analyzer.GeminiModel)
		}
	default:
		if cfg.APIKeys.Gemini != "" {
			return gemini.NewAnalyzer(cfg.APIKeys.Gemini, cfg.Analyzer.GeminiModel)
		}
		if cfg.APIKeys.OpenAI != "" {
			logrus.Warn("[APP] GEMINI_API_KEY is empty; falling back to openai (video analysis unavailable)")
			return openai.NewAnalyzer(cfg.APIKeys.OpenAI, cfg.Analyzer.OpenAIModel)
		}
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of all database connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if sqlDB, err := coreDB.GetSQLDB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.Errorf("[APP] Error closing database: %v", err)
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
