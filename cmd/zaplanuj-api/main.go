package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zaplanuj/backend/internal/config"
	"github.com/zaplanuj/backend/internal/database"
	"github.com/zaplanuj/backend/internal/logging"
	"github.com/zaplanuj/backend/internal/meetings"
	"github.com/zaplanuj/backend/internal/server"
	"github.com/zaplanuj/backend/internal/suggestions"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zaplanuj-api",
		Short: "Zaplanuj meeting poll backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("openai-base-url", defaults.GetString("openai.base_url"), "OpenAI-compatible API base URL")
	cmd.PersistentFlags().String("openai-model", defaults.GetString("openai.model"), "Completion model for AI suggestions")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "openai.base_url", "openai-base-url")
	bindFlag(cmd, "openai.model", "openai-model")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	// A local .env is optional; environment variables win either way.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	meetingService, err := meetings.NewService(meetings.ServiceConfig{
		Database: db,
		Clock:    time.Now,
		IDs:      meetings.NewUUIDProvider(),
		Links:    meetings.NewRandomLinkProvider(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	voteService, err := meetings.NewVoteService(meetings.VoteServiceConfig{
		Database: db,
		Clock:    time.Now,
		IDs:      meetings.NewUUIDProvider(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	chatClient := suggestions.NewChatClient(suggestions.ChatClientConfig{
		APIKey:  appConfig.OpenAIAPIKey,
		BaseURL: appConfig.OpenAIBaseURL,
		Model:   appConfig.OpenAIModel,
	})
	if chatClient == nil {
		logger.Info("no OpenAI API key configured, AI suggestions will use fallbacks")
	}
	generator := suggestions.NewGenerator(suggestions.GeneratorConfig{
		Completions: completionClientOrNil(chatClient),
		Clock:       time.Now,
		Logger:      logger,
	})

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Meetings:    meetingService,
		Votes:       voteService,
		Suggestions: generator,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// completionClientOrNil keeps a nil *ChatClient from becoming a non-nil
// interface value inside the generator.
func completionClientOrNil(client *suggestions.ChatClient) suggestions.CompletionClient {
	if client == nil {
		return nil
	}
	return client
}
