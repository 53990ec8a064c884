package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mvdbrink/pubtube/generate"
	"github.com/mvdbrink/pubtube/handler"
	"github.com/mvdbrink/pubtube/publish"
	"github.com/mvdbrink/pubtube/storage"
	"github.com/mvdbrink/pubtube/youtube"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

func main() {
	godotenv.Load()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	var tokens storage.TokenStore
	var attempts storage.AttemptRepository
	if host := getParam("POSTGRES_HOST", ""); host != "" {
		postgres, err := storage.NewPostgres(storage.PostgresInfo{
			Host:     host,
			Port:     getParam("POSTGRES_PORT", "5432"),
			User:     getParam("POSTGRES_USER", "pubtube"),
			Password: getParam("POSTGRES_PASSWORD", "pubtube"),
			Database: getParam("POSTGRES_DB", "pubtube"),
		})
		if err != nil {
			logger.Error("unable to connect to postgres", err)
			os.Exit(1)
		}
		tokens = storage.NewPostgresTokenStore(postgres)
		attempts = storage.NewPostgresAttemptRepository(postgres)
	} else {
		logger.Info("no postgres configured, tokens will not survive a restart")
		tokens = storage.NewMemoryTokenStore()
		attempts = storage.NewMemoryAttemptRepository()
	}

	ytData, err := ytapi.NewService(ctx, option.WithAPIKey(getParam("YOUTUBE_API_KEY", "")))
	if err != nil {
		logger.Error("unable to create youtube service", err)
		os.Exit(1)
	}
	categories := youtube.NewCategoryLister(ytData, getParam("YOUTUBE_REGION", "US"))

	oauthConfig := &oauth2.Config{
		ClientID:     getParam("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getParam("GOOGLE_CLIENT_SECRET", ""),
		Endpoint:     google.Endpoint,
		RedirectURL:  getParam("OAUTH_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			ytapi.YoutubeUploadScope,
		},
	}

	generator := generate.NewOpenAI(generate.OpenAIInfo{
		APIKey:    getParam("OPENAI_API_KEY", ""),
		Model:     getParam("OPENAI_MODEL", ""),
		Footer:    getParam("CHANNEL_FOOTER", ""),
		ExtraTags: splitParam(getParam("EXTRA_TAGS", "")),
	})
	uploader := youtube.NewUploader(oauthConfig, logger)
	controllers := publish.NewSet(generator, categories, uploader, tokens, attempts, logger)

	sessions := handler.NewSessionManager(getParam("SESSION_SECRET", "pubtube-dev-secret"))
	server := handler.NewServer(controllers, categories, oauthConfig, tokens, attempts, sessions, logger)

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", err)
		os.Exit(1)
	}
	go http.ListenAndServe(fmt.Sprintf(":%d", port), server)
	logger.Info("http server started", slog.Int("port", port))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	logger.Info("service stopped")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}

func splitParam(val string) []string {
	if val == "" {
		return nil
	}

	parts := []string{}
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
