package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/config"
	"github.com/flatfly/flatfly-api/internal/handlers"
	"github.com/flatfly/flatfly-api/internal/imaging/vips"
	"github.com/flatfly/flatfly-api/internal/mail"
	"github.com/flatfly/flatfly-api/internal/server"
	"github.com/flatfly/flatfly-api/internal/storage"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.Load())
		},
	}
}

func objectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.BucketName == "" {
		log.Println("BUCKET_NAME not set, keeping uploads in memory")
		return storage.NewMemory(cfg.PublicURL), nil
	}
	return storage.NewS3(ctx, storage.S3Options{
		AccountID:       cfg.AccountID,
		AccessKeyID:     cfg.AccessKeyID,
		AccessKeySecret: cfg.AccessKeySecret,
		Bucket:          cfg.BucketName,
		PublicURL:       cfg.PublicURL,
		Timeout:         cfg.StorageTimeout,
	})
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}

	// Session store shared with gothic's OAuth state
	cookies := auth.NewCookieStore(cfg.SessionSecret, cfg.SecureCookies)
	gothic.Store = cookies

	// OAUTH
	provider := google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallbackURL, "email", "profile")
	provider.HTTPClient = &http.Client{Timeout: cfg.OAuthTimeout}
	goth.UseProviders(provider)

	// Database connection
	db, err := store.Open(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	objects, err := objectStore(ctx, cfg)
	if err != nil {
		return err
	}

	opts := handlers.Options{
		Store:    store.New(db),
		Sessions: auth.NewSessions(cookies),
		Reset:    auth.NewResetTokens(cfg.SessionSecret, cfg.ResetTokenTTL),
		Objects:  objects,
		Images:   vips.New(),
		Mail: mail.NewSMTP(mail.SMTPOptions{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
			Timeout:  cfg.SMTPTimeout,
		}),
		Google:         handlers.GothicFlow{Provider: provider.Name()},
		GoogleToken:    auth.NewGoogleVerifier(ctx, cfg.GoogleKey),
		ContactEmail:   cfg.ContactEmail,
		FrontendURL:    cfg.FrontendURL,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}
	if cfg.AppleClientID != "" {
		opts.AppleToken = auth.NewAppleVerifier(ctx, cfg.AppleClientID)
	}
	if opts.ContactEmail == "" {
		opts.ContactEmail = cfg.FromEmail
	}
	h := handlers.New(opts)

	router := server.NewRouter(h, opts.Sessions, server.RouterOptions{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		StaticDir:          cfg.StaticDir,
		TemplateDir:        cfg.TemplateDir,
	})
	return server.Serve(ctx, ":"+cfg.Port, router)
}
