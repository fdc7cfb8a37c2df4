package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certportal/internal/application/render"
	"github.com/certportal/internal/config"
	"github.com/certportal/internal/infrastructure/dynamo"
	"github.com/certportal/internal/infrastructure/firebase"
	"github.com/certportal/internal/infrastructure/google"
	jwtinfra "github.com/certportal/internal/infrastructure/jwt"
	"github.com/certportal/internal/infrastructure/mail"
	s3infra "github.com/certportal/internal/infrastructure/s3"
	"github.com/certportal/internal/infrastructure/sns"
	transporthttp "github.com/certportal/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	// Operator bearer tokens are required for every admin route.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	s3Client := s3infra.NewClient(awsCfg, cfg.AWSEndpointURL)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	renderer, err := render.New(cfg.FontPath, cfg.StampQRCode)
	if err != nil {
		log.Fatalf("renderer: %v", err)
	}

	verifier, err := identityVerifier(ctx, cfg)
	if err != nil {
		log.Fatalf("identity verifier: %v", err)
	}

	deps := &transporthttp.Deps{
		CertificateRepo: dynamo.NewCertificateRepo(dynamoClient, cfg.DynamoTables.Certificates),
		JobRepo:         dynamo.NewJobRepo(dynamoClient, cfg.DynamoTables.Jobs),
		UploadRepo:      dynamo.NewUploadRepo(dynamoClient, cfg.DynamoTables.Uploads),
		EventRepo:       dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events),
		AdminRepo:       dynamo.NewAdminRepo(dynamoClient, cfg.DynamoTables.Admins),
		ObjectStore:     s3Store,
		Verifier:        verifier,
		Renderer:        renderer,
		Mailer:          mail.New(cfg),
		Publisher:       sns.NewPublisher(awsCfg, cfg.SNSRegion, cfg.AWSEndpointURL, cfg.SNSJobTopicARN),
		JWTProvider:     jwtProvider,
		Health:          dynamo.NewProbe(dynamoClient, cfg.DynamoTables.Certificates),
	}

	router := transporthttp.NewRouter(cfg, deps)
	if err := router.SeedEvents(ctx, cfg.Events); err != nil {
		log.Printf("WARN: seeding events: %v", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Printf("generation jobs interrupted: %v", err)
	}
	log.Println("Server stopped")
}

// identityVerifier picks the ID-token verifier named by AUTH_PROVIDER.
func identityVerifier(ctx context.Context, cfg *config.Config) (transporthttp.IdentityVerifier, error) {
	switch cfg.AuthProvider {
	case "google":
		return google.NewVerifier(cfg.GoogleClientID), nil
	case "firebase", "":
		return firebase.NewVerifier(ctx, cfg.FirebaseCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}
}
