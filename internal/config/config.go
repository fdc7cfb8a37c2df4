package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Template modes. In predefined mode every job renders onto DefaultTemplateKey
// and operators never upload a template.
const (
	TemplatePredefined = "predefined"
	TemplateUpload     = "upload"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	PublicBaseURL  string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	MailBackend    string // "smtp" | "sendgrid" | "console"
	SMTPHost       string
	SMTPPort       string
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	SendgridAPIKey string
	MailSubject    string

	SNSRegion      string
	SNSJobTopicARN string

	AuthProvider            string // "firebase" | "google"
	FirebaseCredentialsFile string
	GoogleClientID          string
	AdminEmails             []string // provisioned with the admin role on first sign-in

	Events             []string
	TemplateMode       string
	DefaultTemplateKey string
	FontPath           string
	GenerationWorkers  int
	MaxTemplateBytes   int64
	MaxRecipientBytes  int64
	DownloadURLTTL     time.Duration
	StampQRCode        bool

	VerifyRatePerMinute int
	AllowedOrigins      []string // CORS allowed origins
	TrustedProxies      []string // IPs/CIDRs whose forwarding headers are believed
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Certificates string
	Jobs         string
	Events       string
	Admins       string
	Uploads      string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "5000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5000"), "/"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Certificates: getEnv("DYNAMO_TABLE_CERTIFICATES", "certificates"),
			Jobs:         getEnv("DYNAMO_TABLE_JOBS", "generation_jobs"),
			Events:       getEnv("DYNAMO_TABLE_EVENTS", "events"),
			Admins:       getEnv("DYNAMO_TABLE_ADMINS", "admins"),
			Uploads:      getEnv("DYNAMO_TABLE_UPLOADS", "recipient_uploads"),
		},
		S3BucketName:      getEnv("S3_BUCKET_NAME", "certportal"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 12)) * time.Hour,

		MailBackend:    getEnv("MAIL_BACKEND", "smtp"),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "1025"),
		SMTPFrom:       getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		MailSubject:    getEnv("MAIL_SUBJECT", "Your Certificate"),

		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		SNSJobTopicARN: getEnv("SNS_JOB_TOPIC_ARN", ""),

		AuthProvider:            getEnv("AUTH_PROVIDER", "firebase"),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		GoogleClientID:          getEnv("GOOGLE_CLIENT_ID", ""),
		AdminEmails:             splitList(strings.ToLower(getEnv("ADMIN_EMAILS", ""))),

		Events:             splitList(getEnv("EVENTS", "CampusToCode,PythonWorkshop,DataScience101")),
		TemplateMode:       getEnv("TEMPLATE_MODE", TemplatePredefined),
		DefaultTemplateKey: getEnv("DEFAULT_TEMPLATE_KEY", "templates/Sample1.png"),
		FontPath:           getEnv("FONT_PATH", ""),
		GenerationWorkers:  getEnvInt("GENERATION_WORKERS", 4),
		MaxTemplateBytes:   int64(getEnvInt("MAX_TEMPLATE_MB", 10)) << 20,
		MaxRecipientBytes:  int64(getEnvInt("MAX_RECIPIENT_MB", 5)) << 20,
		DownloadURLTTL:     time.Duration(getEnvInt("DOWNLOAD_URL_TTL_MINUTES", 60)) * time.Minute,
		StampQRCode:        getEnvBool("STAMP_QR_CODE", true),

		VerifyRatePerMinute: getEnvInt("VERIFY_RATE_PER_MINUTE", 10),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "*")),
		TrustedProxies:      splitList(getEnv("TRUSTED_PROXIES", "")),
	}
}

// TemplateRequired reports whether generate-bulk must carry a template file.
func (c *Config) TemplateRequired() bool {
	return c.TemplateMode == TemplateUpload
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
