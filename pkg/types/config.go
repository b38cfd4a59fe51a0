package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"ngolib"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Sessions
	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"ngolib_session"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"86400"`
	SessionBackend   string `envconfig:"SESSION_BACKEND" default:"redis"`
	SessionDir       string `envconfig:"SESSION_DIR"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	RedisURL           string `envconfig:"REDIS_URL"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"20"`

	// Mail
	SMTPHost      string `envconfig:"SMTP_HOST"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser      string `envconfig:"SMTP_USER"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	MailFrom      string `envconfig:"MAIL_FROM"`
	ContactInbox  string `envconfig:"CONTACT_INBOX"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`

	ResetTokenTTLMin int    `envconfig:"RESET_TOKEN_TTL_MIN" default:"60"`
	CleanupSchedule  string `envconfig:"CLEANUP_SCHEDULE" default:"@hourly"`

	// Payments, optional
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	StripeCurrency  string `envconfig:"STRIPE_CURRENCY" default:"eur"`

	// Profile images go to S3 when a bucket is set, otherwise to the users table
	S3BucketName  string `envconfig:"S3_BUCKET_NAME"`
	S3ImagePrefix string `envconfig:"S3_IMAGE_PREFIX" default:"profile-images"`
}
