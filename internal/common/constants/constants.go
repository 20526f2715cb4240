package constants

import "time"

const (
	UsernameMaxLength  = 64
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32
	BcryptDefaultCost  = 12
	LoginDummyPassword = "login-dummy-password"

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAuthHTTPPort       = "8000"
	DefaultAuthRequestTimeout = 5 * time.Second
	DefaultAccessTokenTTL     = 30 * time.Minute

	DefaultMirrorCollection = "users"
	DefaultMirrorRegion     = "us-east-1"
	DefaultMirrorTimeout    = 5 * time.Second

	MirrorBreakerThreshold  = 5
	MirrorBreakerResetAfter = time.Minute

	TokenTypeBearer = "bearer"

	LoggerFileName   = "app.log"
	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
