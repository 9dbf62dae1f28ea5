package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/jobs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DB       DBConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Risk     RiskConfig
	Delivery DeliveryConfig
	Loyalty  LoyaltyConfig
	Geocode  GeocodeConfig
	Jobs     JobsConfig
}

type DBConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"fulfillment"`
	SslMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN renders the connection string for gorm's postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SslMode)
}

type KafkaConfig struct {
	Brokers           []string `env:"KAFKA_HOST" envSeparator:"," envDefault:"localhost:9092"`
	OrderChangedTopic string   `env:"KAFKA_ORDER_CHANGED_TOPIC" envDefault:"order.status_changed"`
	Producer          string   `env:"KAFKA_PRODUCER" envDefault:"fulfillment"`
}

// RedisConfig configures the job lease store. An empty Addr runs jobs
// without a cross-instance lease.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RiskConfig struct {
	DefaultTrustScore    int             `env:"RISK_DEFAULT_TRUST_SCORE" envDefault:"50"`
	CancellationLookback time.Duration   `env:"RISK_CANCELLATION_LOOKBACK" envDefault:"720h"`
	AutoApproveLow       bool            `env:"RISK_AUTO_APPROVE_LOW" envDefault:"false"`
	LowRiskMinScore      float64         `env:"RISK_LOW_MIN_SCORE" envDefault:"70"`
	MediumRiskMinScore   float64         `env:"RISK_MEDIUM_MIN_SCORE" envDefault:"40"`
	CancellationPenalty  float64         `env:"RISK_CANCELLATION_PENALTY" envDefault:"10"`
	CancellationExponent float64         `env:"RISK_CANCELLATION_EXPONENT" envDefault:"1.5"`
	VerifiedBonus        float64         `env:"RISK_VERIFIED_BONUS" envDefault:"10"`
	FarDistanceKm        float64         `env:"RISK_FAR_DISTANCE_KM" envDefault:"5"`
	DistancePenaltyPerKm float64         `env:"RISK_DISTANCE_PENALTY_PER_KM" envDefault:"2"`
	FraudFlagPenalty     float64         `env:"RISK_FRAUD_FLAG_PENALTY" envDefault:"40"`
	CODLimitDefault      decimal.Decimal `env:"COD_LIMIT_DEFAULT" envDefault:"500000"`
	CODLimitVerified     decimal.Decimal `env:"COD_LIMIT_VERIFIED" envDefault:"1500000"`
	ConfirmationWindow   time.Duration   `env:"COD_CONFIRMATION_WINDOW" envDefault:"30m"`
}

func (c RiskConfig) Settings() commands.RiskSettings {
	return commands.RiskSettings{
		DefaultTrustScore:    c.DefaultTrustScore,
		CancellationLookback: c.CancellationLookback,
		AutoApproveLow:       c.AutoApproveLow,
	}
}

func (c RiskConfig) Policy() services.RiskPolicy {
	return services.RiskPolicy{
		CancellationPenaltyBase:     c.CancellationPenalty,
		CancellationPenaltyExponent: c.CancellationExponent,
		VerifiedBonus:               c.VerifiedBonus,
		FarDistanceKm:               c.FarDistanceKm,
		DistancePenaltyPerKm:        c.DistancePenaltyPerKm,
		FraudFlagPenalty:            c.FraudFlagPenalty,
		LowRiskMinScore:             c.LowRiskMinScore,
		MediumRiskMinScore:          c.MediumRiskMinScore,
		CODLimitDefault:             c.CODLimitDefault,
		CODLimitVerified:            c.CODLimitVerified,
	}
}

type DeliveryConfig struct {
	StoreLat              float64         `env:"STORE_LAT" envDefault:"-7.9666"`
	StoreLng              float64         `env:"STORE_LNG" envDefault:"112.6326"`
	MaxRadiusKm           float64         `env:"MAX_RADIUS_KM" envDefault:"10"`
	FlatFee               decimal.Decimal `env:"DELIVERY_FLAT_FEE" envDefault:"10000"`
	FreeDeliveryThreshold decimal.Decimal `env:"FREE_DELIVERY_THRESHOLD" envDefault:"100000"`
}

func (c DeliveryConfig) Policy() (services.DeliveryPolicy, error) {
	store, err := kernel.NewGeoPoint(c.StoreLat, c.StoreLng)
	if err != nil {
		return services.DeliveryPolicy{}, fmt.Errorf("store location: %w", err)
	}
	return services.DeliveryPolicy{
		Store:                 store,
		MaxRadiusKm:           c.MaxRadiusKm,
		FlatFee:               c.FlatFee,
		FreeDeliveryThreshold: c.FreeDeliveryThreshold,
	}, nil
}

type LoyaltyConfig struct {
	EarnDivisor     decimal.Decimal `env:"EARN_DIVISOR" envDefault:"10000"`
	RedeemValue     decimal.Decimal `env:"REDEEM_VALUE" envDefault:"100"`
	MinRedeemPoints int64           `env:"MIN_REDEEM_POINTS" envDefault:"10"`
}

func (c LoyaltyConfig) Policy() (loyalty.Policy, error) {
	p := loyalty.DefaultPolicy()
	p.EarnDivisor = c.EarnDivisor
	p.RedeemValue = c.RedeemValue
	p.MinRedeemPoints = c.MinRedeemPoints
	if err := p.Validate(); err != nil {
		return loyalty.Policy{}, err
	}
	return p, nil
}

type GeocodeConfig struct {
	BaseURL     string        `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org"`
	UserAgent   string        `env:"GEOCODER_USER_AGENT" envDefault:"fulfillment/1.0"`
	Country     string        `env:"GEOCODER_COUNTRY" envDefault:"id"`
	MaxAttempts int           `env:"GEOCODE_MAX_ATTEMPTS" envDefault:"3"`
	Backoff     time.Duration `env:"GEOCODE_BACKOFF" envDefault:"1m"`
	Timeout     time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"5s"`
}

func (c GeocodeConfig) Settings() commands.GeocodeSettings {
	return commands.GeocodeSettings{
		MaxAttempts: c.MaxAttempts,
		Backoff:     c.Backoff,
		Timeout:     c.Timeout,
	}
}

type JobsConfig struct {
	GeocodeSchedule    string        `env:"GEOCODE_RETRY_SCHEDULE" envDefault:"*/15 * * * * *"`
	AssignmentSchedule string        `env:"COURIER_ASSIGNMENT_SCHEDULE" envDefault:"*/5 * * * * *"`
	ExpirySchedule     string        `env:"EXPIRY_SWEEP_SCHEDULE" envDefault:"0 * * * * *"`
	BatchSize          int           `env:"JOB_BATCH_SIZE" envDefault:"50"`
	LockTTL            time.Duration `env:"JOB_LOCK_TTL" envDefault:"30s"`
}

func (c JobsConfig) Settings() jobs.Settings {
	return jobs.Settings{
		GeocodeSchedule:    c.GeocodeSchedule,
		AssignmentSchedule: c.AssignmentSchedule,
		ExpirySchedule:     c.ExpirySchedule,
		BatchSize:          c.BatchSize,
		LockTTL:            c.LockTTL,
	}
}

// LoadConfig reads .env when present, then the process environment.
// Variables already set in the environment win over .env.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return env.ParseAs[Config]()
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
