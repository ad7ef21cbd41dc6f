package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Environment    string   `mapstructure:"ENVIRONMENT"`
	Version        string   `mapstructure:"VERSION"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`
	TLSCertFile    string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string   `mapstructure:"TLS_KEY_FILE"`

	DBHost     string `mapstructure:"POSTGRES_HOST"`
	DBPort     string `mapstructure:"POSTGRES_PORT"`
	DBUser     string `mapstructure:"POSTGRES_USER"`
	DBPassword string `mapstructure:"POSTGRES_PASSWORD"`
	DBName     string `mapstructure:"POSTGRES_DB"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`
	MailEditor   string `mapstructure:"MAIL_EDITOR"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`

	// ImageProvider is "cloudinary" or "local".
	ImageProvider       string `mapstructure:"IMAGE_PROVIDER"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	UploadDir           string `mapstructure:"UPLOAD_DIR"`
	UploadBaseURL       string `mapstructure:"UPLOAD_BASE_URL"`

	LimiterEnabled bool    `mapstructure:"LIMITER_ENABLED"`
	LimiterRPS     float64 `mapstructure:"LIMITER_RPS"`
	LimiterBurst   int     `mapstructure:"LIMITER_BURST"`

	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
}

var configDefaults = map[string]any{
	"PORT":                  "8080",
	"ENVIRONMENT":           "development",
	"VERSION":               "1.0.0",
	"TRUSTED_ORIGINS":       "",
	"TLS_CERT_FILE":         "",
	"TLS_KEY_FILE":          "",
	"POSTGRES_HOST":         "localhost",
	"POSTGRES_PORT":         "5432",
	"POSTGRES_USER":         "",
	"POSTGRES_PASSWORD":     "",
	"POSTGRES_DB":           "",
	"MAIL_HOST":             "",
	"MAIL_PORT":             587,
	"MAIL_USER":             "",
	"MAIL_PASSWORD":         "",
	"MAIL_SENDER":           "",
	"MAIL_EDITOR":           "",
	"RABBITMQ_HOST":         "localhost",
	"RABBITMQ_PORT":         "5672",
	"RABBITMQ_USER":         "guest",
	"RABBITMQ_PASSWORD":     "guest",
	"IMAGE_PROVIDER":        "cloudinary",
	"CLOUDINARY_CLOUD_NAME": "",
	"CLOUDINARY_API_KEY":    "",
	"CLOUDINARY_API_SECRET": "",
	"UPLOAD_DIR":            "./uploads",
	"UPLOAD_BASE_URL":       "http://localhost:8080/uploads",
	"LIMITER_ENABLED":       true,
	"LIMITER_RPS":           2,
	"LIMITER_BURST":         4,
	"CACHE_TTL":             "5m",
}

// loadConfig reads the dotenv file at path, if present, and lets environment variables
// override it.
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.DBUser == "" || c.DBName == "" {
		errs = append(errs, errors.New("POSTGRES_USER and POSTGRES_DB must be set"))
	}

	switch c.ImageProvider {
	case "cloudinary":
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set"))
		}
	case "local":
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR must be set"))
		}
	default:
		errs = append(errs, errors.New(`IMAGE_PROVIDER must be "cloudinary" or "local"`))
	}

	if c.Environment == "production" && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set in production"))
	}

	return errors.Join(errs...)
}
