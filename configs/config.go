package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Midtrans   MidtransConfig
	Email      EmailConfig
	Cloudinary CloudinaryConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"test"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"test"`
	Name     string `envconfig:"POSTGRES_DB" default:"test"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// MidtransConfig holds the Snap gateway endpoint and the server-side key.
// The key authenticates every outbound gateway call and must never appear
// in responses or logs.
type MidtransConfig struct {
	BaseURL   string        `envconfig:"MIDTRANS_API_URL" default:"https://app.sandbox.midtrans.com/snap/v1"`
	ServerKey string        `envconfig:"MIDTRANS_SERVER_KEY"`
	Timeout   time.Duration `envconfig:"MIDTRANS_TIMEOUT" default:"10s"`
}

// CloudinaryConfig holds the signed-upload credentials for product images.
// The API secret signs every upload request and must never reach the client.
type CloudinaryConfig struct {
	BaseURL   string        `envconfig:"CLOUDINARY_API_URL" default:"https://api.cloudinary.com/v1_1"`
	CloudName string        `envconfig:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string        `envconfig:"CLOUDINARY_API_KEY"`
	APISecret string        `envconfig:"CLOUDINARY_API_SECRET"`
	Folder    string        `envconfig:"CLOUDINARY_UPLOAD_FOLDER" default:"techstore"`
	Timeout   time.Duration `envconfig:"CLOUDINARY_TIMEOUT" default:"30s"`
}

type EmailConfig struct {
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	SenderEmail        string `envconfig:"AWS_SENDER_ADDRESS"`
	SupportEmail       string `envconfig:"SUPPORT_EMAIL_ADDRESS"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
