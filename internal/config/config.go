package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"8"`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"storefront"`
	DBPath     string `env:"DBPath" envDefault:"datas/storefront.db"`
	DBPort     string `env:"DBPort" envDefault:"3306"`

	StorageType          string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageLocalDir      string `env:"STORAGE_LOCAL_DIR" envDefault:"datas/media"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"/files"`

	// S3 compatible
	StorageS3Region          string `env:"STORAGE_S3_REGION"`
	StorageS3Bucket          string `env:"STORAGE_S3_BUCKET"`
	StorageS3Prefix          string `env:"STORAGE_S3_PREFIX"`
	StorageS3Endpoint        string `env:"STORAGE_S3_ENDPOINT"`
	StorageS3AccessKeyID     string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	StorageS3SecretAccessKey string `env:"STORAGE_S3_SECRET_ACCESS_KEY"`
	StorageS3SessionToken    string `env:"STORAGE_S3_SESSION_TOKEN"`
	StorageS3ForcePathStyle  bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// Aliyun OSS
	StorageOSSEndpoint        string `env:"STORAGE_OSS_ENDPOINT"`
	StorageOSSBucket          string `env:"STORAGE_OSS_BUCKET"`
	StorageOSSPrefix          string `env:"STORAGE_OSS_PREFIX"`
	StorageOSSAccessKeyID     string `env:"STORAGE_OSS_ACCESS_KEY_ID"`
	StorageOSSAccessKeySecret string `env:"STORAGE_OSS_ACCESS_KEY_SECRET"`

	// Tencent COS
	StorageCOSBucketURL string `env:"STORAGE_COS_BUCKET_URL"`
	StorageCOSPrefix    string `env:"STORAGE_COS_PREFIX"`
	StorageCOSSecretID  string `env:"STORAGE_COS_SECRET_ID"`
	StorageCOSSecretKey string `env:"STORAGE_COS_SECRET_KEY"`

	// Cloudflare R2
	StorageR2AccountID       string `env:"STORAGE_R2_ACCOUNT_ID"`
	StorageR2Endpoint        string `env:"STORAGE_R2_ENDPOINT"`
	StorageR2Jurisdiction    string `env:"STORAGE_R2_JURISDICTION"`
	StorageR2Region          string `env:"STORAGE_R2_REGION" envDefault:"auto"`
	StorageR2Bucket          string `env:"STORAGE_R2_BUCKET"`
	StorageR2Prefix          string `env:"STORAGE_R2_PREFIX"`
	StorageR2AccessKeyID     string `env:"STORAGE_R2_ACCESS_KEY_ID"`
	StorageR2SecretAccessKey string `env:"STORAGE_R2_SECRET_ACCESS_KEY"`

	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"storefront"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"30m"`
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	// Empty address disables the revocation cache; the database stays authoritative.
	RedisAddr     string `env:"REDIS_ADDR" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`

	SuperuserUsername string `env:"SUPERUSER_USERNAME" envDefault:""`
	SuperuserEmail    string `env:"SUPERUSER_EMAIL" envDefault:""`
	SuperuserPassword string `env:"SUPERUSER_PASSWORD" envDefault:""`
}

// ParseConfig loads an optional .env file and then reads the environment.
func ParseConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	var conf Config
	if err := env.Parse(&conf); err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	if conf.JWTRefreshTTL <= conf.JWTAccessTTL {
		logrus.WithFields(logrus.Fields{
			"access_ttl":  conf.JWTAccessTTL.String(),
			"refresh_ttl": conf.JWTRefreshTTL.String(),
		}).Warn("refresh token lifetime should exceed access token lifetime")
	}
	return conf, nil
}

// MaxUploadBytes is the per-file upload limit.
func (c Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 8 << 20
	}
	return c.MaxUploadMB << 20
}
