package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/var/run/mysqld/mysqld.sock)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	JWTSecret          string `env:"JWT_SECRET,required"`
	AccessTokenMinutes int    `env:"ACCESS_TOKEN_MINUTES" envDefault:"15"`
	RefreshTokenDays   int    `env:"REFRESH_TOKEN_DAYS" envDefault:"7"`

	OfferTTLHours             int `env:"OFFER_TTL_HOURS" envDefault:"72"`
	OrderPaymentDeadlineHours int `env:"ORDER_PAYMENT_DEADLINE_HOURS" envDefault:"48"`

	ExpiredTokenRetentionDays int `env:"EXPIRED_TOKEN_RETENTION_DAYS" envDefault:"30"`
	RevokedTokenRetentionDays int `env:"REVOKED_TOKEN_RETENTION_DAYS" envDefault:"7"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
