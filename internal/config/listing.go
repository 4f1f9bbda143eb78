package config

import "time"

type Listing struct {
	BaseURL      string        `env:"LISTING_BASE_URL,notEmpty"`
	Token        string        `env:"LISTING_TOKEN" json:"-"`
	SyncInterval time.Duration `env:"LISTING_SYNC_INTERVAL" envDefault:"30s"`
}

type Settlement struct {
	BaseURL string `env:"SETTLEMENT_BASE_URL,notEmpty"`
}
