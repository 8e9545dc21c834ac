package domain

import (
	"strings"
	"time"
)

// Tier classifies an API key for reporting.
type Tier string

const (
	TierFree        Tier = "free"
	TierDevelopment Tier = "development"
	TierEnterprise  Tier = "enterprise"
)

// TierForKey derives the usage tier from the key prefix.
// Pure function: same key always yields the same tier.
func TierForKey(apiKey string) Tier {
	switch {
	case strings.HasPrefix(apiKey, "pk_live_"):
		return TierEnterprise
	case strings.HasPrefix(apiKey, "pk_test_"):
		return TierDevelopment
	default:
		return TierFree
	}
}

// UsageRow is one accumulated (api_key, endpoint, day) bucket.
type UsageRow struct {
	Endpoint      string    `json:"endpoint"`
	UsageDay      time.Time `json:"usage_day"`
	RequestCount  int64     `json:"request_count"`
	DocumentCount int64     `json:"document_count"`
	Tier          Tier      `json:"tier"`
}
