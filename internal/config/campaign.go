package config

import (
	"strings"
	"sync"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type CampaignConfig struct {
	Key            string
	MatchThreshold float64
	StatusStore    string
	SQLitePath     string
	RosterFile     string
}

var (
	campaignConfig *CampaignConfig
	campaignOnce   sync.Once
)

func LoadCampaignConfig() *CampaignConfig {
	campaignOnce.Do(func() {
		campaignConfig = &CampaignConfig{
			Key:            readEnv("CAMPAIGN_KEY", "mailStatus"),
			MatchThreshold: parseFloat("CAMPAIGN_MATCH_THRESHOLD", 75),
			StatusStore:    strings.ToLower(readEnv("STATUS_STORE", StorePostgres)),
			SQLitePath:     readEnv("SQLITE_PATH", "outreach.db"),
			RosterFile:     readEnv("ROSTER_FILE", ""),
		}
	})
	return campaignConfig
}
