package config

import (
	"strings"
	"sync"
	"time"
)

const (
	BackendRemote = "remote"
	BackendLocal  = "local"
	BackendGemini = "gemini"
)

// ScreenerConfig points the pipeline and campaign at their remote collaborators.
type ScreenerConfig struct {
	ScreenerURL      string
	MailURL          string
	Timeout          time.Duration
	ExtractorBackend string
	AnalyzerBackend  string
	MaxUploadBytes   int64
}

var (
	screenerConfig *ScreenerConfig
	screenerOnce   sync.Once
)

func LoadScreenerConfig() *ScreenerConfig {
	screenerOnce.Do(func() {
		screenerConfig = &ScreenerConfig{
			ScreenerURL:      strings.TrimRight(readEnv("SCREENER_API_URL", "http://localhost:5000"), "/"),
			MailURL:          strings.TrimRight(readEnv("MAIL_API_URL", "http://localhost:5000"), "/"),
			Timeout:          parseDuration("SERVICE_TIMEOUT", 60*time.Second),
			ExtractorBackend: strings.ToLower(readEnv("EXTRACTOR_BACKEND", BackendRemote)),
			AnalyzerBackend:  strings.ToLower(readEnv("ANALYZER_BACKEND", BackendRemote)),
			MaxUploadBytes:   parseInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
		}
	})
	return screenerConfig
}
