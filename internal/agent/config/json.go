package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/fieldreport/internal/flagx"
	"github.com/dmitrijs2005/fieldreport/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	PendingPollInterval timex.Duration `json:"pending_poll_interval"`
	SubmitTimeout       timex.Duration `json:"submit_timeout"`
	PageSize            int            `json:"page_size"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flag. Absent fields keep their current values. Read or
// unmarshal errors panic; configuration is resolved once at startup.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.PendingPollInterval.Duration != 0 {
		cfg.PendingPollInterval = time.Duration(jc.PendingPollInterval.Duration)
	}
	if jc.SubmitTimeout.Duration != 0 {
		cfg.SubmitTimeout = time.Duration(jc.SubmitTimeout.Duration)
	}
	if jc.PageSize != 0 {
		cfg.PageSize = jc.PageSize
	}
}
