package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/stillmind/stillmind/internal/flagx"
	"github.com/stillmind/stillmind/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SyncDelay           timex.Duration `json:"sync_delay"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; when no
// path is given the function is a no-op. Read or unmarshal errors panic.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
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

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.DatabasePath = jc.DatabasePath
	cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	cfg.SyncDelay = time.Duration(jc.SyncDelay.Duration)
}
