package config

import (
	"encoding/json"
	"os"

	"github.com/dkotelnikov/spotlist/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Values are
// copied into the runtime Config afterwards; empty fields leave the
// defaults in place.
type JsonConfig struct {
	EndpointAddr    string `json:"endpoint_addr"`
	DatabaseDSN     string `json:"database_dsn"`
	S3User          string `json:"s3_user"`
	S3Password      string `json:"s3_password"`
	S3Bucket        string `json:"s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint"`
	S3PublicBaseURL string `json:"s3_public_base_url"`
}

// parseJson overlays Config with values loaded from a JSON file named by the
// -c/-config flags. Absent file: no overlay. Read or unmarshal errors panic;
// the caller decides whether to recover.
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

	if jc.EndpointAddr != "" {
		cfg.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.S3User != "" {
		cfg.S3.User = jc.S3User
	}
	if jc.S3Password != "" {
		cfg.S3.Password = jc.S3Password
	}
	if jc.S3Bucket != "" {
		cfg.S3.Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3.Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3.BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.S3PublicBaseURL != "" {
		cfg.S3.PublicBaseURL = jc.S3PublicBaseURL
	}
}
