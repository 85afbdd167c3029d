package main

// Version information.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// EnvWarehouse names the environment variable used when --warehouse is not given.
const EnvWarehouse = "PAIMON_CLI_WAREHOUSE"

// Valid format values.
var validFormats = map[string]bool{
	"table": true,
	"csv":   true,
	"json":  true,
}
