package config

import (
	"encoding/json"
	"flag"
	"fmt"
)

const HelpMessage = `
Cargolink vehicle tracking service.

Usage:
  tracker [flags]

Flags:
  -config-path  Path to the config yaml file (default "config.yaml")
  -help         Show this message

Configuration is read from the yaml file and overridden by environment
variables (see config.yaml for the full list).
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig dumps the effective configuration with credentials masked.
func PrintConfig(cfg *Config) {
	masked := *cfg
	masked.Database.Password = "****"
	masked.RabbitMQ.Password = "****"
	masked.Routing.GoogleAPIKey = mask(masked.Routing.GoogleAPIKey)
	masked.Geocode.LocationIQapiKey = mask(masked.Geocode.LocationIQapiKey)

	data, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		fmt.Printf("failed to print config: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
