// Command unleash-eval connects to an Unleash server with the configuration given in UNLEASH_*
// environment variables and prints toggle definitions and evaluation results.
//
//	UNLEASH_URL=https://unleash.example.com/api UNLEASH_API_TOKEN=... unleash-eval features
//	unleash-eval enabled new-checkout --user-id 123
//	unleash-eval variant new-checkout --user-id 123 --format json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand(os.Stdout, viper.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
