/*
This command provides an executable version of the storefront.

For the list of command line options, run:

	storefront -help

For details about the registrations and the served responses, please see
the documentation of the root storefront package.
*/
package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/zalando/storefront"
	"github.com/zalando/storefront/config"
)

func main() {
	cfg := config.NewConfig()
	if err := cfg.Parse(); err != nil {
		log.Fatalf("Error processing config: %s", err)
	}

	log.SetLevel(cfg.ApplicationLogLevel)
	log.Fatal(storefront.Run(cfg.ToOptions()))
}
