// Package main is the entry point for the digital-composer API server
package main

import (
	"flag"
	"os"

	"github.com/Kingdread/digital-composer/pkg/api"
	"github.com/charmbracelet/log"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "digital-composer", ReportTimestamp: true})
	if lvl, err := log.ParseLevel(*level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unknown log level, using info", "level", *level)
	}

	logger.Infof("Swagger docs available at http://localhost:%d/swagger/index.html", *port)
	if err := api.StartServer(*port, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
