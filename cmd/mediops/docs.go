package main

import (
	"github.com/tair/mediops/internal/api"
	"github.com/tair/mediops/internal/config"
)

// registerSwagger publishes the document generated from the route table
// at /swagger/doc.json
func registerSwagger(cfg *config.Config) {
	api.RegisterSwagger(api.API, api.Info{
		Title:       "Mediops API",
		Description: "Pharmacy operations console: consumers, inventory, analytics and emergency requests",
		Version:     cfg.Version,
		Host:        "localhost:" + cfg.HTTP.Port,
		BasePath:    "/",
	})
}
