//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/tair/mediops/internal/config"
)

// InfrastructureSet connects the external dependencies named in the config
var InfrastructureSet = wire.NewSet(
	ProvideDatabase,
	ProvideRedis,
	ProvidePublisher,
	ProvideNotifier,
	ProvideRegistry,
)

// ServiceSet builds the gateway and operator sessions on top of the infrastructure
var ServiceSet = wire.NewSet(
	ProvideGatewayMetrics,
	ProvideGateway,
	ProvideOperatorRepository,
	ProvideSessions,
)

// DeliverySet builds the HTTP surface
var DeliverySet = wire.NewSet(
	ProvideHTTPMetrics,
	ProvideHealth,
	ProvideRateLimiter,
	ProvideHandler,
	ProvideRouter,
	NewServer,
)

// InitializeServer wires the server for cfg
func InitializeServer(cfg *config.Config) (*Server, func(), error) {
	wire.Build(
		InfrastructureSet,
		ServiceSet,
		DeliverySet,
	)
	return nil, nil, nil
}
