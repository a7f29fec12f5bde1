package di

import "github.com/google/wire"

// SuperSet combines all provider sets for the complete application.
var SuperSet = wire.NewSet(
	ConfigProviders,
	InfrastructureProviders,
	ServiceProviders,
	InterfaceProviders,
	provideContainer,
)

// ConfigProviders provides logging and hot reload.
var ConfigProviders = wire.NewSet(
	provideLogging,
	provideLogger,
	provideConfigManager,
)

// InfrastructureProviders provides storage, observability and the model
// gateways.
var InfrastructureProviders = wire.NewSet(
	provideMetricsCollector,
	provideTracerProvider,
	provideStore,
	provideProviders,
)

// ServiceProviders provides the boardroom services.
var ServiceProviders = wire.NewSet(
	provideMemoryService,
	provideMentionParser,
	provideResponder,
	provideOrchestrator,
)

// InterfaceProviders provides the HTTP surface.
var InterfaceProviders = wire.NewSet(
	ProvideColdStartTracker,
	provideRouter,
)
