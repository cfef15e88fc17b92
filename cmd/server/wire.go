// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"albash_solutions_backend/internal/app"
	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/firebase"
	"albash_solutions_backend/internal/jobs"
	"albash_solutions_backend/internal/listing"
	"albash_solutions_backend/internal/message"
	"albash_solutions_backend/internal/notification"
	"albash_solutions_backend/internal/platform/database"
	platformElasticsearch "albash_solutions_backend/internal/platform/elasticsearch"
	"albash_solutions_backend/internal/platform/logger"
	"albash_solutions_backend/internal/reputation"
	"albash_solutions_backend/internal/shared"
	"albash_solutions_backend/internal/swap"
	"albash_solutions_backend/internal/user"
	"albash_solutions_backend/internal/verification"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		platformElasticsearch.NewClient,
		provideCleanup,

		// Firebase
		firebase.NewService,

		// Identity
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Notifications
		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,

		// Reputation
		reputation.NewGORMRepository,
		reputation.NewService,
		reputation.NewHandler,

		// Listings
		listing.NewGORMRepository,
		listing.NewService,
		wire.Bind(new(listing.Service), new(*listing.ServiceImplementation)),
		listing.NewHandler,

		// Swaps
		swap.NewGORMRepository,
		swap.NewService,
		wire.Bind(new(swap.Service), new(*swap.ServiceImplementation)),
		swap.NewHandler,

		// Messaging
		message.NewGORMRepository,
		message.NewService,
		message.NewHandler,

		// Verification
		verification.NewGORMRepository,
		verification.NewService,
		verification.NewHandler,

		// Jobs
		jobs.NewCounterOfferExpiryJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
