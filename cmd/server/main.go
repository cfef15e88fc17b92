// File: cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"albash_solutions_backend/internal/config"
	"albash_solutions_backend/internal/listing"
	"albash_solutions_backend/internal/platform/database"
	platformElasticsearch "albash_solutions_backend/internal/platform/elasticsearch"
	"albash_solutions_backend/internal/platform/logger"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	syncListingsCmd := flag.NewFlagSet("sync-listings", flag.ExitOnError)
	batchSize := syncListingsCmd.Int("batch-size", 100, "Batch size for syncing listings")
	esRefresh := syncListingsCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "sync-listings" {
		syncListingsCmd.Parse(os.Args[2:])
		runSyncCommand(*batchSize, *esRefresh)
		return
	}

	startServer()
}

func runSyncCommand(batchSize int, esRefresh string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
	}
	db, err := database.NewGORM(cfg)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
	}
	defer database.CloseGORMDB(db)

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
	}
	if !esClient.Enabled() {
		appLogger.Fatal("FATAL: Elasticsearch is not configured, ensure ELASTICSEARCH_URL is set.")
	}

	if err := platformElasticsearch.CreateListingsIndexIfNotExists(esClient, appLogger); err != nil {
		appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
	}

	listingRepo := listing.NewGORMRepository(db)
	if err := runListingSync(listingRepo, esClient, appLogger, batchSize, esRefresh); err != nil {
		appLogger.Fatal("FATAL: Listing synchronization failed", zap.Error(err))
	}
	appLogger.Info("Listing synchronization completed successfully.")
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient.Enabled() {
		if err := platformElasticsearch.CreateListingsIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch listings index.", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not configured, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}

// runListingSync performs the batch synchronization of listings to
// Elasticsearch.
func runListingSync(
	listingRepo listing.Repository,
	esClient *platformElasticsearch.ESClientWrapper,
	logger *zap.Logger,
	batchSize int,
	esRefresh string,
) error {
	logger.Info("Starting listing synchronization to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)

	offset := 0
	totalSynced := 0
	totalFailed := 0
	batchNumber := 1

	for {
		listings, err := listingRepo.FindAllForSync(context.Background(), offset, batchSize)
		if err != nil {
			logger.Error("Failed to fetch batch of listings", zap.Error(err), zap.Int("batchNumber", batchNumber))
			return fmt.Errorf("failed to fetch batch %d: %w", batchNumber, err)
		}

		if len(listings) == 0 {
			logger.Info("No more listings to sync.")
			break
		}

		var bulkRequestBody strings.Builder
		currentBatchIDs := make([]string, 0, len(listings))

		for i := range listings {
			l := &listings[i]
			currentBatchIDs = append(currentBatchIDs, l.ID.String())
			docJSON, errDoc := l.ElasticsearchDoc()
			if errDoc != nil {
				logger.Error("Failed to convert listing to Elasticsearch document",
					zap.String("listingID", l.ID.String()),
					zap.Error(errDoc),
				)
				totalFailed++
				continue
			}

			action := fmt.Sprintf(`{ "index" : { "_index" : "%s", "_id" : "%s" } }%s`, platformElasticsearch.ListingsIndexName, l.ID.String(), "\n")
			bulkRequestBody.WriteString(action)
			bulkRequestBody.WriteString(docJSON)
			bulkRequestBody.WriteString("\n")
		}

		if bulkRequestBody.Len() == 0 {
			logger.Info("No documents to index in current batch.", zap.Int("batchNumber", batchNumber))
			offset += len(listings)
			batchNumber++
			continue
		}

		logger.Info("Sending bulk request to Elasticsearch for batch",
			zap.Int("batchNumber", batchNumber),
			zap.Int("documentCount", len(currentBatchIDs)))

		req := esapi.BulkRequest{
			Body:    strings.NewReader(bulkRequestBody.String()),
			Refresh: esRefresh,
		}

		res, errBulk := req.Do(context.Background(), esClient.Client)
		if errBulk != nil {
			logger.Error("Failed to send bulk request to Elasticsearch", zap.Error(errBulk), zap.Int("batchNumber", batchNumber))
			totalFailed += len(currentBatchIDs)
			offset += len(listings)
			batchNumber++
			continue
		}

		batchSynced, batchFailed := parseBulkResponse(res, currentBatchIDs, logger)
		res.Body.Close()

		totalSynced += batchSynced
		totalFailed += batchFailed
		logger.Info("Batch processed.",
			zap.Int("batchNumber", batchNumber),
			zap.Int("syncedInBatch", batchSynced),
			zap.Int("failedInBatch", batchFailed),
		)

		offset += len(listings)
		batchNumber++
	}

	logger.Info("Listing synchronization process finished.",
		zap.Int("totalListingsSyncedSuccessfully", totalSynced),
		zap.Int("totalListingsFailed", totalFailed),
	)
	if totalFailed > 0 {
		return fmt.Errorf("%d listings failed to sync", totalFailed)
	}
	return nil
}

// parseBulkResponse counts synced and failed items in a bulk response.
// Bulk can succeed overall while individual items fail, so item-level
// errors are checked either way.
func parseBulkResponse(res *esapi.Response, batchIDs []string, logger *zap.Logger) (synced, failed int) {
	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		logger.Error("Failed to parse Elasticsearch bulk response body", zap.Error(err))
		return 0, len(batchIDs)
	}

	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			logger.Error("Failed to index document in bulk batch",
				zap.String("listingID", item.Index.ID),
				zap.Any("error", item.Index.Error),
				zap.Int("status", item.Index.Status),
			)
			failed++
		} else {
			synced++
		}
	}
	return synced, failed
}
