package main

import (
	"context"
	"flag"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"emergency-report-service/config"
	"emergency-report-service/dispatch"
	"emergency-report-service/handlers"
	"emergency-report-service/location"
	"emergency-report-service/service"
	"emergency-report-service/sms"
	"emergency-report-service/store"
)

var (
	port          = flag.String("port", "8080", "Port to listen on")
	pollInterval  = flag.Duration("poll_interval", 30*time.Second, "Interval between retry sweeps")
	pruneInterval = flag.Duration("prune_interval", 24*time.Hour, "Interval between retention prunes")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment")
	}
	cfg := config.Load()

	st := buildStore(cfg)
	svc := service.NewReportService(st, buildLocationProvider(cfg), buildChannel(cfg), buildDispatcher(cfg))

	router := gin.Default()
	handler := handlers.NewReportHandler(svc, cfg.RetentionDays)
	handler.RegisterRoutes(router)

	go sweepLoop(svc, cfg.RetentionDays)

	log.Infof("Emergency report service listening on :%s, sweeping every %v", *port, *pollInterval)
	if err := router.Run(":" + *port); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}

func buildStore(cfg *config.Config) store.Store {
	switch cfg.StoreBackend {
	case "mysql":
		db, err := store.Connect(cfg)
		if err != nil {
			log.WithError(err).Fatal("Failed to set up MySQL report store")
		}
		log.Info("Using MySQL report store")
		return store.NewMySQLStore(db)
	default:
		log.Infof("Using file report store at %s", cfg.StorePath)
		return store.NewFileStore(cfg.StorePath)
	}
}

func buildLocationProvider(cfg *config.Config) location.Provider {
	if cfg.GeolocationURL != "" {
		return location.NewHTTPProvider(cfg.GeolocationURL)
	}
	if cfg.FixedLatitude != 0 || cfg.FixedLongitude != 0 {
		return &location.FixedProvider{
			Latitude:  cfg.FixedLatitude,
			Longitude: cfg.FixedLongitude,
			Accuracy:  cfg.FixedAccuracy,
		}
	}
	log.Warn("No location provider configured, reports will have no coordinates")
	return location.Unavailable{}
}

func buildChannel(cfg *config.Config) sms.Channel {
	if cfg.SMSGatewayURL == "" {
		log.Warn("SMS_GATEWAY_URL not set, all deliveries will use the manual dispatch fallback")
	}
	return sms.NewGatewayClient(cfg.SMSGatewayURL, cfg.SMSGatewayKey, cfg.SMSSenderID)
}

func buildDispatcher(cfg *config.Config) service.Dispatcher {
	if cfg.AMQPURL == "" {
		return nil
	}
	publisher, err := dispatch.NewPublisher(cfg.AMQPURL, cfg.DispatchExchange, cfg.DispatchRoutingKey)
	if err != nil {
		log.WithError(err).Warn("Manual dispatch queue unavailable, continuing without fallback")
		return nil
	}
	return publisher
}

// sweepLoop periodically retries pending reports and prunes aged-out
// records.
func sweepLoop(svc *service.ReportService, retentionDays int) {
	sweep := time.NewTicker(*pollInterval)
	prune := time.NewTicker(*pruneInterval)
	defer sweep.Stop()
	defer prune.Stop()

	for {
		select {
		case <-sweep.C:
			ctx, cancel := context.WithTimeout(context.Background(), *pollInterval)
			svc.RetrySweep(ctx)
			cancel()
		case <-prune.C:
			svc.PruneOlderThan(retentionDays)
		}
	}
}
