package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cambio/internal/amqp"
	"cambio/internal/cli"
	"cambio/internal/report/google"
	"cambio/internal/services"
	"cambio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting cambio-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Initialize Google Sheets client for export operations (optional)
	var sheetsClient *google.Client
	if cfg.GoogleSpreadsheetID != "" {
		var err error
		sheetsClient, err = google.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if sheetsClient == nil {
		// Entries keep accumulating in the export queue until an export
		// target is configured.
		logger.Info("No export target available, idling until shutdown")
		cli.WaitForShutdown(ctx, done)
		return
	}

	exportWorker := worker.NewExportWorker(repo, sheetsClient, sheetsClient, sheetsClient,
		cfg.DisplayCurrency, cfg.ExportBatchSize)

	// On startup, export any pending entries that might have been missed
	logger.Info("Performing startup export check...")
	if err := exportWorker.StartupExportCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
		// Don't exit - continue with normal operation
	}

	// AMQP is the preferred transport; a missing broker degrades to polling
	// the SQLite export queue.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, falling back to queue polling", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - polling the export queue instead")
	}

	if amqpClient != nil {
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			err := amqpClient.Consume(gctx, exportWorker.HandleEntryRecorded, exportWorker.HandleEntryDeleted)
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		})

		// Periodic catch-up for messages lost between broker restarts.
		g.Go(func() error {
			ticker := time.NewTicker(cfg.ExportInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if err := exportWorker.ProcessPendingEntries(gctx); err != nil {
						logger.Error("Periodic export failed", "error", err)
					}
				}
			}
		})

		if err := g.Wait(); err != nil {
			logger.Error("Worker stopped with error", "error", err)
		}
	} else {
		procCfg := services.DefaultExportProcessorConfig()
		procCfg.PollInterval = cfg.ExportInterval
		procCfg.BatchSize = cfg.ExportBatchSize

		processor := services.NewExportProcessor(repo, sheetsClient, sheetsClient, procCfg)
		if err := processor.Start(ctx); err != nil {
			logger.Error("Failed to start export processor", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := processor.Stop(stopCtx); err != nil {
				logger.Error("Export processor stop error", "error", err)
			}
		}()
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
