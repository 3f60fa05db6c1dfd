package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrijs2005/evadocs/internal/buildinfo"
	"github.com/dmitrijs2005/evadocs/internal/client/blobstore"
	"github.com/dmitrijs2005/evadocs/internal/client/cli"
	"github.com/dmitrijs2005/evadocs/internal/client/client"
	"github.com/dmitrijs2005/evadocs/internal/client/config"
	"github.com/dmitrijs2005/evadocs/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/evadocs/internal/client/services"
	"github.com/dmitrijs2005/evadocs/internal/client/session"
	"github.com/dmitrijs2005/evadocs/internal/filex"
	"github.com/dmitrijs2005/evadocs/internal/logging"
)

const dbFileName = "evadocs.db"

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	dataDir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	outputDir, err := filex.EnsureDir(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dataDir, dbFileName))
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	manager := session.NewManager(metadata.NewSQLiteRepository(db), session.WithLogger(logger))

	httpClient, err := client.NewHTTPClient(cfg.APIBaseURL, manager,
		client.WithConvertTimeout(cfg.ConvertTimeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	blobs, err := newBlobStore(ctx, cfg, dataDir)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	auth := services.NewAuthService(httpClient, manager, logger)
	docs := newDocumentService(cfg, httpClient, db, manager, blobs, outputDir, logger)
	signer := services.NewSignatureService(httpClient, manager, logger, cfg.Simulation)

	manager.AddWiper(docs)
	manager.AddWiper(httpClient)

	app := cli.NewApp(cfg, auth, docs, signer, manager, logger)
	app.Run(ctx)
	return nil
}

func newBlobStore(ctx context.Context, cfg *config.Config, dataDir string) (blobstore.Store, error) {
	if cfg.BlobStore == config.BlobStoreS3 {
		s3, err := blobstore.NewS3StoreFromConfig(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	fs, err := blobstore.NewFSStore(filepath.Join(dataDir, "blobs"))
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func newDocumentService(cfg *config.Config, c client.Client, db *sql.DB, m *session.Manager,
	blobs blobstore.Store, outputDir string, logger logging.Logger) *services.DocumentService {
	return services.NewDocumentService(c, db, m, blobs,
		services.WithOutputDir(outputDir),
		services.WithHistoryLimit(cfg.HistoryLimit),
		services.WithDocumentLogger(logger),
	)
}
