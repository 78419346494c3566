package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/service"
	"github.com/vocdoni/note-selector/storage"
	"github.com/vocdoni/note-selector/web3"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the note selection HTTP API",
	RunE:  runServe,
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	serveCmd.Flags().String("host", envOr("HOST", "0.0.0.0"), "API listen host")
	serveCmd.Flags().Int("port", envInt("PORT", 8080), "API listen port")
	serveCmd.Flags().String("datadir", envOr("DATADIR", filepath.Join(home, ".noteselector")), "data directory")
	serveCmd.Flags().String("dbtype", envOr("DBTYPE", db.TypePebble), "database engine")
	serveCmd.Flags().StringSlice("web3", envList("WEB3"), "web3 endpoints used to read the current block height")
	serveCmd.Flags().String("distributions", envOr("DISTRIBUTIONS", ""), "URL or file with the anonymity distributions to import")
	serveCmd.Flags().Duration("distributions-interval", envDuration("DISTRIBUTIONS_INTERVAL", service.DefaultDistributionInterval), "time between two imports of the anonymity distributions")
}

func runServe(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	host, _ := flags.GetString("host")
	port, _ := flags.GetInt("port")
	dataDir, _ := flags.GetString("datadir")
	dbType, _ := flags.GetString("dbtype")
	endpoints, _ := flags.GetStringSlice("web3")
	distributions, _ := flags.GetString("distributions")
	interval, _ := flags.GetDuration("distributions-interval")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	database, err := metadb.New(dbType, filepath.Join(dataDir, "db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	stg := storage.New(database)
	defer stg.Close()

	var blocks web3.BlockSource
	if len(endpoints) > 0 {
		client, err := web3.New(ctx, endpoints...)
		if err != nil {
			return fmt.Errorf("connect web3 endpoints: %w", err)
		}
		defer client.Close()
		log.Infow("web3 endpoints ready", "chainId", client.ChainID(), "endpoints", len(endpoints))
		blocks = client
	}

	apiService := service.NewAPI(stg, blocks, host, port)
	if err := apiService.Start(ctx); err != nil {
		return fmt.Errorf("start API: %w", err)
	}
	defer apiService.Stop()
	h, p := apiService.HostPort()
	log.Infow("API server started", "host", h, "port", p, "datadir", dataDir)

	if distributions != "" {
		monitor := service.NewDistributionMonitor(service.NewDistributionSource(distributions), stg, interval)
		if err := monitor.Start(ctx); err != nil {
			return fmt.Errorf("start distribution monitor: %w", err)
		}
		defer monitor.Stop()
		log.Infow("distribution monitor started", "source", distributions, "interval", interval.String())
	}

	<-ctx.Done()
	log.Infow("shutting down")
	return nil
}

func envInt(name string, def int) int {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envList(name string) []string {
	v := envOr(name, "")
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func envDuration(name string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
