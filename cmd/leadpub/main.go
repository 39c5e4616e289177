// Package main is a development tool that publishes sample lead insert events
// to the LEADS stream, standing in for the external workflow writer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/DeepakChander/leadmaster-ai-web/internal/config"
	natsclient "github.com/DeepakChander/leadmaster-ai-web/internal/nats"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
)

var sampleRows = []map[string]any{
	{
		"name":    "Radio Coffee & Beer",
		"address": "4204 Menchaca Rd, Austin, TX",
		"phone":   "+1 512 555 0137",
		"website": "https://radiocoffee.example",
		"rating":  4.7,
	},
	{
		"business_name":     "Houndstooth Coffee",
		"formatted_address": "401 Congress Ave, Austin, TX",
		"phone_number":      "+1 512 555 0171",
		"site":              "https://houndstooth.example",
		"score":             4.6,
	},
	{
		"title":    "Fleet Coffee",
		"location": "2427 Webberville Rd, Austin, TX",
		"emails":   "hello@fleet.example",
		"stars":    "4.8",
	},
}

func main() {
	count := flag.Int("count", len(sampleRows), "number of rows to publish")
	interval := flag.Duration("interval", time.Second, "delay between rows")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	client, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer client.Close()

	streams := natsclient.NewStreamManager(client)
	if err := streams.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", zap.Error(err))
		os.Exit(1)
	}

	for i := 0; i < *count; i++ {
		row := sampleRows[i%len(sampleRows)]
		seq, err := streams.PublishInsert(ctx, row)
		if err != nil {
			log.Error("failed to publish row", zap.Error(err))
			os.Exit(1)
		}
		log.Info("published lead row", zap.Uint64("sequence", seq))
		if i < *count-1 {
			time.Sleep(*interval)
		}
	}
}
