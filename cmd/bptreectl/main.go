// Command bptreectl is a small inspection and demo CLI for the bptree
// engine, following cuemby-warren's single-binary cobra layout
// (cmd/warren/main.go): a root command with persistent
// logging flags and a handful of subcommands.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/bptree"
	"github.com/KilimcininKorOglu/bptree/internal/obslog"
	"github.com/KilimcininKorOglu/bptree/internal/obsmetrics"
	"github.com/KilimcininKorOglu/bptree/ordering"
	"github.com/KilimcininKorOglu/bptree/query"
	"github.com/KilimcininKorOglu/bptree/storage"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "bptreectl",
	Short:   "bptreectl inspects and demos a bptree index",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("bptreectl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().Int("order", 32, "B+ tree order for the demo command")
	rootCmd.PersistentFlags().String("db", "", "bbolt database path (in-memory storage if empty)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	obslog.Init(obslog.Config{Level: obslog.Level(level), JSONOutput: jsonOutput})
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build a small string index (in memory unless --db is set) and run a query against it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd)
	},
}

func runDemo(cmd *cobra.Command) error {
	ctx := context.Background()
	order, _ := cmd.Flags().GetInt("order")

	var backing storage.Strategy[string, string] = storage.NewMemory[string, string]()
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		db, err := storage.OpenBolt[string, string](path)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		backing = db
	}
	cmp := ordering.Natural[string]()
	tree := bptree.New[string, string](backing, cmp, order, bptree.DefaultOptions())
	tree.Instrument(obsmetrics.Collector{})

	if err := tree.Init(ctx); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	sample := map[string]string{
		"alice": "engineering",
		"bob":   "sales",
		"carol": "engineering",
		"dave":  "support",
	}
	for k, v := range sample {
		if err := tree.Insert(ctx, k, v); err != nil {
			return fmt.Errorf("insert %s: %w", k, err)
		}
	}
	if _, err := tree.Commit(ctx, "demo-seed"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	cond := query.NewCondition(query.EqualP("engineering"))
	cursor, err := tree.Where(ctx, cond)
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}
	for cursor.Next() {
		k, v := cursor.Pair()
		fmt.Printf("%s -> %s\n", k, v)
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	stats, err := tree.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	fmt.Printf("height=%d leaves=%d internal=%d keys=%d\n", stats.Height, stats.LeafNodes, stats.InternalNodes, stats.TotalKeys)
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Prometheus metrics on the given address",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		http.Handle("/metrics", promhttp.Handler())
		return http.ListenAndServe(addr, nil)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":9090", "address to serve /metrics on")
}
