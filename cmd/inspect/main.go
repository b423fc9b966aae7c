package main

import (
	"context"
	"flag"
	"fmt"
	"groupchat/internal"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	// INSPECT_COLOURS colors the section headings
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
	// INSPECT_ADDR is the listen address of the html view
	Addr string `envconfig:"INSPECT_ADDR" default:"localhost:8090"`
}

var sections = []string{"group:", "msg:", "user:"}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	prefix := flag.String("prefix", "", "Only dump the keys with this prefix (group:, msg:, user:, idx:)")
	serve := flag.Bool("serve", false, "Serve the html view instead of printing tables")
	flag.Parse()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Read-only: the backend may hold the lock
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if *serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		stats := func() map[string]any {
			return map[string]any{
				"Status": "Read-only",
				"Time":   time.Now().Format(time.RFC822),
			}
		}
		fmt.Printf("Inspector started at http://%s/inspect\n", config.Addr)
		return internal.ServeInspect(ctx, config.Addr, internal.NewInspectHandler(db, nil, stats, sections[0]))
	}

	selected := sections
	if *prefix != "" {
		selected = []string{*prefix}
	}
	for _, p := range selected {
		rows, err := internal.ScanRows(db, p, nil)
		if err != nil {
			return err
		}
		heading := fmt.Sprintf("  ====== %s (%d) ======", strings.TrimSuffix(p, ":"), len(rows))
		if config.Colours {
			heading = color.New(color.BgBlack, color.FgGreen).Render(heading)
		}
		fmt.Println(heading)
		printRows(rows)
	}
	return nil
}

func printRows(rows []internal.InspectRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "ID", "Created at", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, row := range rows {
		table.Append([]string{row.Key, row.Kind, row.ID, row.CreatedAt, row.Detail})
	}
	table.Render()
}
