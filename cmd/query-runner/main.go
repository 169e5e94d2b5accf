package main

import (
	"context"
	"encoding/json"
	"fmt"
	"insurance-service/internal/app"
	"insurance-service/internal/config"
	"insurance-service/internal/models"
	"insurance-service/internal/services"
	"log/slog"
	"os"
	"strconv"
)

// Lifecycle commands are numbered after the reports and are served over HTTP.
var commandNames = map[int]string{
	13: "customer create/update/deactivate",
	14: "claim create",
	15: "policy issue",
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	n, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %q is not a report number\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if name, ok := commandNames[n]; ok {
		fmt.Fprintf(os.Stderr, "Error: %d (%s) is an interactive command, use the HTTP API\n", n, name)
		os.Exit(2)
	}

	cfg := config.New()
	db, redisClient, err := app.ConnectStores(cfg, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", models.ErrorCode(err), err)
		os.Exit(1)
	}
	defer db.Close()
	defer redisClient.Close()

	svc := app.NewServices(db, redisClient.GetClient(), cfg.StoreTimeout, nil)
	rows, err := svc.Reports.Run(context.Background(), n)
	if err != nil {
		fmt.Println(models.CommandOutcome{Err: err})
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: query-runner <n>")
	for n := 1; n <= len(services.ReportNames); n++ {
		fmt.Fprintf(os.Stderr, "  %2d  %s\n", n, services.ReportNames[n])
	}
}
