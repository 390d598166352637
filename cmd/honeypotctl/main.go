// Command honeypotctl is the operator CLI for inspecting and maintaining
// a running honeypot's store: querying stats, running the rollup
// backfill, and forcing a specific day's aggregation.
package main

import (
    "fmt"
    "os"
    "strconv"

    "github.com/fatih/color"
    "github.com/olekukonko/tablewriter"
    "github.com/spf13/cobra"

    "github.com/hamzaKhattat/honeypot/internal/config"
    "github.com/hamzaKhattat/honeypot/internal/stats"
    "github.com/hamzaKhattat/honeypot/internal/store"
)

var configFile string

func main() {
    root := &cobra.Command{
        Use:   "honeypotctl",
        Short: "Operate a honeypot deployment's store",
    }
    root.PersistentFlags().StringVar(&configFile, "config", "", "path to config.toml")

    root.AddCommand(statsCmd(), backfillCmd(), aggregateDayCmd())

    if err := root.Execute(); err != nil {
        fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
        os.Exit(1)
    }
}

func openStore() (*store.Store, error) {
    cfg, err := config.Load(configFile)
    if err != nil {
        return nil, err
    }
    return store.Open(store.Config{
        Driver:      cfg.Database.Driver,
        DSN:         cfg.Database.DSN(),
        CacheSizeMB: cfg.Database.CacheSizeMB,
    })
}

func statsCmd() *cobra.Command {
    var hours int64
    cmd := &cobra.Command{
        Use:   "stats",
        Short: "Print hybrid rollup/live stats for the last N hours",
        RunE: func(cmd *cobra.Command, args []string) error {
            db, err := openStore()
            if err != nil {
                return err
            }
            defer db.Close()

            engine := stats.New(db)
            resp, err := engine.GetStats(hours)
            if err != nil {
                return err
            }

            fmt.Println(color.GreenString("Total requests: %d", resp.Total))
            fmt.Println(color.GreenString("Unique IPs: %d", resp.UniqueIPs))

            table := tablewriter.NewWriter(os.Stdout)
            table.SetHeader([]string{"Service", "Count"})
            for svc, count := range resp.Services {
                table.Append([]string{svc, strconv.FormatInt(count, 10)})
            }
            table.Render()

            return nil
        },
    }
    cmd.Flags().Int64Var(&hours, "hours", 24, "lookback window in hours")
    return cmd
}

func backfillCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "backfill",
        Short: "Aggregate every completed day missing a rollup row",
        RunE: func(cmd *cobra.Command, args []string) error {
            db, err := openStore()
            if err != nil {
                return err
            }
            defer db.Close()

            agg := stats.NewAggregator(db)
            if err := agg.Backfill(); err != nil {
                return err
            }
            fmt.Println(color.GreenString("backfill complete"))
            return nil
        },
    }
}

func aggregateDayCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "aggregate-day [day_bucket_ms]",
        Short: "Force-aggregate a specific UTC day bucket (Unix ms midnight)",
        Args:  cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            dayBucket, err := strconv.ParseInt(args[0], 10, 64)
            if err != nil {
                return fmt.Errorf("invalid day_bucket: %w", err)
            }

            db, err := openStore()
            if err != nil {
                return err
            }
            defer db.Close()

            if err := db.AggregateDay(dayBucket); err != nil {
                return err
            }
            fmt.Println(color.GreenString("aggregated day %d", dayBucket))
            return nil
        },
    }
}
