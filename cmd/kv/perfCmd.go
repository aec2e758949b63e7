package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/rKV/cmd/util"
	"github.com/ValentinKolb/rKV/rpc/common"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for rKV servers",
		Long:    "Runs a fixed number of requests per benchmark against the configured endpoints and reports throughput and latency percentiles. Available benchmarks: set, set-large, get, get-miss, mixed",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfRequests         = 10000
	perfSkip             = make([]string, 0)

	perfPercentiles = []float64{0.5, 0.9, 0.99}
)

// perfResult is the outcome of one benchmark
type perfResult struct {
	name     string
	skipped  bool
	elapsed  time.Duration
	timer    gometrics.Timer
	failures gometrics.Counter
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers to use for the benchmark"))
	key = "requests"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("Number of requests per benchmark (spread over all workers)"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(1, viper.GetInt("keys"))
	perfNumThreads = max(1, viper.GetInt("threads"))
	perfRequests = max(1, viper.GetInt("requests"))
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fmt.Println("Performance testing tool for rKV servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Requests: %d\n", perfRequests)
	fmt.Println()

	fmt.Println("starting tests...")

	smallValue := []byte("test")
	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	getKey := keyFunc("bench")
	missKey := keyFunc("miss")

	// the get benchmarks read what set wrote, so the keys are populated first
	for i := 0; i < perfKeySpread; i++ {
		if err := rpcStore.SetContext(ctx, getKey(i), smallValue); err != nil {
			return fmt.Errorf("failed to prepare keys: %w", err)
		}
	}

	benchmarks := []struct {
		name string
		op   func(ctx context.Context, i int) error
	}{
		{"set", func(ctx context.Context, i int) error {
			return rpcStore.SetContext(ctx, getKey(i), smallValue)
		}},
		{"set-large", func(ctx context.Context, i int) error {
			return rpcStore.SetContext(ctx, getKey(i), largeValue)
		}},
		{"get", func(ctx context.Context, i int) error {
			_, _, err := rpcStore.GetContext(ctx, getKey(i))
			return err
		}},
		{"get-miss", func(ctx context.Context, i int) error {
			_, _, err := rpcStore.GetContext(ctx, missKey(i))
			return err
		}},
		{"mixed", func(ctx context.Context, i int) error {
			if i%4 == 0 {
				return rpcStore.SetContext(ctx, getKey(i), smallValue)
			}
			_, _, err := rpcStore.GetContext(ctx, getKey(i))
			return err
		}},
	}

	results := make([]*perfResult, 0, len(benchmarks))
	for _, b := range benchmarks {
		var res *perfResult
		if shouldSkip(b.name) {
			res = &perfResult{name: b.name, skipped: true}
		} else {
			res = runBenchmark(ctx, b.name, b.op)
		}
		results = append(results, res)
		printResult(res)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runBenchmark executes op perfRequests times on perfNumThreads workers and
// records the latency of every call
func runBenchmark(ctx context.Context, name string, op func(ctx context.Context, i int) error) *perfResult {
	res := &perfResult{
		name:     name,
		timer:    gometrics.NewTimer(),
		failures: gometrics.NewCounter(),
	}

	jobs := make(chan int, perfNumThreads)
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < perfNumThreads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				t := time.Now()
				err := op(ctx, i)
				res.timer.UpdateSince(t)
				if err != nil {
					res.failures.Inc(1)
				}
			}
		}()
	}

	for i := 0; i < perfRequests && ctx.Err() == nil; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	res.elapsed = time.Since(start)
	return res
}

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// keyFunc returns a function mapping a request index to one of perfKeySpread keys
func keyFunc(prefix string) func(int) string {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}
	return func(i int) string {
		return keys[i%perfKeySpread]
	}
}

// opsPerSec returns the measured throughput of a benchmark
func (r *perfResult) opsPerSec() float64 {
	if r.skipped || r.elapsed <= 0 {
		return 0
	}
	return float64(r.timer.Count()) / r.elapsed.Seconds()
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(r *perfResult) {
	if r.skipped {
		fmt.Printf("%-12sskipped\n", r.name)
		return
	}

	snap := r.timer.Snapshot()
	ps := snap.Percentiles(perfPercentiles)

	fmt.Printf("%-12s%8.0f ops/sec\tmean %-10s p50 %-10s p90 %-10s p99 %-10s errors %d\n",
		r.name,
		r.opsPerSec(),
		time.Duration(snap.Mean()).Round(time.Microsecond),
		time.Duration(ps[0]).Round(time.Microsecond),
		time.Duration(ps[1]).Round(time.Microsecond),
		time.Duration(ps[2]).Round(time.Microsecond),
		r.failures.Count(),
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []*perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Skipped", "Requests", "Errors", "OpsPerSec",
		"MeanNs", "P50Ns", "P90Ns", "P99Ns",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, r := range results {
		row := []string{r.name, strconv.FormatBool(r.skipped)}
		if r.skipped {
			row = append(row, "0", "0", "0", "0", "0", "0", "0")
		} else {
			snap := r.timer.Snapshot()
			ps := snap.Percentiles(perfPercentiles)
			row = append(row,
				strconv.FormatInt(snap.Count(), 10),
				strconv.FormatInt(r.failures.Count(), 10),
				fmt.Sprintf("%.0f", r.opsPerSec()),
				fmt.Sprintf("%.0f", snap.Mean()),
				fmt.Sprintf("%.0f", ps[0]),
				fmt.Sprintf("%.0f", ps[1]),
				fmt.Sprintf("%.0f", ps[2]),
			)
		}
		row = append(row,
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", r.name, err)
		}
	}

	return nil
}
