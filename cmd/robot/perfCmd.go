package robot

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/robokit/simlink/cmd/util"
	"github.com/robokit/simlink/rpc/client"
	"github.com/robokit/simlink/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the simulator API",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfNumClients = 4
	perfIterations = 200
	perfSkip       = make([]string, 0)
)

func init() {
	// add flags
	key := "clients"
	perfTestCmd.Flags().Int(key, 4, util.WrapString("Number of parallel connections to benchmark with"))
	key = "iterations"
	perfTestCmd.Flags().Int(key, 200, util.WrapString("Commands to issue per connection and benchmark"))
	key = "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. joints,pose)"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumClients = viper.GetInt("clients")
	perfIterations = viper.GetInt("iterations")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the simulator API")

	// Print configuration
	cfg := util.GetClientConfig()
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(cfg.String())
	fmt.Printf("Clients: %d\n", perfNumClients)
	fmt.Printf("Iterations: %d\n", perfIterations)
	fmt.Println()

	// One client per simulated operator, all against the same endpoint
	fleet := client.NewFleet()
	defer fleet.Close()
	for i := 0; i < perfNumClients; i++ {
		fleet.Add(fmt.Sprintf("perf-%d", i), cfg)
	}

	// resolved by the command group's PersistentPreRunE
	robotName, err := rpcRobot.Name()
	if err != nil {
		return err
	}
	registry := gometrics.NewRegistry()

	benchmarks := []struct {
		name string
		op   func(c *client.Client, robot *client.Item) error
	}{
		{"joints", func(c *client.Client, robot *client.Item) error {
			_, err := robot.Joints()
			return err
		}},
		{"pose", func(c *client.Client, robot *client.Item) error {
			_, err := robot.Pose()
			return err
		}},
		{"lookup", func(c *client.Client, robot *client.Item) error {
			_, err := c.ItemByName(robotName, common.ItemTypeRobot)
			return err
		}},
		{"param", func(c *client.Client, robot *client.Item) error {
			_, err := c.Param("perf")
			return err
		}},
	}

	fmt.Println("starting tests...")
	fmt.Println()

	for _, bench := range benchmarks {
		if shouldSkip(bench.name) {
			continue
		}
		timer := gometrics.NewRegisteredTimer(bench.name, registry)
		if err := runBenchmark(fleet, robotName, timer, bench.op); err != nil {
			return fmt.Errorf("benchmark %s: %w", bench.name, err)
		}
		printPerfResult(bench.name, timer)
	}

	// Optionally save results to CSV
	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writePerfCSV(csvPath, registry); err != nil {
			return err
		}
		fmt.Printf("results saved to %s\n", csvPath)
	}

	return nil
}

// runBenchmark drives the operation from every fleet client in parallel,
// recording each round trip in the timer.
func runBenchmark(fleet *client.Fleet, robotName string, timer gometrics.Timer, op func(c *client.Client, robot *client.Item) error) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fleet.Each(func(name string, c *client.Client) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			robot, err := c.ItemByName(robotName, common.ItemTypeRobot)
			if err != nil || !robot.Valid() {
				mu.Lock()
				if firstErr == nil {
					if err == nil {
						err = fmt.Errorf("no robot named %q", robotName)
					}
					firstErr = err
				}
				mu.Unlock()
				return
			}
			for i := 0; i < perfIterations; i++ {
				start := time.Now()
				if err := op(c, robot); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				timer.UpdateSince(start)
			}
		}()
	})
	wg.Wait()
	return firstErr
}

func printPerfResult(name string, timer gometrics.Timer) {
	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-8s %8d ops  %10.0f ops/s  p50 %s  p95 %s  p99 %s\n",
		name,
		timer.Count(),
		timer.RateMean(),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		time.Duration(ps[2]),
	)
}

func writePerfCSV(path string, registry gometrics.Registry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"benchmark", "ops", "ops_per_sec", "p50_ns", "p95_ns", "p99_ns"}); err != nil {
		return err
	}

	var writeErr error
	registry.Each(func(name string, metric interface{}) {
		timer, ok := metric.(gometrics.Timer)
		if !ok || writeErr != nil {
			return
		}
		ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
		writeErr = w.Write([]string{
			name,
			strconv.FormatInt(timer.Count(), 10),
			strconv.FormatFloat(timer.RateMean(), 'f', 1, 64),
			strconv.FormatFloat(ps[0], 'f', 0, 64),
			strconv.FormatFloat(ps[1], 'f', 0, 64),
			strconv.FormatFloat(ps[2], 'f', 0, 64),
		})
	})
	return writeErr
}

func shouldSkip(name string) bool {
	for _, s := range perfSkip {
		if strings.TrimSpace(s) == name {
			return true
		}
	}
	return false
}
