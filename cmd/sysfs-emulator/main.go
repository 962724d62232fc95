// cmd/sysfs-emulator/main.go
package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"sysmon-mqtt/internal/config"
	"sysmon-mqtt/internal/logging"
	"sysmon-mqtt/internal/sensor"
)

type iface struct {
	dir    string
	tx, rx uint64
}

func main() {
	app := &cli.App{
		Name:  "sysfs-emulator",
		Usage: "write a fake sysfs tree for running sysmon-mqtt without real sensors",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Value: "./fake-sys", Usage: "directory to populate"},
			&cli.IntFlag{Name: "zones", Value: 2, Usage: "number of thermal zones"},
			&cli.StringSliceFlag{Name: "iface", Value: cli.NewStringSlice("eth0", "wlan0"), Usage: "network interface names"},
			&cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "update interval"},
			&cli.Uint64Flag{Name: "rate", Value: 125000, Usage: "mean bytes per second per direction"},
			&cli.Float64Flag{Name: "jitter", Value: 0.2, Usage: "jitter fraction for rates and temperatures (0..1)"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sysfs-emulator: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger, err := logging.New(config.Defaults().Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	root := c.String("root")
	interval := c.Duration("interval")
	rate := float64(c.Uint64("rate"))
	jitter := c.Float64("jitter")
	if err := checkFlags(interval, jitter); err != nil {
		return err
	}

	var zones []string
	for i := 0; i < c.Int("zones"); i++ {
		zones = append(zones, filepath.Join(root, "thermal", fmt.Sprintf("thermal_zone%d", i)))
	}
	var ifaces []*iface
	for _, name := range c.StringSlice("iface") {
		ifaces = append(ifaces, &iface{dir: filepath.Join(root, "net", name)})
	}

	// Print the env lines the collector expects.
	netDirs := make([]string, 0, len(ifaces))
	for _, i := range ifaces {
		netDirs = append(netDirs, i.dir)
	}
	fmt.Printf("S_TEMP=%s\nS_NET=%s\n", strings.Join(zones, ";"), strings.Join(netDirs, ";"))

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("sysfs-emulator started", zap.String("root", root), zap.Int("zones", len(zones)), zap.Int("ifaces", len(ifaces)))

	for {
		for i, z := range zones {
			milli := int64((40 + float64(i)*5 + 5*jitterOf(jitter)) * 1000)
			if err := writeValue(filepath.Join(z, sensor.TempFile), strconv.FormatInt(milli, 10)); err != nil {
				return err
			}
		}
		secs := interval.Seconds()
		for _, i := range ifaces {
			i.tx += uint64(rate * secs * (1 + jitterOf(jitter)))
			i.rx += uint64(rate * secs * (1 + jitterOf(jitter)))
			if err := writeValue(filepath.Join(i.dir, sensor.TxBytesFile), strconv.FormatUint(i.tx, 10)); err != nil {
				return err
			}
			if err := writeValue(filepath.Join(i.dir, sensor.RxBytesFile), strconv.FormatUint(i.rx, 10)); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			logger.Info("sysfs-emulator stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// checkFlags rejects values that would stall the ticker or drive a counter
// increment negative.
func checkFlags(interval time.Duration, jitter float64) error {
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", interval)
	}
	if jitter < 0 || jitter > 1 {
		return fmt.Errorf("--jitter must be within 0..1, got %g", jitter)
	}
	return nil
}

// jitterOf returns a value in [-j, j).
func jitterOf(j float64) float64 {
	return (rand.Float64()*2 - 1) * j
}

// writeValue replaces path atomically so readers never see a partial value.
func writeValue(path, v string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(v+"\n"), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

