package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ble-rangefinder.klederson.com/internal/app"
	"ble-rangefinder.klederson.com/internal/battery"
	"ble-rangefinder.klederson.com/internal/config"
	"ble-rangefinder.klederson.com/internal/peripheral"
	"ble-rangefinder.klederson.com/internal/rangesvc"
	"ble-rangefinder.klederson.com/internal/sensor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDemo     bool
	flagHeadless bool
	flagName     string
	flagAdapter  int
	flagConfig   string
	flagLogLevel string
	flagVerbose  bool

	flagSensorDev  string
	flagBatteryDev string
	flagBatteryCh  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ble-rangefinder",
		Short: "BLE Rangefinder - time-of-flight distance peripheral with terminal monitor",
		Long: `BLE Rangefinder exposes a VL53L0X time-of-flight sensor and a battery
gauge over GATT to a single central, with a remotely writable sampling
configuration. A terminal monitor shows the live reading, link state and
event log.

Requires sudo or CAP_NET_ADMIN capability for the Bluetooth radio.
Use --demo for simulated sensors and no radio.`,
		RunE: run,
	}

	rootCmd.Flags().BoolVar(&flagDemo, "demo", false, "Run with simulated sensors and no Bluetooth radio")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Run without the terminal monitor, logging to stderr")
	rootCmd.Flags().StringVar(&flagName, "name", "", "Advertised device name (overrides config file)")
	rootCmd.Flags().IntVar(&flagAdapter, "adapter", -1, "HCI adapter index (overrides config file)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML configuration file")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Shorthand for --log-level debug")
	rootCmd.Flags().StringVar(&flagSensorDev, "sensor-device", "iio:device0", "IIO device exposing the VL53L0X distance channel")
	rootCmd.Flags().StringVar(&flagBatteryDev, "battery-device", "iio:device1", "IIO device exposing the VBAT ADC channel")
	rootCmd.Flags().IntVar(&flagBatteryCh, "battery-channel", 0, "ADC voltage channel index for VBAT")

	rootCmd.AddCommand(newScanCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagName != "" {
		cfg.DeviceName = flagName
	}
	if flagAdapter >= 0 {
		cfg.AdapterID = flagAdapter
	}

	store, err := rangesvc.NewStore(rangesvc.Settings{
		SampleIntervalMS: cfg.SampleIntervalMS,
		NotifyIntervalMS: cfg.NotifyIntervalMS,
		MaxRangeMM:       cfg.MaxRangeMM,
		MinRangeMM:       cfg.MinRangeMM,
	})
	if err != nil {
		return fmt.Errorf("invalid boot configuration: %w", err)
	}
	svc := rangesvc.New(store, log)

	var dev sensor.Rangefinder
	var gauge battery.Gauge
	if flagDemo {
		dev = sensor.NewSim()
		gauge = battery.NewSim()
	} else {
		dev, err = sensor.NewIIO(flagSensorDev)
		if err != nil {
			return err
		}
		gauge, err = battery.NewADC(flagBatteryDev, flagBatteryCh)
		if err != nil {
			// The device stays useful without battery telemetry; the
			// attribute just reads 0.
			log.WithError(err).Warn("battery gauge unavailable")
			gauge = nil
		}
	}

	monitor := battery.NewMonitor(gauge, config.BatterySampleInterval, log)
	sampler := sensor.NewSampler(dev, store, svc, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var links *peripheral.Manager
	var per *peripheral.Peripheral
	if flagDemo {
		links = peripheral.NewManager(peripheral.NopAdvertiser{}, svc, log)
		if err := links.Start(); err != nil {
			return err
		}
	} else {
		per, err = peripheral.New(cfg.DeviceName, cfg.AdapterID, svc, monitor, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
			fmt.Fprintln(os.Stderr, "Opening the Bluetooth radio requires elevated permissions.")
			fmt.Fprintln(os.Stderr, "Try one of:")
			fmt.Fprintln(os.Stderr, "  sudo ./ble-rangefinder")
			fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./ble-rangefinder")
			fmt.Fprintln(os.Stderr, "  ./ble-rangefinder --demo    (simulated sensors, no radio)")
			return err
		}
		links = per.Links()
	}

	go sampler.Run(ctx)
	if gauge != nil {
		go monitor.Run(ctx)
	}

	serveErr := make(chan error, 1)
	if per != nil {
		go func() { serveErr <- per.Serve(ctx) }()
	}

	if flagHeadless {
		log.WithFields(logrus.Fields{
			"name":    cfg.DeviceName,
			"adapter": fmt.Sprintf("hci%d", cfg.AdapterID),
		}).Info("running headless")
		select {
		case <-ctx.Done():
			if per != nil {
				return <-serveErr
			}
			return nil
		case err := <-serveErr:
			return err
		}
	}

	model := app.New(cfg.DeviceName, flagDemo, app.Sources{
		Service: svc,
		Battery: monitor,
		Links:   links,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	// The TUI owns the terminal; the hook feeds the event pane and the raw
	// log output is discarded.
	log.SetOutput(io.Discard)
	log.AddHook(app.NewLogHook(p))

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	stop()
	if per != nil {
		return <-serveErr
	}
	return nil
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	level := flagLogLevel
	if flagVerbose {
		level = "debug"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
