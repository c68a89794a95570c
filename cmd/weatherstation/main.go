// Weatherstation samples a BME280 environmental sensor, shows the
// readings on an SSD1306 OLED, and publishes them to Home Assistant
// over MQTT with retained discovery, state, and availability topics.
//
// Usage:
//
//	weatherstation [-config path]          Run the station loop
//	weatherstation [-config path] run      Same as above
//	weatherstation [-config path] reset    Tombstone every retained message and restart
//	weatherstation version                 Print version and build information
//
// Configuration is loaded from a single YAML file discovered
// automatically (see [config.DefaultSearchPaths]).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/ayushchinmay/weatherstation/internal/buildinfo"
	"github.com/ayushchinmay/weatherstation/internal/config"
	"github.com/ayushchinmay/weatherstation/internal/display"
	"github.com/ayushchinmay/weatherstation/internal/mqtt"
	"github.com/ayushchinmay/weatherstation/internal/netlink"
	"github.com/ayushchinmay/weatherstation/internal/sensor"
	"github.com/ayushchinmay/weatherstation/internal/station"
)

// main is intentionally minimal. It constructs the OS-level
// environment and delegates immediately to [run], keeping os.Exit and
// os.Args out of the application logic.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("weatherstation", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := fs.Arg(0)
	if cmd == "" {
		cmd = "run"
	}

	if cmd == "version" {
		fmt.Fprintln(stdout, buildinfo.String())
		return nil
	}

	path, err := config.FindConfig(*configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	logger.Info("starting", "version", buildinfo.Version, "config", path)

	switch cmd {
	case "run":
		return runStation(ctx, cfg, *configPath, logger, false)
	case "reset":
		return runStation(ctx, cfg, *configPath, logger, true)
	default:
		return fmt.Errorf("unknown command %q (valid: run, reset, version)", cmd)
	}
}

// runStation brings up the peripherals and the link, then either runs
// the reset flow or hands control to the scheduler until ctx is
// cancelled. A failed init of a mandatory peripheral returns a visible
// error; nothing here busy-waits.
func runStation(ctx context.Context, cfg *config.Config, configPath string, logger *slog.Logger, resetRequested bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open(cfg.Sensor.I2CBus)
	if err != nil {
		return fmt.Errorf("open i2c bus: %w", err)
	}
	defer bus.Close()

	var presenter display.Presenter = display.Null{}
	if cfg.Display.Enabled {
		screen, err := display.NewSSD1306(bus, cfg.Display.Rotated, logger)
		if err != nil {
			return err
		}
		defer screen.Halt()
		presenter = screen
	}

	source, closeSensor, err := sensor.NewBME280(bus, cfg.Sensor.I2CAddr, logger)
	if err != nil {
		presenter.Message("Sensor init", "FAILED")
		return err
	}
	defer closeSensor()

	// The reset button is sampled exactly once, at startup; there is no
	// runtime command surface.
	if !resetRequested && cfg.Device.ResetButtonPin != "" {
		resetRequested = resetButtonHeld(cfg.Device.ResetButtonPin, logger)
	}

	instanceID, err := mqtt.LoadOrCreateInstanceID(cfg.Device.DataDir)
	if err != nil {
		return err
	}

	topics := mqtt.Topics{
		DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
		DeviceName:      cfg.Device.Name,
	}
	wire := mqtt.NewPahoWire(mqtt.WireOptions{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.Device.Name,
		Username:    cfg.MQTT.Username,
		Password:    cfg.MQTT.Password,
		WillTopic:   topics.Availability(),
		WillPayload: mqtt.PayloadNotAvailable,
	})
	client := mqtt.NewClient(wire, topics,
		cfg.MQTT.ReconnectInterval.Std(), cfg.MQTT.PublishTimeout.Std(), logger)

	transport := netlink.NewSysfsTransport(cfg.Link.Interface, cfg.Link.AssociateCmd, logger)
	link := netlink.NewManager(transport, cfg.Link.ReconnectInterval.Std(), logger)

	if resetRequested {
		presenter.Message("MQTT RESET", "MODE", "", "Connecting", "to WiFi...")
	} else {
		presenter.Message("Connecting", "to WiFi...")
	}

	// The one-time blocking bring-up. Allowed to block: no telemetry
	// obligation exists yet.
	if err := link.Connect(ctx, netlink.DefaultBackoff()); err != nil {
		return err
	}
	if link.Up() {
		if addr := netlink.InterfaceAddr(cfg.Link.Interface); addr != "" {
			presenter.Message("WiFi", "Connected!", "", "IP:", addr)
			logger.Info("link address", "iface", cfg.Link.Interface, "addr", addr)
		} else {
			presenter.Message("WiFi", "Connected!")
		}
	}

	if resetRequested {
		return runReset(cfg, configPath, client, topics, presenter, logger)
	}

	device := mqtt.NewDeviceInfo(instanceID, cfg.Device.FriendlyName)
	discovery, err := mqtt.NewDiscoveryPublisher(client, device, cfg.Device.Name, topics, logger)
	if err != nil {
		return err
	}
	telemetry := mqtt.NewTelemetryPublisher(client, topics,
		cfg.Telemetry.PublishInterval.Std(), logger)

	sched := station.New(station.Options{
		Link:           link,
		Broker:         client,
		Discovery:      discovery,
		Telemetry:      telemetry,
		Source:         source,
		Presenter:      presenter,
		Logger:         logger,
		SampleInterval: cfg.Sensor.SampleInterval.Std(),
		RenderInterval: cfg.Display.RefreshInterval.Std(),
	})

	logger.Info("station loop starting", "device", cfg.Device.Name)
	sched.Run(ctx)

	client.Close()
	logger.Info("stopped")
	return nil
}

// runReset connects once, tombstones every retained topic the device
// has ever used, and restarts the process into normal mode. On failure
// the error stays on the display and the process does not restart; the
// operator retries.
func runReset(cfg *config.Config, configPath string, client *mqtt.Client, topics mqtt.Topics, presenter display.Presenter, logger *slog.Logger) error {
	presenter.Message("Resetting", "MQTT...")

	if err := client.ConnectWait(30 * time.Second); err != nil {
		presenter.Message("MQTT Reset", "FAILED!", "", "Check MQTT", "settings")
		return fmt.Errorf("reset: %w", err)
	}

	reset := mqtt.NewResetCoordinator(client, topics, logger)
	if err := reset.Reset(); err != nil {
		presenter.Message("MQTT Reset", "FAILED!")
		client.Disconnect()
		return fmt.Errorf("reset: %w", err)
	}
	client.Disconnect()
	logger.Info("mqtt reset complete, device removed from home assistant")

	presenter.Message("MQTT Reset", "Complete!", "", "Restarting", "in 3s...")
	time.Sleep(3 * time.Second)

	return restartProcess(configPath)
}

// restartProcess re-execs the binary in normal run mode so the station
// comes back with a fresh broker session.
func restartProcess(configPath string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	args := []string{exe}
	if configPath != "" {
		args = append(args, "-config", configPath)
	}
	args = append(args, "run")
	return syscall.Exec(exe, args, os.Environ())
}

// resetButtonHeld samples the configured GPIO pin once. Held low at
// power-on selects the reset flow, same as the reset subcommand.
func resetButtonHeld(pin string, logger *slog.Logger) bool {
	p := gpioreg.ByName(pin)
	if p == nil {
		logger.Warn("reset button pin not found", "pin", pin)
		return false
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		logger.Warn("reset button pin setup failed", "pin", pin, "error", err)
		return false
	}
	held := p.Read() == gpio.Low
	if held {
		logger.Info("reset button held at startup, mqtt reset requested")
	}
	return held
}
