package sensor

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

// Source produces the latest environmental sample. Implementations
// return the fault Reading instead of an error so a sampling failure is
// contained at the point of production.
type Source interface {
	Read() Reading
}

// EnvSource adapts any periph environmental sensor to [Source].
type EnvSource struct {
	dev    physic.SenseEnv
	logger *slog.Logger
}

// NewEnvSource wraps a periph [physic.SenseEnv] device.
func NewEnvSource(dev physic.SenseEnv, logger *slog.Logger) *EnvSource {
	return &EnvSource{dev: dev, logger: logger}
}

// Read performs one measurement. A transport or sensor failure yields
// the fault Reading and a warning log, never an abort.
func (s *EnvSource) Read() Reading {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		s.logger.Warn("sensor read failed", "error", err)
		return Invalid()
	}
	return NewReading(
		e.Temperature.Celsius(),
		float64(e.Humidity)/float64(physic.PercentRH),
		float64(e.Pressure)/float64(100*physic.Pascal),
	)
}

// NewBME280 initializes the BME280 at addr on an already opened I2C
// bus, configured for continuous indoor sampling. The returned close
// function halts the device; the caller owns the bus.
func NewBME280(bus i2c.Bus, addr uint16, logger *slog.Logger) (*EnvSource, func() error, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("init bme280 at %#x: %w", addr, err)
	}
	return NewEnvSource(dev, logger), dev.Halt, nil
}
