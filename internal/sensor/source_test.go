package sensor

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

// fakeEnv implements physic.SenseEnv with scripted values.
type fakeEnv struct {
	env physic.Env
	err error
}

func (f *fakeEnv) Sense(e *physic.Env) error {
	if f.err != nil {
		return f.err
	}
	*e = f.env
	return nil
}

func (f *fakeEnv) SenseContinuous(time.Duration) (<-chan physic.Env, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEnv) Precision(e *physic.Env) {}

func (f *fakeEnv) String() string { return "fakeEnv" }
func (f *fakeEnv) Halt() error    { return nil }

func TestEnvSource_UnitConversion(t *testing.T) {
	dev := &fakeEnv{env: physic.Env{
		Temperature: physic.Temperature(21.5*float64(physic.Kelvin)) + physic.ZeroCelsius,
		Humidity:    physic.RelativeHumidity(55.5 * float64(physic.PercentRH)),
		Pressure:    physic.Pressure(101360 * float64(physic.Pascal)),
	}}
	s := NewEnvSource(dev, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := s.Read()
	if !r.Valid {
		t.Fatalf("Read() = %+v, want valid", r)
	}
	if math.Abs(r.TemperatureC-21.5) > 0.01 {
		t.Errorf("TemperatureC = %v, want 21.5", r.TemperatureC)
	}
	if math.Abs(r.HumidityPct-55.5) > 0.01 {
		t.Errorf("HumidityPct = %v, want 55.5", r.HumidityPct)
	}
	if math.Abs(r.PressureHPa-1013.6) > 0.01 {
		t.Errorf("PressureHPa = %v, want 1013.6", r.PressureHPa)
	}
}

func TestEnvSource_FailureYieldsFaultReading(t *testing.T) {
	dev := &fakeEnv{err: errors.New("i2c timeout")}
	s := NewEnvSource(dev, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := s.Read()
	if r.Valid {
		t.Errorf("Read() = %+v, want the fault reading", r)
	}
	if !math.IsNaN(r.TemperatureC) {
		t.Errorf("TemperatureC = %v, want NaN sentinel", r.TemperatureC)
	}
}
