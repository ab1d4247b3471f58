package herkulexd

import (
	"fmt"
	"slices"
	"time"

	"github.com/mdouchement/herkulexd/herkulex"
	"github.com/mdouchement/logger"
)

// Connect opens the HerkuleX bus described by the configuration.
// A dummy bus populated with the configured servos is used when dummy is set.
func Connect(cfg Config, dummy bool, log logger.Logger) (*herkulex.Driver, error) {
	var driver *herkulex.Driver

	switch {
	case dummy:
		ids := make([]herkulex.ID, 0, len(cfg.Servos))
		for _, servo := range cfg.Servos {
			ids = append(ids, servo.ID)
		}
		slices.Sort(ids)

		bus := NewDummyBus(ids...)
		bus.SetLogger(log)
		driver = herkulex.New(bus)
		driver.SetDelays(0, 0)
	case cfg.Port != "":
		var err error
		driver, err = herkulex.Open(cfg.Port, cfg.BaudRate)
		if err != nil {
			return nil, fmt.Errorf("herkulex: %w", err)
		}
	default:
		var err error
		driver, err = herkulex.OpenAuto(cfg.BaudRate)
		if err != nil {
			return nil, fmt.Errorf("herkulex: %w", err)
		}
	}

	driver.SetResponseWindow(cfg.ResponseWindow.Duration)
	if cfg.Debug {
		driver.SetLogger(log)
	}

	return driver, nil
}

// Setup wakes up the servos and applies the configured ack policy.
func Setup(cfg Config, driver *herkulex.Driver) error {
	if err := driver.Initialize(); err != nil {
		return err
	}

	if cfg.AckPolicy != herkulex.AckReadOnly {
		if err := driver.SetAckPolicy(cfg.AckPolicy); err != nil {
			return err
		}
		time.Sleep(herkulex.DefaultSettleDelay)
	}

	return nil
}
