package herkulexd

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/mdouchement/herkulexd/herkulex"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Debug          bool                          `yaml:"debug"`
	Socket         string                        `yaml:"socket"`
	Port           string                        `yaml:"port"`
	BaudRate       int                           `yaml:"baud_rate"`
	AckPolicyName  string                        `yaml:"ack_policy"`
	AckPolicy      herkulex.AckPolicy            `yaml:"-"`
	ResponseWindow Duration                      `yaml:"response_window"`
	PollInterval   Duration                      `yaml:"poll_interval"`
	PlayTime       Duration                      `yaml:"play_time"`
	Servos         map[string]*Servo             `yaml:"servos"`
	Poses          map[string]map[string]float64 `yaml:"poses"`
	MQTT           *MQTT                         `yaml:"mqtt"`
}

type Servo struct {
	Label  string       `yaml:"-"`
	RawID  int          `yaml:"id"`
	ID     herkulex.ID  `yaml:"-"`
	Colors []string     `yaml:"led"`
	LED    herkulex.LED `yaml:"-"`
}

type MQTT struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

var reName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a YAML configuration, applies the defaults and validates it.
func Parse(r io.Reader) (Config, error) {
	var c Config

	codec := yaml.NewDecoder(r)
	err := codec.Decode(&c)
	if err != nil && err != io.EOF {
		return c, err
	}

	//

	if c.Socket == "" {
		c.Socket = "/run/herkulexd/herkulexd.sock"
	}
	if c.BaudRate == 0 {
		c.BaudRate = herkulex.DefaultBaudRate
	}
	if c.AckPolicyName == "" {
		c.AckPolicyName = herkulex.AckReadOnly.String()
	}
	if c.ResponseWindow.Duration == 0 {
		c.ResponseWindow.Duration = herkulex.DefaultResponseWindow
	}
	if c.PollInterval.Duration == 0 {
		c.PollInterval.Duration = time.Second
	}
	if c.PlayTime.Duration == 0 {
		c.PlayTime.Duration = time.Second
	}

	c.AckPolicy, err = herkulex.ParseAckPolicy(c.AckPolicyName)
	if err != nil {
		return c, fmt.Errorf("ack_policy: %w", err)
	}
	if c.ResponseWindow.Duration < 0 {
		return c, fmt.Errorf("response_window: %s: must be positive", c.ResponseWindow)
	}
	if c.PollInterval.Duration < 0 {
		return c, fmt.Errorf("poll_interval: %s: must be positive", c.PollInterval)
	}
	if !herkulex.ValidPlayTime(c.PlayTime.Duration) {
		return c, fmt.Errorf("play_time: %s: %w", c.PlayTime, herkulex.ErrPlayTimeRange)
	}

	//

	ids := map[herkulex.ID]string{}
	for label, servo := range c.Servos {
		if servo == nil {
			return c, fmt.Errorf("%s: empty servo settings", label)
		}
		if !reName.MatchString(label) {
			return c, fmt.Errorf("%s: invalid name", label)
		}
		if servo.RawID < 0 || servo.RawID > int(herkulex.MaxID) {
			return c, fmt.Errorf("%s: id %d: must in range [0,%d]", label, servo.RawID, herkulex.MaxID)
		}

		servo.Label = label
		servo.ID = herkulex.ID(servo.RawID)
		if other, ok := ids[servo.ID]; ok {
			return c, fmt.Errorf("%s: id %d already used by %s", label, servo.ID, other)
		}
		ids[servo.ID] = label

		servo.LED, err = herkulex.ParseLED(servo.Colors...)
		if err != nil {
			return c, fmt.Errorf("%s: %w", label, err)
		}
	}

	for name, targets := range c.Poses {
		if !reName.MatchString(name) {
			return c, fmt.Errorf("pose %s: invalid name", name)
		}
		if len(targets) == 0 {
			return c, fmt.Errorf("pose %s: no servo targets", name)
		}
		if len(targets) > herkulex.MaxBatchEntries {
			return c, fmt.Errorf("pose %s: more than %d servos", name, herkulex.MaxBatchEntries)
		}

		for label, angle := range targets {
			if _, ok := c.Servos[label]; !ok {
				return c, fmt.Errorf("pose %s: %s: unknown servo", name, strconv.Quote(label))
			}
			if !herkulex.ValidAngle(angle) || !herkulex.ValidPosition(herkulex.AngleToPosition(angle)) {
				return c, fmt.Errorf("pose %s: %s: %.2f: %w", name, label, angle, herkulex.ErrAngleRange)
			}
		}
	}

	if c.MQTT != nil {
		if c.MQTT.Broker == "" {
			return c, fmt.Errorf("mqtt: no broker provided")
		}
		if c.MQTT.Topic == "" {
			c.MQTT.Topic = "herkulexd"
		}
	}

	return c, nil
}
