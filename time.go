package herkulexd

import (
	"encoding/json"
	"strconv"
	"time"

	"go.yaml.in/yaml/v4"
)

// Duration is a time.Duration written as "30ms" or "1.5s" in config files and JSON payloads.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var str string
	err := json.Unmarshal(data, &str)
	if err != nil {
		return err
	}

	return d.parse(str)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	err := value.Decode(&str)
	if err != nil {
		return err
	}

	return d.parse(str)
}

// parse accepts Go durations and bare integers as milliseconds, the HerkuleX documentation unit.
func (d *Duration) parse(str string) error {
	if str == "" {
		return nil
	}

	if ms, err := strconv.Atoi(str); err == nil {
		d.Duration = time.Duration(ms) * time.Millisecond
		return nil
	}

	var err error
	d.Duration, err = time.ParseDuration(str)
	return err
}
