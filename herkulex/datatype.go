package herkulex

import (
	"fmt"
	"strings"
)

type (
	ID        uint8
	Command   uint8
	Register  uint8
	LED       uint8
	Status    uint8
	AckPolicy uint8
)

// Valid reports whether the id addresses one servo or the whole bus.
func (id ID) Valid() bool {
	return id <= BroadcastID
}

func (id ID) IsBroadcast() bool {
	return id == BroadcastID
}

func (c Command) String() string {
	switch c {
	case CommandEEPWrite:
		return "EEP_WRITE"
	case CommandEEPRead:
		return "EEP_READ"
	case CommandRAMWrite:
		return "RAM_WRITE"
	case CommandRAMRead:
		return "RAM_READ"
	case CommandIJog:
		return "I_JOG"
	case CommandSJog:
		return "S_JOG"
	case CommandStat:
		return "STAT"
	case CommandRollback:
		return "ROLLBACK"
	case CommandReboot:
		return "REBOOT"
	}
	return fmt.Sprintf("0x%02X", uint8(c))
}

// ParseLED converts color names (red, green, blue) into a LED mask.
func ParseLED(colors ...string) (LED, error) {
	var led LED
	for _, c := range colors {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "red":
			led |= LEDRed
		case "green":
			led |= LEDGreen
		case "blue":
			led |= LEDBlue
		case "", "off":
		default:
			return 0, fmt.Errorf("%s: unknown led color", c)
		}
	}
	return led, nil
}

func (l LED) String() string {
	var colors []string
	if l&LEDRed != 0 {
		colors = append(colors, "red")
	}
	if l&LEDGreen != 0 {
		colors = append(colors, "green")
	}
	if l&LEDBlue != 0 {
		colors = append(colors, "blue")
	}
	if len(colors) == 0 {
		return "off"
	}
	return strings.Join(colors, "|")
}

func (s Status) HasError() bool {
	return s != StatusOK
}

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}

	var flags []string
	if s&StatusInputVoltage != 0 {
		flags = append(flags, "input voltage")
	}
	if s&StatusPosLimit != 0 {
		flags = append(flags, "position limit")
	}
	if s&StatusTempLimit != 0 {
		flags = append(flags, "temperature limit")
	}
	if s&StatusInvalidPkt != 0 {
		flags = append(flags, "invalid packet")
	}
	if s&StatusOverload != 0 {
		flags = append(flags, "overload")
	}
	if s&StatusDriverFault != 0 {
		flags = append(flags, "driver fault")
	}
	if s&StatusEEPDistort != 0 {
		flags = append(flags, "EEP distorted")
	}
	return strings.Join(flags, ", ")
}

// ParseAckPolicy accepts none, read and always.
func ParseAckPolicy(s string) (AckPolicy, error) {
	switch strings.ToLower(s) {
	case "none":
		return AckNone, nil
	case "read", "read_only", "readonly":
		return AckReadOnly, nil
	case "always":
		return AckAlways, nil
	}
	return 0, fmt.Errorf("%s: %w", s, ErrAckPolicy)
}

func (p AckPolicy) Valid() bool {
	return p <= AckAlways
}

func (p AckPolicy) String() string {
	switch p {
	case AckNone:
		return "none"
	case AckReadOnly:
		return "read"
	case AckAlways:
		return "always"
	}
	return fmt.Sprintf("invalid(%d)", uint8(p))
}

func ModelName(model uint8) string {
	switch model {
	case ModelDRS0101:
		return "DRS-0101"
	case ModelDRS0201:
		return "DRS-0201"
	}
	return fmt.Sprintf("unknown(0x%02X)", model)
}
