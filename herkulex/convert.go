package herkulex

import (
	"math"
	"time"
)

// AngleToPosition maps degrees onto the position scale, 0° being the center position.
// The result is not range checked, see ValidAngle and ValidPosition.
func AngleToPosition(angle float64) int {
	return int(math.Round(angle/AngleStep)) + CenterPosition
}

func PositionToAngle(position int) float64 {
	return float64(position-CenterPosition) * AngleStep
}

func ValidAngle(angle float64) bool {
	return angle > -MaxAngle && angle <= MaxAngle
}

func ValidPosition(position int) bool {
	return position >= 0 && position <= MaxPosition
}

func ValidSpeed(speed int) bool {
	return speed >= -MaxSpeed && speed <= MaxSpeed
}

func ValidPlayTime(d time.Duration) bool {
	return d >= 0 && d <= MaxPlayTime
}

// EncodeSpeed packs a signed speed as its magnitude with the 0x4000 flag set for negative values.
func EncodeSpeed(speed int) uint16 {
	if speed < 0 {
		return uint16(-speed) | speedNegative
	}
	return uint16(speed)
}

// DecodeSpeed reads back a little-endian speed as returned by the servo.
func DecodeSpeed(lsb, msb byte) int {
	speed := int(msb&0x03)<<8 | int(lsb)
	if msb&speedNegativeHigh != 0 {
		speed = -speed
	}
	return speed
}

func decodePosition(lsb, msb byte) int {
	return int(msb&0x03)<<8 | int(lsb)
}

// PlayTimeToTicks converts a play time into 11.2ms ticks, truncating.
func PlayTimeToTicks(d time.Duration) (uint8, error) {
	if !ValidPlayTime(d) {
		return 0, ErrPlayTimeRange
	}

	ms := d.Milliseconds()
	return uint8(ms * 10 / 112), nil
}

func TicksToPlayTime(ticks uint8) time.Duration {
	return time.Duration(ticks) * TickDuration
}

// register re-encodes the LED mask into the LED control register layout.
func (l LED) register() byte {
	var v byte
	if l&LEDGreen != 0 {
		v |= ledRegisterGreen
	}
	if l&LEDBlue != 0 {
		v |= ledRegisterBlue
	}
	if l&LEDRed != 0 {
		v |= ledRegisterRed
	}
	return v
}

// jogSet builds the SET byte of a JOG entry.
func (l LED) jogSet(speedMode bool) byte {
	set := byte(l & ledMask)
	if speedMode {
		set |= jogSpeedMode
	}
	return set
}
