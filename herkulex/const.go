package herkulex

import "time"

const (
	HeaderByte     = 0xFF
	MinPacketSize  = 7
	MaxPacketSize  = 0xFF
	MaxPayloadSize = MaxPacketSize - MinPacketSize
)

// Frame offsets.
const (
	offsetSize      = 2
	offsetID        = 3
	offsetCommand   = 4
	offsetChecksum1 = 5
	offsetChecksum2 = 6
	offsetPayload   = 7

	// Fixed offsets read by the driver in response frames.
	offsetStatus = 7
	offsetModel  = 8
	offsetValue  = 9
)

const (
	CommandEEPWrite Command = 0x01 // Non-volatile register write
	CommandEEPRead  Command = 0x02 // Non-volatile register read
	CommandRAMWrite Command = 0x03 // Volatile register write
	CommandRAMRead  Command = 0x04 // Volatile register read
	CommandIJog     Command = 0x05 // Move n servos with their own timing
	CommandSJog     Command = 0x06 // Move n servos with the same timing
	CommandStat     Command = 0x07 // Status read
	CommandRollback Command = 0x08 // Back to factory values
	CommandReboot   Command = 0x09
)

// EEP registers.
const (
	RegisterModel Register = 0x00
	RegisterID    Register = 0x06
)

// RAM registers.
const (
	RegisterAckPolicy        Register = 0x01
	RegisterStatusError      Register = 0x30
	RegisterTorqueControl    Register = 0x34
	RegisterLEDControl       Register = 0x35
	RegisterAbsolutePosition Register = 0x3A
	RegisterDifferential     Register = 0x40
)

const (
	torqueOn   = 0x60
	torqueFree = 0x00
)

const (
	BroadcastID ID = 0xFE
	MaxID       ID = 0xFD
)

const (
	LEDGreen LED = 0x04
	LEDBlue  LED = 0x08
	LEDRed   LED = 0x10

	ledMask = LEDGreen | LEDBlue | LEDRed
)

// LED register layout.
const (
	ledRegisterGreen = 0x01
	ledRegisterBlue  = 0x02
	ledRegisterRed   = 0x04
)

// JOG SET byte mode flag, the LED bits share the byte.
const jogSpeedMode = 0x02

const (
	StatusOK           Status = 0x00
	StatusInputVoltage Status = 0x01
	StatusPosLimit     Status = 0x02
	StatusTempLimit    Status = 0x04
	StatusInvalidPkt   Status = 0x08
	StatusOverload     Status = 0x10
	StatusDriverFault  Status = 0x20
	StatusEEPDistort   Status = 0x40
)

const (
	AckNone AckPolicy = iota
	AckReadOnly
	AckAlways
)

const (
	ModelDRS0101 = 0x01
	ModelDRS0201 = 0x02
)

const (
	MaxPosition    = 1023
	CenterPosition = 512
	MaxSpeed       = 1023
	MaxAngle       = 167.0
	AngleStep      = 0.325

	MaxPlayTime  = 2856 * time.Millisecond
	TickDuration = 11200 * time.Microsecond

	speedNegative     = 0x4000
	speedNegativeHigh = 0x40
)

const (
	MaxBatchEntries = 53 // A S_JOG frame drives at most 53 servos.
	BatchEntrySize  = 4
)

const (
	DefaultBaudRate       = 115200
	DefaultResponseWindow = 30 * time.Millisecond
	DefaultSettleDelay    = 10 * time.Millisecond
	DefaultWakeUpDelay    = 100 * time.Millisecond
)
