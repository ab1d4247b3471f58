// Package herkulex drives HerkuleX servos (DRS-0101, DRS-0201) over a half-duplex serial bus.
package herkulex
