// Package devtype defines the closed set of MELSEC device types this
// emulator understands: their wire codes, addressing base, bit/word
// kind, and per-series address range limits.
package devtype
