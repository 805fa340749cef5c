// Package ladder implements the scan-based ladder-logic engine: an
// instruction set (LD/AND/OR/.../OUT/SET/RST/PLS/PLF/OUT_T/OUT_C/MOV/
// ADD/...), a cooperative scanner running at a fixed cadence, and the
// timer/counter state machines it drives.
package ladder
