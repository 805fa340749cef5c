// Package register implements the GigE Vision bootstrap register map:
// a sparse 32-bit address space plus a handful of fixed-width string
// registers, the same shape as a real camera's control memory.
//
// The store itself holds no protocol logic — it is plain storage with
// range-free reads and writes. Side effects (privilege, streaming
// start/stop, heartbeat reset) live in the GVCP-S handler, which is
// the only thing that knows a particular address is more than a
// number.
package register
