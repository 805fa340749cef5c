// Package devicestore is the thread-safe device-memory model shared by
// the command dispatcher and the ladder engine: a sparse
// deviceType->address->value map, range-checked on write and always
// readable (unmapped addresses default to zero/false), with a
// bit-as-word view for bit devices.
package devicestore
