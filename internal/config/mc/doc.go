// Package mc provides a YAML-backed registry of MELSEC MC station
// profiles (network/PC/IO/station numbers, per CaptainPineapple's
// station concept) and a default ladder program path for each.
package mc
