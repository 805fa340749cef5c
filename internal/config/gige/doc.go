// Package gige provides a YAML-backed registry of camera identity and
// image-source defaults for the GVCP/GVSP emulator, in the shape of
// the teacher's device registry: a map of named profiles loaded once
// and saved atomically.
package gige
