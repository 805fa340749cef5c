// Package codec implements the MELSEC MC frame codec: a single
// ParseRequest entry point that discriminates 1E/3E-binary/3E-ASCII/
// 4E-binary/4E-ASCII by leading bytes and normalises all five into one
// Request record, plus response encoders mirroring each frame's
// family.
package codec
