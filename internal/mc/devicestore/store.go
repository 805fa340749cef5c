package devicestore

import (
	"fmt"
	"sync"

	"github.com/protolab/gigemc/internal/mc/devtype"
)

// Store is the sparse device-memory model for one PLC instance. A
// single mutex guards every access so a batch write or a single
// ladder instruction observes and mutates the store atomically with
// respect to any other caller; since sync.Mutex is not reentrant,
// every exported method takes the lock exactly once and delegates to
// unexported *Locked helpers that assume it is already held.
type Store struct {
	mu     sync.Mutex
	series devtype.Series
	bits   map[devtype.Type]map[int]bool
	words  map[devtype.Type]map[int]uint16
}

// New creates an empty store validated against series's address
// ranges.
func New(series devtype.Series) *Store {
	s := &Store{series: series}
	s.resetLocked()
	return s
}

func (s *Store) resetLocked() {
	s.bits = make(map[devtype.Type]map[int]bool)
	s.words = make(map[devtype.Type]map[int]uint16)
}

// Reset clears all device memory.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func rangeCheck(series devtype.Series, t devtype.Type, addr int) error {
	r, ok := devtype.RangeFor(series, t)
	if !ok || !r.Contains(addr) {
		return fmt.Errorf("devicestore: address %d out of range for %s", addr, t)
	}
	return nil
}

// ReadBit reads a single bit device. Unmapped addresses read false;
// reads are never range-checked.
func (s *Store) ReadBit(t devtype.Type, addr int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readBitLocked(t, addr)
}

func (s *Store) readBitLocked(t devtype.Type, addr int) bool {
	return s.bits[t][addr]
}

// WriteBit writes a single bit device, range-checked against the
// store's series.
func (s *Store) WriteBit(t devtype.Type, addr int, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := rangeCheck(s.series, t, addr); err != nil {
		return err
	}
	s.writeBitLocked(t, addr, v)
	return nil
}

func (s *Store) writeBitLocked(t devtype.Type, addr int, v bool) {
	m, ok := s.bits[t]
	if !ok {
		m = make(map[int]bool)
		s.bits[t] = m
	}
	m[addr] = v
}

// ReadWord reads a single word device, or for a bit device returns the
// bit-as-word view: 16 consecutive bits starting at addr packed
// little-endian, bit i into bit i of the word.
func (s *Store) ReadWord(t devtype.Type, addr int) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readWordLocked(t, addr)
}

func (s *Store) readWordLocked(t devtype.Type, addr int) uint16 {
	if t.IsBit() {
		var w uint16
		for i := 0; i < 16; i++ {
			if s.readBitLocked(t, addr+i) {
				w |= 1 << uint(i)
			}
		}
		return w
	}
	return s.words[t][addr]
}

// WriteWord writes a single word device, or for a bit device mirrors
// the bit-as-word view in reverse, unpacking the 16 bits of v into
// bit(addr+0..15).
func (s *Store) WriteWord(t devtype.Type, addr int, v uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := rangeCheck(s.series, t, addr); err != nil {
		return err
	}
	s.writeWordLocked(t, addr, v)
	return nil
}

func (s *Store) writeWordLocked(t devtype.Type, addr int, v uint16) {
	if t.IsBit() {
		for i := 0; i < 16; i++ {
			s.writeBitLocked(t, addr+i, v&(1<<uint(i)) != 0)
		}
		return
	}
	m, ok := s.words[t]
	if !ok {
		m = make(map[int]uint16)
		s.words[t] = m
	}
	m[addr] = v
}

// BatchReadWords reads count consecutive word-views starting at addr.
// Never fails: unmapped/out-of-range addresses read as zero.
func (s *Store) BatchReadWords(t devtype.Type, addr, count int) []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint16, count)
	for i := range out {
		out[i] = s.readWordLocked(t, addr+i)
	}
	return out
}

// BatchWriteWords writes count consecutive word-views starting at
// addr. Every address is range-checked before any value is written,
// so a failing call leaves the store byte-identical to its pre-call
// state.
func (s *Store) BatchWriteWords(t devtype.Type, addr int, values []uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range values {
		if err := rangeCheck(s.series, t, addr+i); err != nil {
			return err
		}
	}
	for i, v := range values {
		s.writeWordLocked(t, addr+i, v)
	}
	return nil
}

// BatchReadBits reads count consecutive bit devices starting at addr.
func (s *Store) BatchReadBits(t devtype.Type, addr, count int) []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bool, count)
	for i := range out {
		out[i] = s.readBitLocked(t, addr+i)
	}
	return out
}

// BatchWriteBits writes count consecutive bit devices starting at
// addr, all-or-nothing like BatchWriteWords.
func (s *Store) BatchWriteBits(t devtype.Type, addr int, values []bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range values {
		if err := rangeCheck(s.series, t, addr+i); err != nil {
			return err
		}
	}
	for i, v := range values {
		s.writeBitLocked(t, addr+i, v)
	}
	return nil
}

// WithLock runs fn with the store's lock held, for callers (the
// ladder engine) that must execute several reads/writes as one
// atomic step without re-entering the public API under the same lock.
func (s *Store) WithLock(fn func(*Locked)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&Locked{s})
}

// Locked exposes the unexported *Locked store operations to a caller
// already holding the store's lock via WithLock.
type Locked struct {
	s *Store
}

func (l *Locked) ReadBit(t devtype.Type, addr int) bool  { return l.s.readBitLocked(t, addr) }
func (l *Locked) ReadWord(t devtype.Type, addr int) uint16 { return l.s.readWordLocked(t, addr) }

func (l *Locked) WriteBit(t devtype.Type, addr int, v bool) {
	l.s.writeBitLocked(t, addr, v)
}

func (l *Locked) WriteWord(t devtype.Type, addr int, v uint16) {
	l.s.writeWordLocked(t, addr, v)
}

// CheckRange reports whether addr is valid for t under the store's
// series, for callers that need to pre-validate a batch before
// WithLock commits any of it.
func (l *Locked) CheckRange(t devtype.Type, addr int) error {
	return rangeCheck(l.s.series, t, addr)
}
