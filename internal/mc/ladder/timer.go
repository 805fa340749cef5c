package ladder

// TimerState tracks one OUT_T instance across scans. Setpoint and
// Current are both in 100ms units.
type TimerState struct {
	Running  bool
	StartNs  int64
	Setpoint int
	Current  int
}

// CounterState tracks one OUT_C instance, positive-edge triggered.
type CounterState struct {
	Count     int
	Setpoint  int
	PrevInput bool
}
