// Package dispatch implements the MC command dispatcher: batch and
// random read/write, remote RUN/STOP/PAUSE/RESET, and CPU model read,
// operating on a devicestore.Store and a PlcState.
package dispatch
