package sensor

import "strconv"

// Counter files read below a network interface directory.
const (
	TxBytesFile = "statistics/tx_bytes"
	RxBytesFile = "statistics/rx_bytes"
)

// Counters are the raw byte counters of a network interface.
type Counters struct {
	Tx uint64
	Rx uint64
}

// Network sensors publish tx and rx rates in bytes per second. The first
// sample only sets the baseline.
var Network = Kind[Counters]{
	Prefix:  "net",
	Handler: HandlerFunc[Counters](readNetwork),
}

func readNetwork(st State[Counters]) (Counters, []Reading, error) {
	tx, err := ReadValue[uint64](st.Path, TxBytesFile)
	if err != nil {
		return Counters{}, nil, err
	}
	rx, err := ReadValue[uint64](st.Path, RxBytesFile)
	if err != nil {
		return Counters{}, nil, err
	}
	next := Counters{Tx: tx, Rx: rx}

	if st.Last == nil {
		return next, nil, nil
	}

	secs := float32(st.Now.Sub(st.Last.ObservedAt).Seconds())
	prev := st.Last.Value
	return next, []Reading{
		{Suffix: "/tx", Payload: formatRate(next.Tx-prev.Tx, secs)},
		{Suffix: "/rx", Payload: formatRate(next.Rx-prev.Rx, secs)},
	}, nil
}

// formatRate does not correct counter wraparound; a counter reset shows up as
// a huge rate for one cycle.
func formatRate(delta uint64, secs float32) string {
	return strconv.FormatFloat(float64(float32(delta)/secs), 'f', 0, 32)
}
