package sensor

import "strconv"

// TempFile holds the temperature in millidegrees Celsius.
const TempFile = "temp"

// Temperature sensors publish degrees Celsius with two decimals on the bare
// sensor topic. They keep no state between polls.
var Temperature = Kind[struct{}]{
	Prefix:  "temp",
	Handler: HandlerFunc[struct{}](readTemperature),
}

func readTemperature(st State[struct{}]) (struct{}, []Reading, error) {
	milli, err := ReadValue[int64](st.Path, TempFile)
	if err != nil {
		return struct{}{}, nil, err
	}
	deg := float32(milli) / 1000
	return struct{}{}, []Reading{{
		Suffix:  "",
		Payload: strconv.FormatFloat(float64(deg), 'f', 2, 32),
	}}, nil
}
