package chat

import "github.com/dustin/go-humanize"

// Sat is an amount in satoshis.
type Sat int64

func (s Sat) String() string {
	return humanize.Comma(int64(s)) + " sat"
}
