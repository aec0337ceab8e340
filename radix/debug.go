package radix

import "log"

// enable tracing of structural mutations
const debug = false

func printf(format string, a ...interface{}) {
	if debug {
		log.Printf(format, a...)
	}
}
