package main

import (
	_ "expvar"         // /debug/vars
	_ "net/http/pprof" // /debug/pprof
)

func main() {
	startWithDig()
}
