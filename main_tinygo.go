//go:build tinygo

package main

import (
	"semaphore/app"
	"semaphore/hal"
)

func main() {
	app.Run(hal.New())
}
