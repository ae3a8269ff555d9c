//go:build !tinygo || !bootdebug

package app

import "semaphore/hal"

func bootDiagStart(hal.HAL) {}

func bootStep(hal.HAL, string) {}
