//go:build !tinygo && (!linux || disablegpio)

package hal

// NewPeriphGPIO is only available on Linux hosts.
func NewPeriphGPIO(count int) (GPIO, error) {
	_ = count
	return nil, ErrNotImplemented
}
