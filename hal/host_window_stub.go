//go:build !tinygo && !cgo

package hal

// RunWindow needs cgo for ebiten; without it callers fall back to RunHeadless.
func RunWindow(_ func(h HAL) func() error) error {
	return ErrNoWindow
}
