package core

import "errors"

// Status errors returned by Init and Begin. ErrArg, ErrMalloc and ErrPins are
// the caller-visible error taxonomy of §7: a missing instance or timer, a
// failed allocation, or RGB/clock pins that don't share a GPIO port.
// ErrInvalidWidth and ErrInvalidPlanes split two of Init's argument checks
// out of ErrArg.
var (
	// ErrArg is returned for argument errors not covered by the more
	// specific sentinels below: a nil Core, a short rgbList, or no timer
	// given when the platform also has no default.
	ErrArg = errors.New("hub75: invalid argument")

	// ErrMalloc is returned when a required buffer failed to allocate.
	// Begin checks for a nil framebuffer after make, but make never
	// returns nil (running out of memory is fatal instead), so no path in
	// this package currently returns it. The status is kept distinct from
	// ErrArg and ErrPins so callers written against the spec's three-way
	// taxonomy still compile against this package.
	ErrMalloc = errors.New("hub75: buffer allocation failed")

	// ErrPins is returned by Begin when the RGB data pins and the clock
	// pin do not all resolve to the same GPIO port.
	ErrPins = errors.New("hub75: RGB data pins and clock pin must share a GPIO port")

	// ErrInvalidWidth is returned by Init when width is not positive.
	ErrInvalidWidth = errors.New("hub75: width must be positive")

	// ErrInvalidPlanes is returned by Init when numPlanes is not positive.
	ErrInvalidPlanes = errors.New("hub75: numPlanes must be positive")
)
