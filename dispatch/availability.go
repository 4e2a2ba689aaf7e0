package dispatch

import (
	"slices"

	"github.com/Masterminds/semver/v3"
)

// Platform names an OS as spelled in availability attributes.
type Platform string

const (
	IOS         Platform = "iOS"
	MacOS       Platform = "macOS"
	MacCatalyst Platform = "macCatalyst"
	TVOS        Platform = "tvOS"
	WatchOS     Platform = "watchOS"
	VisionOS    Platform = "visionOS"
)

// Requirement is a minimum OS version on one platform.
type Requirement struct {
	Platform Platform
	Version  string
}

// Availability gates a generated value. The zero value is always available.
type Availability struct {
	Introduced  []Requirement
	Unavailable []Platform
}

// IsEmpty reports whether a imposes no constraint.
func (a Availability) IsEmpty() bool {
	return len(a.Introduced) == 0 && len(a.Unavailable) == 0
}

// Supports reports whether values gated by a exist on p at all.
func (a Availability) Supports(p Platform) bool {
	if slices.Contains(a.Unavailable, p) {
		return false
	}
	if len(a.Introduced) == 0 {
		return true
	}
	for _, r := range a.Introduced {
		if r.Platform == p {
			return true
		}
	}
	return false
}

// Check validates a against a platform and the running OS version on it.
// A nil running version skips the version comparison.
func (a Availability) Check(name string, p Platform, running *semver.Version) error {
	if a.IsEmpty() {
		return nil
	}
	if !a.Supports(p) {
		return &UnavailableError{Name: name, Platform: p}
	}
	if running == nil {
		return nil
	}
	for _, r := range a.Introduced {
		if r.Platform != p || r.Version == "" {
			continue
		}
		min, err := semver.NewVersion(r.Version)
		if err != nil {
			continue
		}
		if running.LessThan(min) {
			return &UnavailableError{Name: name, Platform: p, Version: r.Version}
		}
	}
	return nil
}

// Context carries host state into generated parsers.
type Context struct {
	// Versions holds the running OS version per platform. Only the entry for
	// CurrentPlatform is consulted.
	Versions map[Platform]*semver.Version
}

// Require checks a against CurrentPlatform, which is fixed at build time.
func (c *Context) Require(name string, a Availability) error {
	var running *semver.Version
	if c != nil {
		running = c.Versions[CurrentPlatform]
	}
	return a.Check(name, CurrentPlatform, running)
}
