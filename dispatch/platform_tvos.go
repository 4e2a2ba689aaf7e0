//go:build tvos && !watchos && !visionos && !maccatalyst

package dispatch

// CurrentPlatform is the platform this binary was built for.
const CurrentPlatform = TVOS
