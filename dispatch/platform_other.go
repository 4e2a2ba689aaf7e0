//go:build !darwin && !ios && !tvos && !watchos && !visionos && !maccatalyst

package dispatch

// CurrentPlatform is empty off Apple platforms; every constrained value is
// unavailable there.
const CurrentPlatform Platform = ""
