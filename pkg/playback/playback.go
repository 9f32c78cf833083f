// Package playback mirrors the seek model of the web player so programmatic
// consumers can drive a rendered solution video the same way the result page
// does.
package playback

import (
	"fmt"
	"strings"
)

// SeekSegments is the number of segments a solution video is divided into
// for seeking. The renderer lays the solution out in three beats (integral
// statement, antiderivative, evaluation), so stepping by thirds lands on
// beat boundaries.
const SeekSegments = 3

// Step returns the seek step for a video of the given duration. The duration
// is only known once the video metadata is loaded; with a zero duration every
// seek is a no-op.
func Step(duration float64) float64 {
	return duration / SeekSegments
}

// Back returns the playhead position after one backward seek, clamped at the
// start of the video.
func Back(current, duration float64) float64 {
	return Clamp(current-Step(duration), duration)
}

// Forward returns the playhead position after one forward seek, clamped at
// the end of the video.
func Forward(current, duration float64) float64 {
	return Clamp(current+Step(duration), duration)
}

// Clamp bounds a playhead position to the playable range of the video.
func Clamp(position, duration float64) float64 {
	if position < 0 {
		return 0
	}
	if position > duration {
		return duration
	}
	return position
}

// CacheBust appends a uniqueness token to an artifact URL so that a cached
// video from an earlier render is never replayed under a new job id.
func CacheBust(url string, token int64) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%st=%d", url, sep, token)
}
