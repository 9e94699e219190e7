package level

import (
	"errors"

	"github.com/l1jgo/director/internal/core/task"
)

// ErrFadeActive is returned by a fade routine started while another fade on
// the same level is still running.
var ErrFadeActive = errors.New("level: fade transition already running")

// Brightness is the shader parameter the fade writes.
const Brightness = "brightness"

var (
	fadeOutSteps = [...]float64{0.75, 0.5, 0.25, 0.0}
	fadeInSteps  = [...]float64{0.25, 0.5, 0.75, 1.0}
)

// FadeTransition returns a routine that steps st.Fade's brightness once per
// resume after the first: five resumes, four writes. A nil Fade makes the
// steps silent.
func FadeTransition(st *State, fadeOut bool) task.Routine {
	steps := fadeInSteps
	if fadeOut {
		steps = fadeOutSteps
	}
	return func(co *task.Co) error {
		if st.fading {
			return ErrFadeActive
		}
		st.fading = true
		defer func() { st.fading = false }()

		for _, v := range steps {
			co.Next()
			if st.Fade != nil {
				st.Fade.SetFloatParam(Brightness, v)
			}
		}
		return nil
	}
}
