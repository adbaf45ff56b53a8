package assoc

import (
	"fmt"
	"io"
)

// reportMismatch writes one line to sink if sampled hypothesis h of observation m disagrees with
// reference. IDs of newborn targets are arbitrary, so any two newborn associations agree.
func (c *core) reportMismatch(sink io.Writer, reference *DataAssociation, m int, h Hypothesis, nextID int) {
	expectedID, associated := reference.TargetOf(m)
	expectedNewborn := associated && expectedID >= c.newbornIDStart

	mismatch := false
	switch h.Kind {
	case Clutter:
		mismatch = associated
	case Newborn:
		mismatch = !expectedNewborn
	case Existing:
		mismatch = !associated || c.targets[h.Target].ID != expectedID
	}
	if !mismatch {
		return
	}

	var sampled string
	switch h.Kind {
	case Clutter:
		sampled = "0 (clutter)"
	case Newborn:
		sampled = fmt.Sprintf("%d (newborn)", nextID)
	default:
		sampled = fmt.Sprintf("%d (%d)", c.targets[h.Target].ID, h.Target)
	}

	var expected string
	switch {
	case !associated:
		expected = "0 (clutter)"
	case expectedNewborn:
		expected = fmt.Sprintf("%d (newborn)", expectedID)
	default:
		expected = fmt.Sprintf("%d (%d)", expectedID, targetIndex(c.targets, expectedID))
	}

	_, err := fmt.Fprintf(sink, "observation %d incorrectly associated to %s instead of %s: %s\n", m, sampled, expected, c.dist.String())
	if err != nil {
		c.log.WithError(err).WithField("observation", m).Warn("can't write association debug report")
	}
}
