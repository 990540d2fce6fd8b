package notation

// Staff is the drawable frame of one measure.
type Staff struct {
	X, Y  float64
	Width float64
	// TimeSignature and Clef are drawn as labels when set. Pitches are
	// placed by the voice clef.
	TimeSignature string
	Clef          Clef
}

// Voice is the ordered event sequence of a measure with its beat metadata.
type Voice struct {
	Beats    int
	BeatUnit int
	Clef     Clef
	Events   []Event
}

// Layout is a voice formatted into a width. Offsets[i] is the horizontal
// position of Voice.Events[i] relative to the start of the note area.
type Layout struct {
	Voice   Voice
	Width   float64
	Offsets []float64
}

// Renderer is the drawing surface a measure redraws itself through.
// Implementations own their units; the engine only adds paddings.
type Renderer interface {
	// Clear wipes whatever the last redraw left on the surface.
	Clear() error
	// MinWidth is the narrowest width the voice can be typeset in.
	MinWidth(v Voice) (float64, error)
	// Format lays the voice out within width.
	Format(v Voice, width float64) (Layout, error)
	DrawStaff(s Staff) error
	DrawVoice(s Staff, l Layout) error
}
