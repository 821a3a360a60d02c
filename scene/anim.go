package scene

// AnimationClip is a named span of animation owned by a model. The
// runtime only advances the playhead; sampling the curves is the
// Sample callback's business.
type AnimationClip struct {
	Name     string
	Duration float64
	Loop     bool

	// Sample, when set, is called once per frame with the current
	// playhead position in seconds.
	Sample func(t float64)
}
