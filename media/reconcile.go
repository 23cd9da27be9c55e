// Package media builds the visual track and renders it with narration audio
// into the final video container.
package media

// EffectiveDuration reconciles the measured narration length against the
// configured cap. Custom scripts play in full; generated scripts are hard
// truncated at the cap as a backstop even when the synthesizer already
// requested a faster speaking rate.
func EffectiveDuration(narrationSeconds, capSeconds float64, customScript bool) float64 {
	if customScript {
		return narrationSeconds
	}
	if narrationSeconds > capSeconds {
		return capSeconds
	}
	return narrationSeconds
}
