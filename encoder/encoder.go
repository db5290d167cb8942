package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// BytesPerSecond is the raw s16le data rate at the capture settings above.
const BytesPerSecond = SampleRate * Channels * BitsPerSample / 8
