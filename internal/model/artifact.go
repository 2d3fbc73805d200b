package model

// Artifact is a rendered image, consumed by delivery right after rendering.
type Artifact struct {
	Bytes    []byte
	Format   string
	Filename string
	Fallback bool // true when the minimal fallback render was used
}
