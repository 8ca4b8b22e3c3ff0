package core

// Attachment is a file captured around a workload phase, typically a
// screenshot written to the device working directory.
type Attachment struct {
	Name        string `yaml:"name"`
	ContentType string `yaml:"contentType"`
	Path        string `yaml:"path"`
}

const (
	AttachmentScreenshot = "screenshot"
	ContentTypePNG       = "image/png"
)

// NewScreenshotAttachment describes a PNG at path.
func NewScreenshotAttachment(path string) Attachment {
	return Attachment{Name: AttachmentScreenshot, ContentType: ContentTypePNG, Path: path}
}

// ArtifactConfig selects the phase outcomes that get a screenshot.
type ArtifactConfig struct {
	CaptureOnFailure bool `yaml:"captureOnFailure"`
	CaptureOnSuccess bool `yaml:"captureOnSuccess"`
}

// DefaultArtifactConfig captures failed and errored phases only.
func DefaultArtifactConfig() ArtifactConfig {
	return ArtifactConfig{CaptureOnFailure: true}
}

// ShouldCapture reports whether a phase ending in status gets a screenshot.
// Skipped and in-flight phases never do.
func (c ArtifactConfig) ShouldCapture(status PhaseStatus) bool {
	if status.IsSuccess() {
		return c.CaptureOnSuccess
	}
	return (status == StatusFailed || status == StatusErrored) && c.CaptureOnFailure
}
