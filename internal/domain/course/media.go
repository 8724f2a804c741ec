package course

type MediaStatus string

const (
	MediaStatusUploaded MediaStatus = "uploaded"
)

type MediaRecord struct {
	MediaID         string      `json:"media_id" yaml:"media_id"`
	Status          MediaStatus `json:"status" yaml:"status"`
	DurationSeconds int         `json:"duration_seconds" yaml:"duration_seconds"`
	ClientVideoID   string      `json:"client_video_id,omitempty" yaml:"client_video_id,omitempty"`
}

func (r MediaRecord) Usable() bool {
	return r.Status == MediaStatusUploaded && r.DurationSeconds >= 0
}
