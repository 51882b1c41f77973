package replica

// MetadataContentType is the metadata key Bucket uses to record the codec's content type.
const MetadataContentType = "content_type"

// Object wraps payload T with its storage key and metadata.
type Object[T any] struct {
	Key         string   `json:"key"`
	ContentType string   `json:"content_type"`
	Size        int64    `json:"size"`
	Metadata    Metadata `json:"metadata,omitempty"`
	Data        T        `json:"data"`
}
