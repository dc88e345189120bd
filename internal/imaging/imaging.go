package imaging

import "errors"

const (
	AvatarMaxSide  = 512
	ListingMaxSide = 1920
)

var ErrNotImage = errors.New("Uploaded file is not a supported image")

// Image is a normalised upload ready for storage.
type Image struct {
	Data     []byte
	Ext      string
	MimeType string
}

// Processor validates an upload and bounds its longest side to maxSide.
type Processor interface {
	Normalize(data []byte, maxSide int) (*Image, error)
}
