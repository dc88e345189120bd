package vips

import (
	"fmt"

	"github.com/flatfly/flatfly-api/internal/imaging"
	"github.com/h2non/bimg"
)

// Bimg validates and resizes uploads with libvips.
type Bimg struct {
	Quality int
}

func New() *Bimg {
	return &Bimg{Quality: 85}
}

// Normalize checks that data is a JPEG, PNG, WEBP or GIF image, bounds its
// longest side to maxSide and strips metadata. GIFs are re-encoded as PNG.
func (b *Bimg) Normalize(data []byte, maxSide int) (*imaging.Image, error) {
	if len(data) == 0 {
		return nil, imaging.ErrNotImage
	}

	img := bimg.NewImage(data)
	var out bimg.ImageType
	switch bimg.DetermineImageType(data) {
	case bimg.JPEG:
		out = bimg.JPEG
	case bimg.PNG, bimg.GIF:
		out = bimg.PNG
	case bimg.WEBP:
		out = bimg.WEBP
	default:
		return nil, imaging.ErrNotImage
	}

	size, err := img.Size()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imaging.ErrNotImage, err)
	}

	options := bimg.Options{
		Type:          out,
		Quality:       b.Quality,
		StripMetadata: true,
	}
	if maxSide > 0 && (size.Width > maxSide || size.Height > maxSide) {
		if size.Width >= size.Height {
			options.Width = maxSide
		} else {
			options.Height = maxSide
		}
	}

	processed, err := img.Process(options)
	if err != nil {
		return nil, fmt.Errorf("process image: %w", err)
	}

	name := bimg.ImageTypeName(out)
	ext := name
	if out == bimg.JPEG {
		ext = "jpg"
	}
	return &imaging.Image{Data: processed, Ext: ext, MimeType: "image/" + name}, nil
}
