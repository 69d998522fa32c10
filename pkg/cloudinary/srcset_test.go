package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdd-community/website-backend/internal/models"
)

func TestExtractPublicID(t *testing.T) {
	assert.Equal(t,
		"v1700000000/events/evt-1/p1",
		ExtractPublicID("https://res.cloudinary.com/demo/image/upload/v1700000000/events/evt-1/p1.jpg"))

	assert.Equal(t,
		"v1700000000/events/evt-1/p1",
		ExtractPublicID("https://res.cloudinary.com/demo/image/upload/f_auto,q_auto/v1700000000/events/evt-1/p1.png"))

	assert.Empty(t, ExtractPublicID("https://example.com/photo.jpg"))
	assert.Empty(t, ExtractPublicID("https://res.cloudinary.com/demo/image/upload/no-version/photo.jpg"))
}

func TestAddSrcSet_BuildsScaledVariants(t *testing.T) {
	photo := models.Photo{
		Key:    "events/evt-1/p1",
		Src:    "https://res.cloudinary.com/demo/image/upload/v1700000000/events/evt-1/p1.jpg",
		Width:  1600,
		Height: 900,
	}

	out := AddSrcSet(photo, "demo")

	require.Len(t, out.SrcSet, len(srcSetWidths))
	assert.Equal(t, 300, out.SrcSet[0].Width)
	assert.Equal(t, 169, out.SrcSet[0].Height)
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/f_jpg,q_auto,c_scale,w_300/v1700000000/events/evt-1/p1.jpg",
		out.SrcSet[0].Src)
	assert.Equal(t, 2000, out.SrcSet[len(out.SrcSet)-1].Width)
}

func TestAddSrcSet_NonCloudinaryPhotoUnchanged(t *testing.T) {
	photo := models.Photo{Src: "https://example.com/p1.jpg", Width: 800, Height: 600}
	assert.Empty(t, AddSrcSet(photo, "demo").SrcSet)
}

func TestAddSrcSet_MissingDimensionsUnchanged(t *testing.T) {
	photo := models.Photo{Src: "https://res.cloudinary.com/demo/image/upload/v1/p1.jpg"}
	assert.Empty(t, AddSrcSet(photo, "demo").SrcSet)
}
