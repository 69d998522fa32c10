package cloudinary

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/kdd-community/website-backend/internal/models"
)

// srcSetWidths are the delivery widths generated for responsive loading
var srcSetWidths = []int{300, 600, 900, 1200, 1600, 2000}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// AddSrcSet attaches responsive delivery variants to a photo. Photos whose
// src is not a Cloudinary delivery URL are returned unchanged.
func AddSrcSet(photo models.Photo, cloudName string) models.Photo {
	publicID := ExtractPublicID(photo.Src)
	if publicID == "" || photo.Width <= 0 || photo.Height <= 0 {
		return photo
	}

	format := strings.TrimPrefix(path.Ext(photo.Src), ".")
	if format == "" {
		format = "jpg"
	}
	base := fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/f_%s,q_auto,c_scale", cloudName, format)

	variants := make([]models.SrcSetEntry, 0, len(srcSetWidths))
	for _, w := range srcSetWidths {
		variants = append(variants, models.SrcSetEntry{
			Src:    fmt.Sprintf("%s,w_%d/%s.%s", base, w, publicID, format),
			Width:  w,
			Height: int(float64(w)*float64(photo.Height)/float64(photo.Width) + 0.5),
		})
	}
	photo.SrcSet = variants
	return photo
}

// ExtractPublicID pulls the versioned public id out of a Cloudinary delivery
// URL, or returns "" if the URL is not one.
func ExtractPublicID(url string) string {
	if !strings.Contains(url, "res.cloudinary.com") {
		return ""
	}
	parts := strings.Split(url, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	if uploadIndex == -1 {
		return ""
	}

	versionIndex := -1
	for i := uploadIndex + 1; i < len(parts); i++ {
		if versionSegment.MatchString(parts[i]) {
			versionIndex = i
			break
		}
	}
	if versionIndex == -1 {
		return ""
	}

	publicID := strings.Join(parts[versionIndex:], "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	return publicID
}
