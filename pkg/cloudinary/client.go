// Package cloudinary adapts the media host: uploads into per-event folders,
// deletes by public id, and purges whole folders when an event is removed.
package cloudinary

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/kdd-community/website-backend/internal/config"
)

// UploadResult describes a stored media asset
type UploadResult struct {
	PublicID  string
	URL       string
	Width     int
	Height    int
	CreatedAt time.Time
}

// Host is the media host interface the mutation actions depend on
type Host interface {
	Upload(ctx context.Context, data io.Reader, folder, name string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
	DeleteFolder(ctx context.Context, folder string) error
}

// Client is the Cloudinary-backed Host
type Client struct {
	cld *cloudinary.Cloudinary
}

// NewClient creates a Cloudinary client from configuration
func NewClient(cfg *config.Config) (*Client, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &Client{cld: cld}, nil
}

// Upload stores raw image bytes under the given folder
func (c *Client) Upload(ctx context.Context, data io.Reader, folder, name string) (*UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := c.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:       folder,
		PublicID:     name,
		ResourceType: "image",
		Overwrite:    api.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("upload error: %w", err)
	}

	return &UploadResult{
		PublicID:  resp.PublicID,
		URL:       resp.SecureURL,
		Width:     resp.Width,
		Height:    resp.Height,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// Delete removes a single asset by public id
func (c *Client) Delete(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

// DeleteFolder removes every asset under folder, then the folder itself
func (c *Client) DeleteFolder(ctx context.Context, folder string) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err := c.cld.Admin.DeleteAssetsByPrefix(ctx, admin.DeleteAssetsByPrefixParams{
		Prefix: api.CldAPIArray{folder},
	})
	if err != nil {
		return fmt.Errorf("delete folder assets error: %w", err)
	}
	_, err = c.cld.Admin.DeleteFolder(ctx, admin.DeleteFolderParams{Folder: folder})
	if err != nil {
		return fmt.Errorf("delete folder error: %w", err)
	}
	return nil
}
