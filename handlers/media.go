package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GetUploadCredentials signs a short-lived set of upload parameters so
// the client can push media straight to the CDN. The server never
// proxies file bytes; it only hands out credentials, which is why the
// endpoint sits behind the media-upload rate limit.
func GetUploadCredentials(c *gin.Context) {
	if cfg.CloudinaryURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Media uploads not configured"})
		return
	}

	cld, err := cloudinary.NewFromURL(cfg.CloudinaryURL)
	if err != nil {
		log.Error().Err(err).Msg("cloudinary init failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload credentials"})
		return
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", cfg.MediaFolder)

	signature, err := api.SignParameters(params, cld.Config.Cloud.APISecret)
	if err != nil {
		log.Error().Err(err).Msg("upload signature failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cloudName": cld.Config.Cloud.CloudName,
		"apiKey":    cld.Config.Cloud.APIKey,
		"timestamp": timestamp,
		"folder":    cfg.MediaFolder,
		"signature": signature,
	})
}
