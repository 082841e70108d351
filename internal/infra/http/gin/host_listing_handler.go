package ginserver

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	listingsapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/infra/storage/s3"
)

type HostListingHandler struct {
	Commands commands.Bus
	Uploader s3.Uploader
}

type createListingRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Type             string `json:"type"`
	PhotoURL         string `json:"photo_url"`
	Address          string `json:"address"`
	City             string `json:"city"`
	Country          string `json:"country"`
	GuestsLimit      int    `json:"guests_limit"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	Currency         string `json:"currency"`
}

func (h HostListingHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := listingsapp.CreateListingCommand{
		HostID:           user.ID,
		Title:            req.Title,
		Description:      req.Description,
		Type:             req.Type,
		PhotoURL:         req.PhotoURL,
		Address:          req.Address,
		City:             req.City,
		Country:          req.Country,
		GuestsLimit:      req.GuestsLimit,
		NightlyRateCents: req.NightlyRateCents,
		Currency:         req.Currency,
	}
	result, err := commands.Dispatch[listingsapp.CreateListingCommand, *dto.ListingView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UploadPhoto stores a listing photo and returns its public URL for use in a
// subsequent create call.
func (h HostListingHandler) UploadPhoto(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads unavailable"})
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo form file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	key := fmt.Sprintf("listings/%s/%s%s", user.ID, uuid.NewString(), ext)
	url, err := h.Uploader.Upload(c.Request.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photo_url": url})
}

var _ HostListingHTTP = HostListingHandler{}
