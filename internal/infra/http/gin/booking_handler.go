package ginserver

import (
	"fmt"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	bookingapp "stayhub/internal/app/handlers/booking"
)

const dateLayout = "2006-01-02"

type BookingHandler struct {
	Commands commands.Bus
}

type createBookingRequest struct {
	ListingID string `json:"listing_id"`
	Source    string `json:"source"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := bookingapp.CreateBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       req.ListingID,
		TenantID:        user.ID,
		Source:          req.Source,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
}

var _ BookingHTTP = BookingHandler{}
