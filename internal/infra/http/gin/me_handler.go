package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	meapp "stayhub/internal/app/handlers/me"
	"stayhub/internal/app/queries"
)

type MeHandler struct {
	Queries queries.Bus
}

func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[meapp.GuestBookingsQuery, []dto.BookingView](c.Request.Context(), h.Queries, meapp.GuestBookingsQuery{
		TenantID: user.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": result})
}

var _ MeHTTP = MeHandler{}
