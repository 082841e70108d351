package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "stayhub/internal/app/handlers/booking"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/dateindex"
	domainuser "stayhub/internal/domain/user"
)

// respondError maps domain failures onto stable HTTP statuses and reason
// codes so clients can branch on the rule that was violated rather than on
// message text.
func respondError(c *gin.Context, err error) {
	var policyErr domainbooking.PolicyError
	var rangeErr domainbooking.RangeError
	var conflictErr dateindex.ConflictError

	switch {
	case errors.Is(err, domainlisting.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &policyErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "reason": string(policyErr.Reason)})
	case errors.As(err, &rangeErr):
		body := gin.H{"error": err.Error(), "reason": string(rangeErr.Reason)}
		if rangeErr.Reason == domainbooking.RangeOverlap {
			body["day"] = rangeErr.Day.String()
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "day": conflictErr.Day.String()})
	case errors.Is(err, bookingapp.ErrConcurrentConflict),
		errors.Is(err, domainlisting.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": "listing changed concurrently, retry"})
	case errors.Is(err, bookingapp.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
