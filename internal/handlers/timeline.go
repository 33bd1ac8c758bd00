package handlers

import (
	"net/http"
	"os"
	"time"

	"landlordhq/internal/auth"
	"landlordhq/internal/database"
	"landlordhq/internal/services"

	"github.com/gin-gonic/gin"
)

// timelineNow resolves the reference time for timeline queries. An optional
// ?as_of=YYYY-MM-DD lets the dashboard preview future state.
func timelineNow(c *gin.Context) (time.Time, bool) {
	asOf := c.Query("as_of")
	if asOf == "" {
		return time.Now(), true
	}
	parsed, err := parseDate(asOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid as_of, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return parsed, true
}

// GetTimeline returns the user's classified compliance timeline
func GetTimeline(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	now, ok := timelineNow(c)
	if !ok {
		return
	}

	timelineService := services.NewTimelineService(database.GetDB())
	timeline, err := timelineService.GetTimeline(userID, now)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate timeline", err)
		return
	}

	c.JSON(http.StatusOK, timeline)
}

// GetRemindersPreview returns the events inside the reminder window
func GetRemindersPreview(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	now, ok := timelineNow(c)
	if !ok {
		return
	}

	timelineService := services.NewTimelineService(database.GetDB())
	items, err := timelineService.GetPendingRemindersPreview(userID, now)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to build reminder preview", err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// RunReminderPass triggers a reminder pass across all users. It is meant for
// an external cron and is guarded by a shared secret rather than a user
// session.
func RunReminderPass(scheduler *services.ReminderScheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv("CRON_SECRET")
		if secret == "" || c.GetHeader("X-Cron-Secret") != secret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid cron secret"})
			return
		}

		results, err := scheduler.Run(c.Request.Context(), time.Now())
		if err != nil {
			handleError(c, http.StatusInternalServerError, "Reminder pass failed", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
