package controllers

import (
	"io"
	"net/http"
	"strings"

	"food-ordering/realtime"

	"github.com/gin-gonic/gin"
)

type EventsController struct {
	hub *realtime.Hub
}

func NewEventsController(hub *realtime.Hub) *EventsController {
	return &EventsController{hub: hub}
}

type topicRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// Stream godoc
// @Summary Subscribe to realtime events
// @Description Server-sent event stream; join topics such as order-12 or public-orders via the topics query parameter. The first event is "connected" and carries the client id used for live join/leave. Broadcast events reach every stream.
// @Tags Events
// @Produce text/event-stream
// @Param topics query string false "Comma-separated topic list"
// @Success 200 {string} string "event stream"
// @Router /api/events [get]
func (ctrl *EventsController) Stream(c *gin.Context) {
	topics := []string{}
	if raw := c.Query("topics"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	sub := ctrl.hub.Subscribe(topics...)
	defer ctrl.hub.Unsubscribe(sub.ID)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("connected", gin.H{"client_id": sub.ID})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(event.Name, event.Data)
			return true
		}
	})
}

// Join godoc
// @Summary Join a topic on a live stream
// @Description Adds a topic, such as order-12, to an already connected event stream identified by the client id from its "connected" event
// @Tags Events
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/events/{clientId}/join [post]
func (ctrl *EventsController) Join(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "topic is required"})
		return
	}

	if !ctrl.hub.Join(c.Param("clientId"), req.Topic) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Stream not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Joined " + req.Topic})
}

// Leave godoc
// @Summary Leave a topic on a live stream
// @Tags Events
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/events/{clientId}/leave [post]
func (ctrl *EventsController) Leave(c *gin.Context) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "topic is required"})
		return
	}

	if !ctrl.hub.Leave(c.Param("clientId"), req.Topic) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Stream not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Left " + req.Topic})
}
