// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/kbeqi/llms-generator/go-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

type EventsHandler struct {
	Usage UsageRecorder
}

func NewEventsHandler(usage UsageRecorder) *EventsHandler {
	return &EventsHandler{Usage: recorderOrNoop(usage)}
}

type clientEvent struct {
	Event string `json:"event" binding:"required"`
	OK    *bool  `json:"ok" binding:"required"`
	Error string `json:"error"`
}

// Record accepts UI outcome reports from the page script. Only "copy" is
// known; a failed copy is logged and never retried.
func (h *EventsHandler) Record(c *gin.Context) {
	var ev clientEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event"})
		return
	}

	switch ev.Event {
	case "copy":
		h.Usage.RecordCopy(*ev.OK)
		if !*ev.OK {
			slog.Warn("Clipboard copy failed in browser",
				"trace_id", middleware.TraceID(c),
				"error", truncate(ev.Error, 200),
			)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event"})
		return
	}

	c.Status(http.StatusNoContent)
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
