// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashMessageCookie  = "flash_message"
	flashCategoryCookie = "flash_category"
	flashMaxAge         = 10
)

type FlashMessage struct {
	Category string
	Message  string
}

// SetFlash stores a one-shot message for the next page render.
func SetFlash(c *gin.Context, category, message string) {
	c.SetCookie(flashMessageCookie, message, flashMaxAge, "/", "", false, false)
	c.SetCookie(flashCategoryCookie, category, flashMaxAge, "/", "", false, false)
}

// PopFlash returns and clears the pending flash message, if any.
func PopFlash(c *gin.Context) []FlashMessage {
	msg, err := c.Cookie(flashMessageCookie)
	if err != nil || msg == "" {
		return nil
	}
	category, _ := c.Cookie(flashCategoryCookie)
	if category == "" {
		category = "info"
	}
	c.SetCookie(flashMessageCookie, "", -1, "/", "", false, false)
	c.SetCookie(flashCategoryCookie, "", -1, "/", "", false, false)
	return []FlashMessage{{Category: category, Message: msg}}
}

// Recovery turns a handler panic into a 500 rendered with error.html.
func Recovery(appVersion string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Panic recovered",
					"trace_id", TraceID(c),
					"error", fmt.Sprint(rec),
					"path", c.Request.URL.Path,
				)
				c.HTML(http.StatusInternalServerError, "error.html", gin.H{
					"AppVersion":    appVersion,
					"CspNonce":      CSPNonce(c),
					"FlashMessages": []FlashMessage{{Category: "danger", Message: "Something went wrong generating your file. Please try again."}},
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
