package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"buidl-explorer-go/pkg/services"
)

// Scrape runs the scraper and streams its output as server-sent events: one
// unnamed event per line, then "done", or "error" if the scraper failed.
func Scrape(service *services.ScrapeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		scrape, err := service.Reserve()
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		lines := make(chan string, 64)
		result := make(chan error, 1)
		go func() {
			defer close(lines)
			result <- scrape.Run(ctx, func(line string) {
				select {
				case lines <- line:
				case <-ctx.Done():
				}
			})
		}()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.Stream(func(w io.Writer) bool {
			line, ok := <-lines
			if ok {
				c.SSEvent("", line)
				return true
			}

			if err := <-result; err != nil {
				c.SSEvent("error", err.Error())
				return false
			}
			c.SSEvent("done", "complete")
			return false
		})
	}
}
