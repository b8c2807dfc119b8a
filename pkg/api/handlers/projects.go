package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"buidl-explorer-go/pkg/services"
)

// Projects serves the merged project list written by the last scrape.
func Projects(store *services.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := store.Projects()
		if err != nil {
			if errors.Is(err, services.ErrNoData) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No data found"})
				return
			}
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}

// Download serves the spreadsheet export as an attachment.
func Download(store *services.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, err := store.ExportPath()
		if err != nil {
			if errors.Is(err, services.ErrNoExport) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Excel file not found"})
				return
			}
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.FileAttachment(path, filepath.Base(path))
	}
}
