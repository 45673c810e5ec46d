package httpresp

import "github.com/gin-gonic/gin"

// Meta carries pagination info for list responses, per the §6 wire envelope.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// OK writes a successful `{success, data}` envelope.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// List writes a successful envelope with pagination metadata.
func List(c *gin.Context, status int, data any, meta Meta) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

// PageMeta computes a Meta from a page/pageSize/totalCount triple.
func PageMeta(page, pageSize int, totalCount int64) Meta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	}
	return Meta{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: int(totalCount),
		TotalPages: totalPages,
	}
}
