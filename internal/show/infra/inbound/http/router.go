package http

import "github.com/gin-gonic/gin"

func RegisterShowRoutes(r gin.IRouter, handler *ShowHandler) {
	shows := r.Group("/shows")
	{
		shows.POST("", handler.CreateShow)
		shows.GET("", handler.ListShows)
		shows.POST("/search", handler.SearchShows)
		shows.GET("/count", handler.CountShows)
		shows.GET("/export", handler.ExportShows)
		shows.GET("/analytics/count", handler.CountLogged)
		shows.GET("/:id", handler.GetShow)
		shows.DELETE("/:id", handler.DeleteShow)
	}
}
