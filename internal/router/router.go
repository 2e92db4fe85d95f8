package router

import (
	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/handler"
)

// Setup 配置 Gin 引擎和路由。
// 未命中其他路由的 GET 路径一律按文章 slug 解析，slug 本身就是公开 URL。
func Setup(api *handler.API) *gin.Engine {
	r := gin.Default()

	r.POST("/micropub", api.HandleMicropub)
	r.GET("/micropub", api.HandleMicropubQuery)
	r.POST("/micropub/media", api.HandleMediaUpload)
	r.GET("/media/:digest", api.HandleMediaFetch)

	r.GET("/", api.ShowIndex)
	r.GET("/archives", api.ShowArchive)
	r.GET("/tag/:tag", api.ShowTagArchive)
	r.GET("/feeds/all.atom.xml", api.HandleAtomFeed)

	r.NoRoute(api.ShowPost)

	return r
}
