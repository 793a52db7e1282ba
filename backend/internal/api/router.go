package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vidtube/backend/internal/engine"
	"vidtube/backend/internal/model"
)

// RouterConfig configures the HTTP surface
type RouterConfig struct {
	JWTSecret      string
	RequestTimeout time.Duration
	Release        bool
}

// NewRouter builds the gin engine serving /api/v1, /health and /metrics
func NewRouter(eng *engine.Engine, cfg RouterConfig, log *zap.Logger) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := NewHandler(eng, log)
	api := router.Group("/api/v1")
	api.Use(ViewerAuth(cfg.JWTSecret, log))
	if cfg.RequestTimeout > 0 {
		api.Use(requestTimeout(cfg.RequestTimeout))
	}

	likes := api.Group("/likes")
	{
		likes.POST("/toggle/v/:videoId", h.toggleLike(model.TargetVideo, "videoId"))
		likes.POST("/toggle/c/:commentId", h.toggleLike(model.TargetComment, "commentId"))
		likes.POST("/toggle/t/:tweetId", h.toggleLike(model.TargetTweet, "tweetId"))
		likes.GET("/videos", h.likedVideos)
	}

	subscriptions := api.Group("/subscriptions")
	{
		subscriptions.POST("/c/:channelId", h.toggleSubscription)
		subscriptions.GET("/c/:channelId", h.channelSubscribers)
		subscriptions.GET("/u/:subscriberId", h.subscribedChannels)
	}

	api.GET("/videos/:videoId", h.videoView)

	comments := api.Group("/comments")
	{
		comments.GET("/:videoId", h.videoComments)
		comments.POST("/:videoId", h.addComment)
		comments.PATCH("/c/:commentId", h.updateComment)
		comments.DELETE("/c/:commentId", h.deleteComment)
	}

	tweets := api.Group("/tweets")
	{
		tweets.POST("", h.createTweet)
		tweets.GET("/user/:userId", h.userTweets)
		tweets.PATCH("/:tweetId", h.updateTweet)
		tweets.DELETE("/:tweetId", h.deleteTweet)
	}

	playlists := api.Group("/playlists")
	{
		playlists.POST("", h.createPlaylist)
		playlists.GET("/user/:userId", h.userPlaylists)
		playlists.GET("/video/:videoId", h.playlistMembership)
		playlists.PATCH("/add/:videoId/:playlistId", h.addVideoToPlaylist)
		playlists.PATCH("/remove/:videoId/:playlistId", h.removeVideoFromPlaylist)
		playlists.GET("/:playlistId", h.getPlaylist)
		playlists.PATCH("/:playlistId", h.updatePlaylist)
		playlists.DELETE("/:playlistId", h.deletePlaylist)
		playlists.GET("/:playlistId/videos/:videoId", h.isMember)
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/stats/:channelId", h.channelStats)
		dashboard.GET("/videos/:channelId", h.channelVideos)
	}

	return router
}
