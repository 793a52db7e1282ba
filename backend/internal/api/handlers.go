package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vidtube/backend/internal/engine"
	"vidtube/backend/internal/model"
	apperrors "vidtube/backend/pkg/errors"
)

// Handler adapts HTTP requests to engine operations
type Handler struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewHandler creates a handler over eng
func NewHandler(eng *engine.Engine, log *zap.Logger) *Handler {
	return &Handler{engine: eng, logger: log}
}

type contentRequest struct {
	Content string `json:"content"`
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// bind decodes the JSON body into req. Field rules are enforced by the engine.
func bind(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.NewInvalidArgument("body", "malformed JSON")
	}
	return nil
}

func (h *Handler) page(c *gin.Context) engine.Page {
	return h.engine.ParsePage(c.Query("page"), c.Query("limit"))
}

// ============================================================================
// Likes
// ============================================================================

func (h *Handler) toggleLike(kind model.TargetKind, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := model.Target{Kind: kind, ID: c.Param(param)}
		res, err := h.engine.ToggleLike(c.Request.Context(), viewer(c), target)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}

		message := string(kind) + " unliked successfully"
		if res.Active {
			message = string(kind) + " liked successfully"
		}
		respond(c, http.StatusOK, res, message)
	}
}

func (h *Handler) likedVideos(c *gin.Context) {
	videos, err := h.engine.LikedVideos(c.Request.Context(), viewer(c), h.page(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, videos, "liked videos fetched successfully")
}

// ============================================================================
// Subscriptions
// ============================================================================

func (h *Handler) toggleSubscription(c *gin.Context) {
	res, err := h.engine.ToggleSubscription(c.Request.Context(), viewer(c), c.Param("channelId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "unsubscribed successfully"
	if res.Active {
		message = "subscribed successfully"
	}
	respond(c, http.StatusOK, res, message)
}

func (h *Handler) channelSubscribers(c *gin.Context) {
	subs, err := h.engine.SubscribersOf(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, subs, "subscribers fetched successfully")
}

func (h *Handler) subscribedChannels(c *gin.Context) {
	channels, err := h.engine.ChannelsSubscribedBy(c.Request.Context(), c.Param("subscriberId"), viewer(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, channels, "subscribed channels fetched successfully")
}

// ============================================================================
// Videos & dashboard
// ============================================================================

func (h *Handler) videoView(c *gin.Context) {
	view, err := h.engine.VideoView(c.Request.Context(), c.Param("videoId"), viewer(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, view, "video fetched successfully")
}

func (h *Handler) channelStats(c *gin.Context) {
	stats, err := h.engine.ChannelStats(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, stats, "channel stats fetched successfully")
}

func (h *Handler) channelVideos(c *gin.Context) {
	videos, err := h.engine.ChannelVideos(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, videos, "channel videos fetched successfully")
}

// ============================================================================
// Comments
// ============================================================================

func (h *Handler) videoComments(c *gin.Context) {
	comments, err := h.engine.CommentsForVideo(c.Request.Context(), c.Param("videoId"), viewer(c), h.page(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, comments, "comments fetched successfully")
}

func (h *Handler) addComment(c *gin.Context) {
	var req contentRequest
	if err := bind(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	comment, err := h.engine.AddComment(c.Request.Context(), viewer(c), c.Param("videoId"), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, comment, "comment added successfully")
}

func (h *Handler) updateComment(c *gin.Context) {
	var req contentRequest
	if err := bind(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	comment, err := h.engine.UpdateComment(c.Request.Context(), viewer(c), c.Param("commentId"), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, comment, "comment updated successfully")
}

func (h *Handler) deleteComment(c *gin.Context) {
	if err := h.engine.DeleteComment(c.Request.Context(), viewer(c), c.Param("commentId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"comment_id": c.Param("commentId")}, "comment deleted successfully")
}

// ============================================================================
// Tweets
// ============================================================================

func (h *Handler) createTweet(c *gin.Context) {
	var req contentRequest
	if err := bind(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	tweet, err := h.engine.CreateTweet(c.Request.Context(), viewer(c), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, tweet, "tweet created successfully")
}

func (h *Handler) userTweets(c *gin.Context) {
	tweets, err := h.engine.UserTweets(c.Request.Context(), c.Param("userId"), viewer(c), h.page(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, tweets, "tweets fetched successfully")
}

func (h *Handler) updateTweet(c *gin.Context) {
	var req contentRequest
	if err := bind(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	tweet, err := h.engine.UpdateTweet(c.Request.Context(), viewer(c), c.Param("tweetId"), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, tweet, "tweet updated successfully")
}

func (h *Handler) deleteTweet(c *gin.Context) {
	if err := h.engine.DeleteTweet(c.Request.Context(), viewer(c), c.Param("tweetId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tweet_id": c.Param("tweetId")}, "tweet deleted successfully")
}

// ============================================================================
// Playlists
// ============================================================================

func (h *Handler) createPlaylist(c *gin.Context) {
	var req playlistRequest
	if err := bind(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	playlist, err := h.engine.CreatePlaylist(c.Request.Context(), viewer(c), req.Name, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, playlist, "playlist created successfully")
}

func (h *Handler) getPlaylist(c *gin.Context) {
	playlist, err := h.engine.Playlist(c.Request.Context(), c.Param("playlistId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, playlist, "playlist fetched successfully")
}

func (h *Handler) userPlaylists(c *gin.Context) {
	playlists, err := h.engine.UserPlaylists(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, playlists, "playlists fetched successfully")
}

func (h *Handler) updatePlaylist(c *gin.Context) {
	var req playlistRequest
	if err := bind(c, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	playlist, err := h.engine.UpdatePlaylist(c.Request.Context(), viewer(c), c.Param("playlistId"), req.Name, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, playlist, "playlist updated successfully")
}

func (h *Handler) deletePlaylist(c *gin.Context) {
	if err := h.engine.DeletePlaylist(c.Request.Context(), viewer(c), c.Param("playlistId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"playlist_id": c.Param("playlistId")}, "playlist deleted successfully")
}

func (h *Handler) addVideoToPlaylist(c *gin.Context) {
	playlist, err := h.engine.AddVideoToPlaylist(c.Request.Context(), viewer(c), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, playlist, "video added to playlist successfully")
}

func (h *Handler) removeVideoFromPlaylist(c *gin.Context) {
	playlist, err := h.engine.RemoveVideoFromPlaylist(c.Request.Context(), viewer(c), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, playlist, "video removed from playlist successfully")
}

func (h *Handler) playlistMembership(c *gin.Context) {
	memberships, err := h.engine.PlaylistMembership(c.Request.Context(), viewer(c), c.Param("videoId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, memberships, "playlists fetched successfully")
}

func (h *Handler) isMember(c *gin.Context) {
	member, err := h.engine.IsMember(c.Request.Context(), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"is_member": member}, "membership fetched successfully")
}
