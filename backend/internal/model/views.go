package model

import "time"

// VideoView is a video with its like aggregate relative to a viewer
type VideoView struct {
	Video
	OwnerSummary UserSummary `json:"owner_summary"`
	LikeCount    int64       `json:"like_count"`
	IsLiked      bool        `json:"is_liked"`
}

// CommentView is a comment with its owner and like aggregate
type CommentView struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Video     string      `json:"video"`
	Owner     UserSummary `json:"owner"`
	CreatedAt time.Time   `json:"created_at"`
	LikeCount int64       `json:"like_count"`
	IsLiked   bool        `json:"is_liked"`
}

// TweetView is a tweet with its owner and like aggregate
type TweetView struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Owner     UserSummary `json:"owner"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	LikeCount int64       `json:"like_count"`
	IsLiked   bool        `json:"is_liked"`
	IsOwner   bool        `json:"is_owner"`
}

// ChannelStats aggregates a channel's content and audience. Missing parts are zero.
type ChannelStats struct {
	SubscriberCount int64 `json:"subscriber_count"`
	TotalVideos     int64 `json:"total_videos"`
	TotalLikes      int64 `json:"total_likes"`
	TotalViews      int64 `json:"total_views"`
	TotalTweets     int64 `json:"total_tweets"`
}

// ChannelVideo is a row of the channel dashboard
type ChannelVideo struct {
	Video
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
}

// Subscribers lists the users subscribed to a channel
type Subscribers struct {
	Subscribers      []UserSummary `json:"subscribers"`
	SubscribersCount int64         `json:"subscribers_count"`
}

// SubscribedChannel is a channel as seen from a requesting viewer
type SubscribedChannel struct {
	UserSummary
	SubscribersCount int64 `json:"subscribers_count"`
	IsSubscribed     bool  `json:"is_subscribed"`
}

// SubscribedChannels lists the channels a user subscribes to
type SubscribedChannels struct {
	Channels      []SubscribedChannel `json:"channels"`
	ChannelsCount int64               `json:"channels_count"`
}

// LikedVideo is a published video liked by the viewer
type LikedVideo struct {
	Video
	OwnerSummary UserSummary `json:"owner_summary"`
	LikedAt      time.Time   `json:"liked_at"`
}

// PlaylistMembership reports whether a video is in one of the viewer's playlists
type PlaylistMembership struct {
	PlaylistID     string `json:"playlist_id"`
	Name           string `json:"name"`
	IsVideoPresent bool   `json:"is_video_present"`
}
