package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vidtube/backend/pkg/errors"
)

func TestValidateID(t *testing.T) {
	id := NewID()

	assert.NoError(t, ValidateID("video id", id))

	for _, bad := range []string{"", "not-a-uuid", strings.ToUpper(id), "{" + id + "}"} {
		err := ValidateID("video id", bad)
		require.Error(t, err, bad)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidArgument), bad)
	}
}

func TestEdgeKey_Validate(t *testing.T) {
	actor, other := NewID(), NewID()

	tests := []struct {
		name    string
		key     EdgeKey
		errType apperrors.ErrorType
	}{
		{"like video", LikeKey(actor, VideoTarget(other)), ""},
		{"like comment", LikeKey(actor, CommentTarget(other)), ""},
		{"like tweet", LikeKey(actor, TweetTarget(other)), ""},
		{"subscribe", SubscriptionKey(actor, other), ""},
		{"like channel", LikeKey(actor, ChannelTarget(other)), apperrors.ErrorTypeInvalidArgument},
		{"subscribe to video", EdgeKey{Kind: EdgeSubscription, Actor: actor, Target: VideoTarget(other)}, apperrors.ErrorTypeInvalidArgument},
		{"missing actor", LikeKey("", VideoTarget(other)), apperrors.ErrorTypeInvalidArgument},
		{"malformed target", LikeKey(actor, VideoTarget("v1")), apperrors.ErrorTypeInvalidArgument},
		{"self subscription", SubscriptionKey(actor, actor), apperrors.ErrorTypeInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsErrorType(err, tt.errType), "got %v", err)
		})
	}
}

func TestEdgeKey_String(t *testing.T) {
	key := LikeKey("u1", CommentTarget("c1"))
	assert.Equal(t, "like:comment:c1:u1", key.String())
	assert.NotEqual(t, key.String(), LikeKey("u1", TweetTarget("c1")).String())
}

func TestPlaylist_Contains(t *testing.T) {
	p := &Playlist{Videos: []string{"a", "b"}}
	assert.True(t, p.Contains("b"))
	assert.False(t, p.Contains("c"))
}

func TestUser_SummaryNil(t *testing.T) {
	var u *User
	assert.Equal(t, UserSummary{}, u.Summary())
}
