package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"vidtube/backend/internal/model"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func getBoolFromRecord(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	b, _ := val.(bool)
	return b
}

func getMapFromRecord(record *neo4j.Record, key string) map[string]interface{} {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	m, _ := val.(map[string]interface{})
	return m
}

func getStringFromMap(m map[string]interface{}, key string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromMap(m map[string]interface{}, key string) int64 {
	val, ok := m[key]
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if f, ok := val.(float64); ok {
		return int64(f)
	}
	return 0
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func getTimeFromMap(m map[string]interface{}, key string) time.Time {
	// Neo4j datetime values come as time.Time
	if t, ok := m[key].(time.Time); ok {
		return t.UTC()
	}
	return time.Time{}
}

func getStringSliceFromMap(m map[string]interface{}, key string) []string {
	slice, ok := m[key].([]interface{})
	if !ok {
		return []string{}
	}
	result := make([]string, 0, len(slice))
	for _, v := range slice {
		if str, ok := v.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

// ============================================================================
// Node decoders
// ============================================================================

func userFromMap(m map[string]interface{}) *model.User {
	return &model.User{
		ID:        getStringFromMap(m, "id"),
		Username:  getStringFromMap(m, "username"),
		FullName:  getStringFromMap(m, "full_name"),
		Avatar:    getStringFromMap(m, "avatar"),
		CreatedAt: getTimeFromMap(m, "created_at"),
	}
}

func videoFromMap(m map[string]interface{}) *model.Video {
	return &model.Video{
		ID:          getStringFromMap(m, "id"),
		Title:       getStringFromMap(m, "title"),
		Description: getStringFromMap(m, "description"),
		Owner:       getStringFromMap(m, "owner_id"),
		Views:       getInt64FromMap(m, "views"),
		IsPublished: getBoolFromMap(m, "is_published"),
		CreatedAt:   getTimeFromMap(m, "created_at"),
	}
}

func commentFromMap(m map[string]interface{}) *model.Comment {
	return &model.Comment{
		ID:        getStringFromMap(m, "id"),
		Content:   getStringFromMap(m, "content"),
		Video:     getStringFromMap(m, "video_id"),
		Owner:     getStringFromMap(m, "owner_id"),
		CreatedAt: getTimeFromMap(m, "created_at"),
		UpdatedAt: getTimeFromMap(m, "updated_at"),
	}
}

func tweetFromMap(m map[string]interface{}) *model.Tweet {
	return &model.Tweet{
		ID:        getStringFromMap(m, "id"),
		Content:   getStringFromMap(m, "content"),
		Owner:     getStringFromMap(m, "owner_id"),
		CreatedAt: getTimeFromMap(m, "created_at"),
		UpdatedAt: getTimeFromMap(m, "updated_at"),
	}
}

func playlistFromMap(m map[string]interface{}) *model.Playlist {
	return &model.Playlist{
		ID:          getStringFromMap(m, "id"),
		Name:        getStringFromMap(m, "name"),
		Description: getStringFromMap(m, "description"),
		Owner:       getStringFromMap(m, "owner_id"),
		Videos:      getStringSliceFromMap(m, "videos"),
		CreatedAt:   getTimeFromMap(m, "created_at"),
		UpdatedAt:   getTimeFromMap(m, "updated_at"),
	}
}

func edgeFromMap(m map[string]interface{}) model.Edge {
	return model.Edge{
		ID: getStringFromMap(m, "id"),
		Key: model.EdgeKey{
			Kind:  model.EdgeKind(getStringFromMap(m, "kind")),
			Actor: getStringFromMap(m, "actor_id"),
			Target: model.Target{
				Kind: model.TargetKind(getStringFromMap(m, "target_kind")),
				ID:   getStringFromMap(m, "target_id"),
			},
		},
		CreatedAt: getTimeFromMap(m, "created_at"),
	}
}
