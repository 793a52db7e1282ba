package model

import (
	"fmt"
	"strings"
	"time"

	apperrors "vidtube/backend/pkg/errors"
)

// EdgeKind is one of the fixed relationship kinds
type EdgeKind string

const (
	EdgeLike         EdgeKind = "like"
	EdgeSubscription EdgeKind = "subscription"
)

// TargetKind tags the entity an edge points at
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
	TargetChannel TargetKind = "channel"
)

// Target is the tagged variant an edge points at
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func VideoTarget(id string) Target   { return Target{Kind: TargetVideo, ID: id} }
func CommentTarget(id string) Target { return Target{Kind: TargetComment, ID: id} }
func TweetTarget(id string) Target   { return Target{Kind: TargetTweet, ID: id} }
func ChannelTarget(id string) Target { return Target{Kind: TargetChannel, ID: id} }

// Targets builds targets of a single kind from ids
func Targets(kind TargetKind, ids []string) []Target {
	out := make([]Target, 0, len(ids))
	for _, id := range ids {
		out = append(out, Target{Kind: kind, ID: id})
	}
	return out
}

func (t Target) String() string {
	return string(t.Kind) + ":" + t.ID
}

// Accepts reports whether an edge of kind k may point at a target of kind t
func (k EdgeKind) Accepts(t TargetKind) bool {
	switch k {
	case EdgeLike:
		return t == TargetVideo || t == TargetComment || t == TargetTweet
	case EdgeSubscription:
		return t == TargetChannel
	}
	return false
}

// EdgeKey identifies an edge. At most one edge exists per key.
type EdgeKey struct {
	Kind   EdgeKind `json:"kind"`
	Actor  string   `json:"actor"`
	Target Target   `json:"target"`
}

// LikeKey is the key of actor's like on target
func LikeKey(actor string, target Target) EdgeKey {
	return EdgeKey{Kind: EdgeLike, Actor: actor, Target: target}
}

// SubscriptionKey is the key of subscriber's subscription to channel
func SubscriptionKey(subscriber, channel string) EdgeKey {
	return EdgeKey{Kind: EdgeSubscription, Actor: subscriber, Target: ChannelTarget(channel)}
}

// String renders the composite key the stores enforce uniqueness on
func (k EdgeKey) String() string {
	return strings.Join([]string{string(k.Kind), string(k.Target.Kind), k.Target.ID, k.Actor}, ":")
}

// Validate checks the shape of the key. It does not check that the target exists.
func (k EdgeKey) Validate() error {
	if !k.Kind.Accepts(k.Target.Kind) {
		return apperrors.NewInvalidArgument("target", fmt.Sprintf("%s cannot point at %q", k.Kind, k.Target.Kind))
	}
	if err := ValidateID("actor id", k.Actor); err != nil {
		return err
	}
	if err := ValidateID(string(k.Target.Kind)+" id", k.Target.ID); err != nil {
		return err
	}
	if k.Kind == EdgeSubscription && k.Actor == k.Target.ID {
		return apperrors.NewSelfSubscription()
	}
	return nil
}

// Edge is a stored relationship record. Edges are never updated in place.
type Edge struct {
	ID        string    `json:"id"`
	Key       EdgeKey   `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleResult is the state of an edge after a toggle
type ToggleResult struct {
	Active bool `json:"active"`
}
