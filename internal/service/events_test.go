package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisEventPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	pub := NewRedisEventPublisher(client, "familytree:member-events", zap.NewNop())
	pub.Publish(context.Background(), MemberEvent{Type: EventMemberCreated, FamilyID: "fam-1", PersonID: "p-1"})

	msgs, err := client.XRange(context.Background(), "familytree:member-events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var ev MemberEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &ev))
	assert.Equal(t, EventMemberCreated, ev.Type)
	assert.Equal(t, "fam-1", ev.FamilyID)
	assert.False(t, ev.At.IsZero())
}

func TestRedisEventPublisher_FailureIsSwallowed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	pub := NewRedisEventPublisher(client, "s", zap.NewNop())
	assert.NotPanics(t, func() {
		pub.Publish(context.Background(), MemberEvent{Type: EventMemberDeleted})
	})
}
