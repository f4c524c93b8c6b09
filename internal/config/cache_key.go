package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CompanionsPayloadKey returns the cache key for a published companion day's
// full room payload.
func (r *CacheKeyStruct) CompanionsPayloadKey(classID int, date time.Time) string {
	return fmt.Sprintf("companions:%d:%s:payload", classID, date.Format("2006-01-02"))
}

// PublishEventsChannel returns the Redis PubSub channel name for companion
// publish events consumed by the staff WebSocket stream.
func (r *CacheKeyStruct) PublishEventsChannel() string {
	return "companions:events"
}

var CacheKey = NewCacheKeyStruct()
