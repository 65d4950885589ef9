package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisOptionsDefaults(t *testing.T) {
	o := RedisOptions{Port: 6380, Prefix: "px"}.withDefaults()
	assert.Equal(t, "localhost:6380", o.Addr())
	assert.Equal(t, "px", o.Prefix)
	assert.Equal(t, 5*time.Second, o.DialTimeout)

	ro := o.client()
	assert.Equal(t, "localhost:6380", ro.Addr)
	assert.Equal(t, 4, ro.PoolSize)
}

func TestWrapKey(t *testing.T) {
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "sentinel")
	defer c.Close()
	assert.Equal(t, "sentinel:state", c.wrapKey("state"))
}
