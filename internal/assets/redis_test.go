package assets

import (
	"context"
	"os"
	"testing"
	"time"
)

// Runs against a real server when SKINFORGE_TEST_REDIS is set, e.g. 127.0.0.1:6379.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SKINFORGE_TEST_REDIS")
	if addr == "" {
		t.Skip("SKINFORGE_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "skinforge-test:"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	key := Key("src", t.Name())
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("expected miss, got hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("bytes"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "bytes" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("expected connection error")
	}
}
