package integration

import (
	"context"
	"testing"
	"time"

	chroma "github.com/amikos-tech/chroma-go"
	"github.com/redis/go-redis/v9"
)

// TestChromaDBConnectivity tests basic connection to ChromaDB
// NOTE: ChromaDB Go client (v0.3.0-alpha.1) has v1/v2 API compatibility issues,
// the production code talks to the v2 API over a direct HTTP wrapper instead
func TestChromaDBConnectivity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := chroma.NewClient("http://localhost:8000")
	if err != nil {
		t.Fatalf("Failed to create ChromaDB client: %v", err)
	}

	collections, err := client.ListCollections(ctx)
	if err != nil {
		// May also fail with a v1/v2 API mismatch when ChromaDB IS running
		t.Skipf("ChromaDB not reachable or client API mismatch: %v", err)
		return
	}

	t.Logf("✅ ChromaDB connected successfully. Found %d collections", len(collections))
}

// TestRedisConnectivity tests the Redis operations the job queue relies on
func TestRedisConnectivity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // separate DB for testing
	})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}

	// String set/get with TTL, as used for job records
	testKey := "test:connection:key"
	testValue := "test-value"

	if err := client.Set(ctx, testKey, testValue, 10*time.Second).Err(); err != nil {
		t.Fatalf("Failed to set key: %v", err)
	}

	val, err := client.Get(ctx, testKey).Result()
	if err != nil {
		t.Fatalf("Failed to get key: %v", err)
	}
	if val != testValue {
		t.Fatalf("Expected %s, got %s", testValue, val)
	}

	// List push/pop, as used for job queues
	queueKey := "test:connection:queue"
	if err := client.LPush(ctx, queueKey, "job-1", "job-2").Err(); err != nil {
		t.Fatalf("Failed to push to queue: %v", err)
	}

	popped, err := client.RPop(ctx, queueKey).Result()
	if err != nil {
		t.Fatalf("Failed to pop from queue: %v", err)
	}
	if popped != "job-1" {
		t.Fatalf("Expected job-1, got %s", popped)
	}

	client.Del(ctx, testKey, queueKey)

	t.Logf("✅ Redis connected successfully and queue operations work")
}
