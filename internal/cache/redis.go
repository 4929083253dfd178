package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys
const (
	teamViewKeyFmt = "teamview:%d:%d" // sheet id, team id
	progressKeyFmt = "progress:%d:%d"

	teamViewTTL = 5 * time.Minute
	progressTTL = 1 * time.Minute
)

var client *redis.Client

// Init initializes the Redis connection. The backend degrades
// gracefully when Redis is unavailable: every helper no-ops on a nil
// client and reads fall through to Postgres.
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis"
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// InitWithClient wires an externally constructed client; used by tests.
func InitWithClient(c *redis.Client) {
	client = c
}

// Ping reports whether the cache is configured and reachable.
func Ping(ctx context.Context) (bool, error) {
	if client == nil {
		return false, nil
	}
	return true, client.Ping(ctx).Err()
}

// GetTeamView returns the cached serialized team view if present.
func GetTeamView(ctx context.Context, sheetID, teamID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(teamViewKeyFmt, sheetID, teamID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetTeamView caches a serialized team view.
func SetTeamView(ctx context.Context, sheetID, teamID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(teamViewKeyFmt, sheetID, teamID), data, teamViewTTL)
}

// GetProgress returns the cached serialized progress metric if present.
func GetProgress(ctx context.Context, sheetID, teamID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(progressKeyFmt, sheetID, teamID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetProgress caches a serialized progress metric.
func SetProgress(ctx context.Context, sheetID, teamID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(progressKeyFmt, sheetID, teamID), data, progressTTL)
}

// InvalidateTeam drops the cached view and progress for one (sheet,
// team) pair, called after any response mutation.
func InvalidateTeam(ctx context.Context, sheetID, teamID int) {
	if client == nil {
		return
	}
	client.Del(ctx,
		fmt.Sprintf(teamViewKeyFmt, sheetID, teamID),
		fmt.Sprintf(progressKeyFmt, sheetID, teamID))
}

// InvalidateSheet drops cached views for every team on the sheet, used
// after backfill adds rows across all assignments.
func InvalidateSheet(ctx context.Context, sheetID int) {
	if client == nil {
		return
	}
	for _, pattern := range []string{
		fmt.Sprintf("teamview:%d:*", sheetID),
		fmt.Sprintf("progress:%d:*", sheetID),
	} {
		iter := client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
}
