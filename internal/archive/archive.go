// Package archive uploads point-in-time snapshots of submitted team
// worksheets to S3-compatible object storage (R2) for audit retention.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"advisory-backend/internal/config"
	"advisory-backend/internal/events"
	"advisory-backend/internal/services"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver listens for submitted assignments and uploads the team's
// final worksheet as JSON. Uploads run on their own goroutine and never
// block the dispatcher; failures are logged and skipped since the
// database remains the source of truth.
type Archiver struct {
	client       *s3.Client
	bucket       string
	distribution *services.DistributionService
}

// New returns nil when archiving is not configured; a nil *Archiver is
// safe to skip at subscription time.
func New(cfg *config.Config, distribution *services.DistributionService) *Archiver {
	if !cfg.Archive.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Archive.Region),
	)
	if err != nil {
		log.Printf("[Archive] Failed to configure client, archiving disabled: %v", err)
		return nil
	}

	endpoint := cfg.Archive.Endpoint
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	log.Printf("[Archive] Snapshot archiving enabled (bucket %s)", cfg.Archive.Bucket)
	return &Archiver{
		client:       client,
		bucket:       cfg.Archive.Bucket,
		distribution: distribution,
	}
}

func (a *Archiver) Handle(e events.Event) {
	if e.Type != events.TypeAssignmentSubmitted {
		return
	}
	go a.snapshot(e)
}

func (a *Archiver) snapshot(e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	view, err := a.distribution.GetTeamView(ctx, e.SheetID, e.TeamID)
	if err != nil {
		log.Printf("[Archive] Snapshot skipped for sheet %d team %d: %v", e.SheetID, e.TeamID, err)
		return
	}

	payload, err := json.Marshal(view)
	if err != nil {
		log.Printf("[Archive] Failed to encode snapshot: %v", err)
		return
	}

	key := fmt.Sprintf("snapshots/sheet-%d/team-%d/%s.json",
		e.SheetID, e.TeamID, e.OccurredAt.UTC().Format("20060102T150405Z"))

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.Printf("[Archive] Upload failed for %s: %v", key, err)
		return
	}
	log.Printf("[Archive] Uploaded %s (%d bytes)", key, len(payload))
}
