// Package gateway orchestrates the commit path of a submission: fetch
// the raw media, normalize or transcode it, and push it into the chosen
// sticker pack, creating the pack on first use.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jarvl/sticker-telegram-bot/internal/media"
	"github.com/Jarvl/sticker-telegram-bot/internal/metrics"
	"github.com/Jarvl/sticker-telegram-bot/internal/packapi"
	"github.com/Jarvl/sticker-telegram-bot/internal/packname"
	"github.com/Jarvl/sticker-telegram-bot/internal/submission"
)

// MediaFetcher resolves an opaque platform file handle to raw bytes.
type MediaFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// Gateway submits pending submissions to the pack-management API.
type Gateway struct {
	fetcher     MediaFetcher
	packs       packapi.Client
	ownerID     int64
	botUsername string
}

// New creates a Gateway. ownerID is the user that owns every created
// sticker set; botUsername is appended to canonical set names.
func New(fetcher MediaFetcher, packs packapi.Client, ownerID int64, botUsername string) *Gateway {
	return &Gateway{
		fetcher:     fetcher,
		packs:       packs,
		ownerID:     ownerID,
		botUsername: botUsername,
	}
}

// Submit fetches, normalizes, and uploads the submission's media into
// the pack with the given display title. On success it returns the
// public URL of the sticker set.
//
// No step is retried: fetch and remote failures propagate to the user
// as the submission's failure reason, and the caller has already
// cleared the pending entry either way.
func (g *Gateway) Submit(ctx context.Context, sub *submission.Pending, packTitle string) (string, error) {
	start := time.Now()

	raw, err := g.fetcher.Fetch(ctx, sub.FileID)
	if err != nil {
		g.recordFailure(sub, packTitle, "fetch")
		return "", fmt.Errorf("failed to fetch media: %w", err)
	}

	item := packapi.Item{Emoji: sub.Emoji}
	switch sub.Kind {
	case submission.KindAnimation:
		item.Format = packapi.FormatVideo
		item.Data, err = media.TranscodeAnimation(ctx, raw, sub.DurationSeconds)
	default:
		item.Format = packapi.FormatStatic
		item.Data, err = media.NormalizeImage(raw)
	}
	if err != nil {
		g.recordFailure(sub, packTitle, "normalize")
		return "", err
	}

	name := packname.Make(packTitle, g.botUsername)

	// Optimistic create: after the first sticker the set usually exists,
	// and trying the create without a prior existence check saves a
	// round trip in that common case. Both branches end in the same
	// state.
	err = g.packs.CreateSet(ctx, g.ownerID, name, packTitle, item)
	if errors.Is(err, packapi.ErrAlreadyExists) {
		log.Debug().
			Str("submission_id", sub.ID).
			Str("set_name", name).
			Msg("Sticker set exists, appending")
		err = g.packs.AddToSet(ctx, g.ownerID, name, item)
	}
	if err != nil {
		g.recordFailure(sub, packTitle, "remote")
		return "", err
	}

	metrics.New("gateway").
		Metric("SubmitMs", float64(time.Since(start).Milliseconds()), metrics.UnitMilliseconds).
		Metric("StickerSizeBytes", float64(len(item.Data)), metrics.UnitBytes).
		Count("Submissions").
		Property("pack", packTitle).
		Property("format", item.Format).
		Flush()

	log.Info().
		Str("submission_id", sub.ID).
		Int64("owner_id", sub.OwnerID).
		Str("set_name", name).
		Str("format", item.Format).
		Dur("elapsed", time.Since(start)).
		Msg("Sticker submitted")

	return packapi.SetURL(name), nil
}

func (g *Gateway) recordFailure(sub *submission.Pending, packTitle, stage string) {
	metrics.New("gateway").
		Count("SubmissionFailures").
		Property("pack", packTitle).
		Property("stage", stage).
		Flush()
	log.Warn().
		Str("submission_id", sub.ID).
		Int64("owner_id", sub.OwnerID).
		Str("stage", stage).
		Msg("Submission failed")
}
