package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"combineapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const TypeOutfitPruneStale = "outfit:prune_stale"

// Suggestions the user never acted on block their item combinations from
// being generated again. After this window they are deleted to free the
// combination space.
const staleSuggestionWindow = 45 * 24 * time.Hour

type PruneStaleSuggestionsPayload struct {
	OlderThanDays int `json:"older_than_days"`
}

// NewClient initializes an asynq client for enqueuing tasks
func NewClient() (*asynq.Client, error) {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}), nil
}

func NewPruneStaleSuggestionsTask() (*asynq.Task, error) {
	payload, err := json.Marshal(PruneStaleSuggestionsPayload{
		OlderThanDays: int(staleSuggestionWindow / (24 * time.Hour)),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOutfitPruneStale, payload), nil
}

// HandlePruneStaleSuggestionsTask deletes suggested outfits older than the
// window. Worn and disliked outfits are never pruned, they carry user intent.
func HandlePruneStaleSuggestionsTask(ctx context.Context, t *asynq.Task, db *gorm.DB) error {
	var payload PruneStaleSuggestionsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	days := payload.OlderThanDays
	if days <= 0 {
		days = int(staleSuggestionWindow / (24 * time.Hour))
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	fmt.Printf("[Prune] Deleting suggested outfits older than %s\n", cutoff.Format(time.RFC3339))

	result := db.WithContext(ctx).
		Where("status = ? and created_at < ?", models.StatusSuggested, cutoff).
		Delete(&models.Outfit{})
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Prune] Error deleting stale suggestions: %v", result.Error))
		return result.Error
	}
	fmt.Printf("[Prune] Deleted %d stale suggested outfits\n", result.RowsAffected)
	return nil
}
