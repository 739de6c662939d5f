package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// VacancySummaryKey caches the condensed requirements summary per vacancy
// text, so repeated sessions for the same vacancy skip the summarization call.
func VacancySummaryKey(vacancyText string) string {
	sum := sha256.Sum256([]byte(vacancyText))
	return "vacancy:summary:" + hex.EncodeToString(sum[:16])
}

// QuestionsKey caches recommended-question generation per vacancy id.
func QuestionsKey(vacancyID string) string {
	return "vacancy:questions:" + vacancyID
}
