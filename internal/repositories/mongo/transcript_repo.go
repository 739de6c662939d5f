package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TranscriptRepository interface {
	Insert(ctx context.Context, t *models.Transcript) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Transcript, error)
	ListRecent(ctx context.Context, limit int64) ([]models.Transcript, error)
}

type transcriptRepo struct {
	col *mongo.Collection
}

func NewTranscriptRepo(db *mongo.Database) TranscriptRepository {
	return &transcriptRepo{col: db.Collection("transcripts")}
}

func (r *transcriptRepo) Insert(ctx context.Context, t *models.Transcript) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *transcriptRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Transcript, error) {
	var t models.Transcript
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &t, err
}

func (r *transcriptRepo) ListRecent(ctx context.Context, limit int64) ([]models.Transcript, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Transcript
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
