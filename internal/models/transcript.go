package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transcript is the archived dialogue of one interview session, stored in
// Mongo so full conversations stay out of the relational tables.
type Transcript struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	Status    string             `bson:"status" json:"status"`         // completed|disconnected|error

	Turns []TranscriptTurn `bson:"turns" json:"turns"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type TranscriptTurn struct {
	Speaker string `bson:"speaker" json:"speaker"` // Interviewer|Candidate|User
	Text    string `bson:"text" json:"text"`
}
