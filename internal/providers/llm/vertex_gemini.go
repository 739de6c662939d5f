package llm

import (
	"context"
	"sync"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

// VertexGemini talks to Gemini models through the Vertex AI SDK. Auth comes
// from application default credentials; only project/location are configured.
type VertexGemini struct {
	projectID string
	location  string
	log       *logrus.Logger

	once   sync.Once
	client *vertexgenai.Client
	initEr error
}

func NewVertexGemini(snap settings.Snapshot, log *logrus.Logger) *VertexGemini {
	return &VertexGemini{
		projectID: snap.VertexProjectID,
		location:  snap.VertexLocation,
		log:       log,
	}
}

func (v *VertexGemini) Name() string { return "vertex_gemini" }

func (v *VertexGemini) SupportedModels() []string {
	return []string{"gemini-1.5-flash", "gemini-1.5-pro"}
}

func (v *VertexGemini) getClient(ctx context.Context) (*vertexgenai.Client, error) {
	v.once.Do(func() {
		v.client, v.initEr = vertexgenai.NewClient(ctx, v.projectID, v.location)
	})
	return v.client, v.initEr
}

func (v *VertexGemini) GenerateText(ctx context.Context, prompt, model string, temperature float64) (Result, error) {
	const op = "VertexGemini.GenerateText"

	if v.projectID == "" {
		return Result{}, utils.E(utils.CodeProviderConfig, op, "Vertex AI project ID is not configured", nil)
	}

	model, substituted := normalizeModel(v.log, v.Name(), model, v.SupportedModels())

	client, err := v.getClient(ctx)
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "failed to create vertex client", err)
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(float32(temperature))

	resp, err := m.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "vertex generation failed", err)
	}

	var text string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				text += string(t)
			}
		}
	}
	if text == "" {
		return Result{}, utils.E(utils.CodeProviderFailed, op, "vertex returned no text candidates", nil)
	}

	return Result{Text: text, SubstitutedModel: substituted}, nil
}

func (v *VertexGemini) TestConnection(ctx context.Context) bool {
	res, err := v.GenerateText(ctx, "Hello", v.SupportedModels()[0], 0.1)
	if err != nil {
		v.log.WithError(err).Error("vertex connection test failed")
		return false
	}
	return res.Text != ""
}

func (v *VertexGemini) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
