package stt

import (
	"context"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/settings"
	"github.com/hirevox/hirevox/internal/utils"
)

// GoogleSpeech uses Cloud Speech-to-Text streaming recognition. Auth comes
// from application default credentials.
type GoogleSpeech struct {
	log *logrus.Logger

	once   sync.Once
	client *speech.Client
	initEr error
}

func NewGoogleSpeech(_ settings.Snapshot, log *logrus.Logger) *GoogleSpeech {
	return &GoogleSpeech{log: log}
}

func (g *GoogleSpeech) Name() string { return "google_cloud" }

func (g *GoogleSpeech) SupportedLanguages() []string {
	return []string{"ru-RU", "en-US", "de-DE", "fr-FR", "es-ES"}
}

func (g *GoogleSpeech) getClient(ctx context.Context) (*speech.Client, error) {
	g.once.Do(func() {
		g.client, g.initEr = speech.NewClient(ctx)
	})
	return g.client, g.initEr
}

func (g *GoogleSpeech) CreateRecognizer(ctx context.Context, language string) (Recognizer, error) {
	const op = "GoogleSpeech.CreateRecognizer"

	if language == "" {
		language = "ru-RU"
	}
	supported := false
	for _, l := range g.SupportedLanguages() {
		if l == language {
			supported = true
			break
		}
	}
	if !supported {
		return nil, utils.E(utils.CodeUnsupportedLanguage, op,
			fmt.Sprintf("google speech does not support language %q", language), nil)
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeProviderConfig, op, "failed to create speech client", err)
	}

	return &googleRecognizer{client: client, language: language, log: g.log}, nil
}

func (g *GoogleSpeech) TestConnection(ctx context.Context) bool {
	client, err := g.getClient(ctx)
	if err != nil {
		g.log.WithError(err).Error("google speech connection test failed")
		return false
	}
	// A short-lived stream open/close is the cheapest real probe.
	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		g.log.WithError(err).Error("google speech connection test failed")
		return false
	}
	_ = stream.CloseSend()
	return true
}

// googleRecognizer opens the gRPC stream lazily on the first non-empty chunk.
// A reader goroutine collects interim and final results; FeedChunk surfaces
// the latest interim transcript, FinalResult drains the stream after CloseSend.
type googleRecognizer struct {
	client   *speech.Client
	language string
	log      *logrus.Logger

	stream   speechpb.Speech_StreamingRecognizeClient
	partials chan string
	finals   chan string
	readErr  chan error
	done     bool
}

func (r *googleRecognizer) open(ctx context.Context) error {
	if r.stream != nil {
		return nil
	}

	stream, err := r.client.StreamingRecognize(ctx)
	if err != nil {
		return err
	}

	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz:            SampleRate,
					LanguageCode:               r.language,
					EnableAutomaticPunctuation: true,
				},
				InterimResults: true,
			},
		},
	})
	if err != nil {
		return err
	}

	r.stream = stream
	r.partials = make(chan string, 16)
	r.finals = make(chan string, 16)
	r.readErr = make(chan error, 1)

	go func() {
		defer close(r.partials)
		defer close(r.finals)
		for {
			resp, err := stream.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				r.readErr <- err
				return
			}
			for _, result := range resp.Results {
				if len(result.Alternatives) == 0 {
					continue
				}
				text := result.Alternatives[0].Transcript
				if result.IsFinal {
					r.finals <- text
				} else {
					select {
					case r.partials <- text:
					default: // keep only the freshest interim
					}
				}
			}
		}
	}()

	return nil
}

func (r *googleRecognizer) FeedChunk(ctx context.Context, chunk []byte) (string, error) {
	const op = "googleRecognizer.FeedChunk"

	if len(chunk) == 0 {
		return "", nil
	}
	if err := r.open(ctx); err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to open recognition stream", err)
	}

	err := r.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: chunk},
	})
	if err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to send audio chunk", err)
	}

	// Surface the freshest interim result, if any arrived.
	var latest string
	for {
		select {
		case p, ok := <-r.partials:
			if !ok {
				return latest, nil
			}
			latest = p
		case err := <-r.readErr:
			return "", utils.E(utils.CodeProviderFailed, op, "recognition stream failed", err)
		default:
			return latest, nil
		}
	}
}

func (r *googleRecognizer) FinalResult(ctx context.Context) (string, error) {
	const op = "googleRecognizer.FinalResult"

	if r.stream == nil || r.done {
		return "", nil
	}
	r.done = true

	if err := r.stream.CloseSend(); err != nil {
		return "", utils.E(utils.CodeProviderFailed, op, "failed to close recognition stream", err)
	}

	var final string
	for f := range r.finals {
		if final != "" {
			final += " "
		}
		final += f
	}
	select {
	case err := <-r.readErr:
		return "", utils.E(utils.CodeProviderFailed, op, "recognition stream failed", err)
	default:
	}
	return final, nil
}

func (r *googleRecognizer) Close() error {
	if r.stream != nil && !r.done {
		r.done = true
		return r.stream.CloseSend()
	}
	return nil
}
