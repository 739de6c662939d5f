package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirevox/hirevox/internal/dialogue"
	"github.com/hirevox/hirevox/internal/prompts"
	"github.com/hirevox/hirevox/internal/providers/llm"
	"github.com/hirevox/hirevox/internal/providers/stt"
	"github.com/hirevox/hirevox/internal/utils"
)

type fakeTransport struct {
	inbound chan Message

	mu     sync.Mutex
	events []Event
	open   bool
}

func newFakeTransport(msgs ...Message) *fakeTransport {
	ch := make(chan Message, len(msgs)+1)
	for _, m := range msgs {
		ch <- m
	}
	return &fakeTransport{inbound: ch, open: true}
}

func (t *fakeTransport) Read(ctx context.Context) (Message, error) {
	select {
	case msg, ok := <-t.inbound:
		if !ok {
			return Message{}, io.EOF
		}
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (t *fakeTransport) Send(ev Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return io.ErrClosedPipe
	}
	t.events = append(t.events, ev)
	return nil
}

func (t *fakeTransport) Open() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = false
	return nil
}

func (t *fakeTransport) eventsByType(kind string) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Event
	for _, ev := range t.events {
		if ev.Type == kind {
			out = append(out, ev)
		}
	}
	return out
}

// fakeLLM scripts interviewer/candidate turns, keyed by the requested model.
type fakeLLM struct {
	calls            atomic.Int64
	interviewerTurns atomic.Int64
	closeAfter       int64 // interviewer emits the closing phrase on this turn; 0 = never
}

func (f *fakeLLM) Name() string                            { return "fake" }
func (f *fakeLLM) SupportedModels() []string               { return []string{"int-model", "cand-model"} }
func (f *fakeLLM) TestConnection(ctx context.Context) bool { return true }

func (f *fakeLLM) GenerateText(ctx context.Context, prompt, model string, temperature float64) (llm.Result, error) {
	f.calls.Add(1)
	if strings.Contains(prompt, "Extract the key technical") {
		return llm.Result{Text: "Go, PostgreSQL, distributed systems"}, nil
	}
	if model == "cand-model" {
		return llm.Result{Text: "I have five years of Go experience."}, nil
	}
	n := f.interviewerTurns.Add(1)
	if f.closeAfter > 0 && n >= f.closeAfter {
		return llm.Result{Text: "Thank you, " + prompts.ClosingPhrase + "."}, nil
	}
	return llm.Result{Text: fmt.Sprintf("Question number %d?", n)}, nil
}

// failingLLM rejects every call with a provider failure.
type failingLLM struct{}

func (failingLLM) Name() string                            { return "failing" }
func (failingLLM) SupportedModels() []string               { return []string{"int-model"} }
func (failingLLM) TestConnection(ctx context.Context) bool { return false }

func (failingLLM) GenerateText(ctx context.Context, prompt, model string, temperature float64) (llm.Result, error) {
	return llm.Result{}, utils.E(utils.CodeProviderFailed, "failingLLM.GenerateText", "backend down", nil)
}

type fakeRecognizer struct {
	chunks int
	final  string
}

func (r *fakeRecognizer) FeedChunk(ctx context.Context, chunk []byte) (string, error) {
	if len(chunk) == 0 {
		return "", nil
	}
	r.chunks++
	return fmt.Sprintf("partial after %d chunks", r.chunks), nil
}

func (r *fakeRecognizer) FinalResult(ctx context.Context) (string, error) { return r.final, nil }
func (r *fakeRecognizer) Close() error                                    { return nil }

type fakeSTT struct {
	created atomic.Int64
	final   string
}

func (f *fakeSTT) Name() string                            { return "fake" }
func (f *fakeSTT) SupportedLanguages() []string            { return []string{"en"} }
func (f *fakeSTT) TestConnection(ctx context.Context) bool { return true }

func (f *fakeSTT) CreateRecognizer(ctx context.Context, language string) (stt.Recognizer, error) {
	f.created.Add(1)
	return &fakeRecognizer{final: f.final}, nil
}

func testEntry() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func startMsg(t *testing.T, vacancy string) Message {
	t.Helper()
	data, err := json.Marshal(inboundMsg{Type: msgStartInterview, VacancyText: vacancy, Language: "en"})
	require.NoError(t, err)
	return Message{Data: data}
}

func newTestSession(mode Mode, transport Transport, provider llm.Provider, recognizers stt.Provider) *Session {
	s := NewSession(mode, transport, provider, recognizers, nil, testEntry())
	s.InterviewerModel = "int-model"
	s.CandidateModel = "cand-model"
	return s
}

func TestMalformedStartTerminatesWithoutProviderCalls(t *testing.T) {
	cases := []Message{
		{Data: []byte(`{"type":"audio_chunk"}`)},
		{Data: []byte(`not json`)},
		{Data: []byte(`{"type":"start_interview","vacancy_text":""}`)},
		{Binary: true, Data: []byte{1, 2, 3}},
	}
	for _, first := range cases {
		provider := &fakeLLM{}
		transport := newFakeTransport(first)
		s := newTestSession(ModeSimulation, transport, provider, nil)

		s.Run(context.Background())

		assert.Equal(t, StateTerminated, s.State())
		assert.EqualValues(t, 0, provider.calls.Load())
		errs := transport.eventsByType(EventError)
		require.Len(t, errs, 1)
		assert.Equal(t, "PROTOCOL", errs[0].Code)
		assert.False(t, transport.Open())
	}
}

func TestSimulationRunsToClosingPhrase(t *testing.T) {
	provider := &fakeLLM{closeAfter: 4}
	transport := newFakeTransport(startMsg(t, "Looking for a backend engineer"))
	s := newTestSession(ModeSimulation, transport, provider, nil)

	s.Run(context.Background())

	assert.Equal(t, StateTerminated, s.State())
	assert.Equal(t, 4, s.TurnIndex())
	assert.Len(t, s.History(), 2*s.TurnIndex())

	// Turns strictly alternate: counterpart then interviewer, per round.
	for i := 0; i < len(s.History()); i += 2 {
		assert.NotEqual(t, dialogue.SpeakerInterviewer, s.History()[i].Speaker)
		assert.Equal(t, dialogue.SpeakerInterviewer, s.History()[i+1].Speaker)
	}

	statuses := transport.eventsByType(EventStatus)
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusContextLoading, statuses[0].Status)
	assert.Equal(t, StatusFinished, statuses[len(statuses)-1].Status)
}

func TestSimulationStopsAtRoundCap(t *testing.T) {
	provider := &fakeLLM{} // never emits the closing phrase
	transport := newFakeTransport(startMsg(t, "vacancy"))
	s := newTestSession(ModeSimulation, transport, provider, nil)

	s.Run(context.Background())

	assert.Equal(t, MaxRounds, s.TurnIndex())
	texts := transport.eventsByType(EventText)
	require.NotEmpty(t, texts)
	assert.Equal(t, prompts.ClosingTurn, texts[len(texts)-1].Data)
}

func TestGenerationFailureEmitsErrorEvent(t *testing.T) {
	transport := newFakeTransport(startMsg(t, "vacancy"))
	s := newTestSession(ModeSimulation, transport, failingLLM{}, nil)

	s.Run(context.Background())

	assert.Equal(t, StateTerminated, s.State())
	errs := transport.eventsByType(EventError)
	require.NotEmpty(t, errs)
	assert.False(t, transport.Open())
}

func TestLiveModeRecognizesUtterance(t *testing.T) {
	provider := &fakeLLM{closeAfter: 2}
	recognizers := &fakeSTT{final: "I worked on billing systems"}
	transport := newFakeTransport(
		startMsg(t, "vacancy"),
		Message{Binary: true, Data: []byte{1, 2}},
		Message{Binary: true, Data: []byte{3, 4}},
		Message{Binary: true, Data: nil}, // end of utterance
	)
	s := newTestSession(ModeLive, transport, provider, recognizers)

	s.Run(context.Background())

	assert.Equal(t, StateTerminated, s.State())
	assert.EqualValues(t, 1, recognizers.created.Load())
	assert.NotEmpty(t, transport.eventsByType(EventPartialText))

	// The recognized utterance becomes the candidate turn in history.
	found := false
	for _, turn := range s.History() {
		if turn.Speaker == dialogue.SpeakerCandidate && turn.Text == "I worked on billing systems" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLiveModeEmptyUtteranceWithoutAudio(t *testing.T) {
	provider := &fakeLLM{}
	recognizers := &fakeSTT{}
	end, err := json.Marshal(inboundMsg{Type: msgEndInterview})
	require.NoError(t, err)
	transport := newFakeTransport(
		startMsg(t, "vacancy"),
		Message{Binary: true, Data: nil}, // end of utterance with zero prior chunks
		Message{Data: end},
	)
	s := newTestSession(ModeLive, transport, provider, recognizers)

	s.Run(context.Background())

	// No recognizer was ever needed and the empty utterance was ignored.
	assert.EqualValues(t, 0, recognizers.created.Load())
	assert.Equal(t, StateTerminated, s.State())
}

func TestLiveModeDisconnectTerminatesCleanly(t *testing.T) {
	provider := &fakeLLM{}
	transport := newFakeTransport(startMsg(t, "vacancy"))
	close(transport.inbound) // peer goes away right after starting

	s := newTestSession(ModeLive, transport, provider, &fakeSTT{})
	s.Run(context.Background())

	assert.Equal(t, StateTerminated, s.State())
	assert.False(t, transport.Open())
}
