// Package interview runs one live or simulated interview over a bidirectional
// transport: a turn-taking loop coordinating speech recognition, dialogue turn
// generation and speech synthesis.
package interview

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/dialogue"
	"github.com/hirevox/hirevox/internal/prompts"
	"github.com/hirevox/hirevox/internal/providers/llm"
	"github.com/hirevox/hirevox/internal/providers/stt"
	"github.com/hirevox/hirevox/internal/providers/tts"
	"github.com/hirevox/hirevox/internal/utils"
)

type Mode string

const (
	// ModeLive takes candidate input as streamed audio (or typed text) from the
	// transport.
	ModeLive Mode = "live"
	// ModeSimulation generates candidate answers with a second LLM persona.
	ModeSimulation Mode = "simulation"
	// ModeStress is simulation with a deliberately difficult candidate persona.
	ModeStress Mode = "stress"
)

type State string

const (
	StateAwaitingStart  State = "awaiting_start"
	StateContextLoading State = "context_loading"
	StateAwaitingInput  State = "awaiting_input"
	StateRecognizing    State = "recognizing"
	StateGenerating     State = "generating"
	StateSynthesizing   State = "synthesizing"
	StateTerminated     State = "terminated"
)

// MaxRounds bounds simulated interviews so an unterminating dialogue cannot
// run forever.
const MaxRounds = 15

const defaultLanguage = "en"

// Archiver persists the finished transcript. Failures are logged, never fatal
// to the session.
type Archiver func(ctx context.Context, sessionID string, turns []dialogue.Turn, status string) error

// Session owns one interview conversation. All state is confined to the
// goroutine running Run; nothing here is shared across connections.
type Session struct {
	ID        string
	Mode      Mode
	Transport Transport
	LLM       llm.Provider
	STT       stt.Provider
	TTS       tts.Synthesizer

	InterviewerModel string
	CandidateModel   string
	Archive          Archiver
	Log              *logrus.Entry

	// Summarize overrides the built-in vacancy condensation with a cached
	// variant when set.
	Summarize func(ctx context.Context, vacancyText string) (string, error)

	state       State
	turnIndex   int
	history     []dialogue.Turn
	interviewer *dialogue.Chain
	candidate   *dialogue.Chain
	language    string
}

func NewSession(mode Mode, transport Transport, llmProvider llm.Provider, sttProvider stt.Provider, synth tts.Synthesizer, log *logrus.Entry) *Session {
	id := uuid.NewString()
	return &Session{
		ID:        id,
		Mode:      mode,
		Transport: transport,
		LLM:       llmProvider,
		STT:       sttProvider,
		TTS:       synth,
		Log:       log.WithField("session_id", id),
		state:     StateAwaitingStart,
		language:  defaultLanguage,
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) TurnIndex() int { return s.turnIndex }

func (s *Session) History() []dialogue.Turn { return s.history }

// Run drives the session until termination. It always leaves the transport
// closed and the state Terminated.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbound := make(chan Message, 8)
	go s.readLoop(ctx, inbound)

	status := s.run(ctx, inbound)
	s.terminate(ctx, status)
}

// readLoop is the transport-reader stage: it forwards frames to the core loop
// and closes the channel on disconnect.
func (s *Session) readLoop(ctx context.Context, inbound chan<- Message) {
	defer close(inbound)
	for {
		msg, err := s.Transport.Read(ctx)
		if err != nil {
			return
		}
		select {
		case inbound <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) run(ctx context.Context, inbound <-chan Message) string {
	start, err := s.awaitStart(ctx, inbound)
	if err != nil {
		s.emitError(err)
		return "protocol_error"
	}
	if start == nil {
		return "disconnected"
	}

	if err := s.loadContext(ctx, start); err != nil {
		s.emitError(err)
		return "error"
	}
	s.emit(Event{Type: EventStatus, Status: StatusReady})

	// The opening instruction plays the counterpart role for round one.
	input := prompts.OpeningInstruction
	inputSpeaker := dialogue.SpeakerUser

	for {
		s.state = StateGenerating
		question, err := s.interviewer.Predict(ctx, input, dialogue.FormatHistory(s.history))
		if err != nil {
			s.emitError(err)
			return "error"
		}

		s.history = append(s.history, dialogue.Turn{Speaker: inputSpeaker, Text: input})
		s.history = append(s.history, dialogue.Turn{Speaker: dialogue.SpeakerInterviewer, Text: question})
		s.turnIndex++

		s.emit(Event{Type: EventText, Sender: string(dialogue.SpeakerInterviewer), Data: question})
		s.speak(ctx, question)

		if containsClosing(question) {
			return "completed"
		}
		if s.simulated() && s.turnIndex >= MaxRounds {
			s.emit(Event{Type: EventText, Sender: string(dialogue.SpeakerInterviewer), Data: prompts.ClosingTurn})
			s.speak(ctx, prompts.ClosingTurn)
			return "completed"
		}

		answer, done, err := s.nextInput(ctx, inbound, question)
		if err != nil {
			s.emitError(err)
			return "error"
		}
		if done {
			return "disconnected"
		}
		input = answer
		inputSpeaker = dialogue.SpeakerCandidate
		s.emit(Event{Type: EventText, Sender: string(dialogue.SpeakerCandidate), Data: answer})
	}
}

// awaitStart blocks for the first frame, which must be a start_interview
// message. Returns nil without error when the peer disconnected first.
func (s *Session) awaitStart(ctx context.Context, inbound <-chan Message) (*inboundMsg, error) {
	const op = "Session.awaitStart"

	msg, ok := s.next(ctx, inbound)
	if !ok {
		return nil, nil
	}
	if msg.Binary {
		return nil, utils.E(utils.CodeProtocol, op, "expected start_interview message, got audio", nil)
	}

	var start inboundMsg
	if err := json.Unmarshal(msg.Data, &start); err != nil {
		return nil, utils.E(utils.CodeProtocol, op, "first message is not valid JSON", err)
	}
	if start.Type != msgStartInterview {
		return nil, utils.E(utils.CodeProtocol, op, fmt.Sprintf("expected start_interview, got %q", start.Type), nil)
	}
	if strings.TrimSpace(start.VacancyText) == "" {
		return nil, utils.E(utils.CodeProtocol, op, "start_interview requires vacancy_text", nil)
	}
	if start.Language != "" {
		s.language = start.Language
	}
	return &start, nil
}

// loadContext condenses the vacancy with one LLM call and builds the dialogue
// chains. The condensed summary keeps downstream turn prompts short.
func (s *Session) loadContext(ctx context.Context, start *inboundMsg) error {
	s.state = StateContextLoading
	s.emit(Event{Type: EventStatus, Status: StatusContextLoading})

	summarize := s.Summarize
	if summarize == nil {
		summarize = func(ctx context.Context, vacancyText string) (string, error) {
			return s.generate(ctx, fmt.Sprintf(prompts.VacancyTechSummary, vacancyText), s.InterviewerModel)
		}
	}
	summary, err := summarize(ctx, start.VacancyText)
	if err != nil {
		s.Log.WithError(err).Warn("vacancy summarization failed, using raw vacancy text")
		summary = start.VacancyText
	}

	s.interviewer = dialogue.NewChain(s.genFunc(s.InterviewerModel), dialogue.InterviewerTemplate(summary, start.ResumeText, start.GeneratedQuestions))
	if s.simulated() {
		resume := start.ResumeText
		if resume == "" {
			resume = "No resume provided, improvise a plausible background for the vacancy."
		}
		s.candidate = dialogue.NewChain(s.genFunc(s.CandidateModel), dialogue.CandidateTemplate(resume, s.Mode == ModeStress))
	}
	return nil
}

// nextInput produces the counterpart's turn: a simulated candidate answer, or
// live audio/text from the transport. done reports a graceful end request or
// disconnect.
func (s *Session) nextInput(ctx context.Context, inbound <-chan Message, question string) (string, bool, error) {
	if s.simulated() {
		s.state = StateGenerating
		answer, err := s.candidate.Predict(ctx, question, dialogue.FormatHistory(s.history))
		return answer, false, err
	}
	return s.awaitLiveInput(ctx, inbound)
}

func (s *Session) awaitLiveInput(ctx context.Context, inbound <-chan Message) (string, bool, error) {
	const op = "Session.awaitLiveInput"

	var rec stt.Recognizer
	defer func() {
		if rec != nil {
			rec.Close()
		}
	}()

	s.state = StateAwaitingInput
	for {
		msg, ok := s.next(ctx, inbound)
		if !ok {
			return "", true, nil
		}

		if msg.Binary {
			if len(msg.Data) == 0 {
				// End-of-utterance. Zero prior chunks legitimately yields "".
				final, err := s.finishUtterance(ctx, rec)
				rec = nil
				if err != nil {
					return "", false, err
				}
				if final == "" {
					s.state = StateAwaitingInput
					continue
				}
				return final, false, nil
			}

			s.state = StateRecognizing
			if rec == nil {
				created, err := s.STT.CreateRecognizer(ctx, s.language)
				if err != nil {
					return "", false, err
				}
				rec = created
			}
			partial, err := rec.FeedChunk(ctx, msg.Data)
			if err != nil {
				return "", false, err
			}
			if partial != "" {
				s.emit(Event{Type: EventPartialText, Data: partial})
			}
			continue
		}

		var in inboundMsg
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			s.emit(Event{Type: EventError, Code: string(utils.CodeInvalidArgument), Message: "invalid json"})
			continue
		}
		switch in.Type {
		case msgText:
			if strings.TrimSpace(in.Text) == "" {
				s.emit(Event{Type: EventError, Code: string(utils.CodeInvalidArgument), Message: "text message requires text"})
				continue
			}
			return in.Text, false, nil
		case msgEndInterview:
			return "", true, nil
		default:
			s.emit(Event{Type: EventError, Code: string(utils.CodeProtocol), Message: fmt.Sprintf("unexpected message type %q", in.Type)})
		}
	}
}

func (s *Session) finishUtterance(ctx context.Context, rec stt.Recognizer) (string, error) {
	if rec == nil {
		return "", nil
	}
	defer rec.Close()
	return rec.FinalResult(ctx)
}

// speak synthesizes one interviewer turn. Synthesis failure is non-fatal: the
// turn continues with an empty audio event.
func (s *Session) speak(ctx context.Context, text string) {
	if s.TTS == nil {
		return
	}
	s.state = StateSynthesizing
	audio, err := s.TTS.Synthesize(ctx, text)
	if err != nil {
		s.Log.WithError(err).Warn("speech synthesis failed")
		s.emit(Event{Type: EventAudio, Data: ""})
		return
	}
	s.emit(Event{Type: EventAudio, Data: base64.StdEncoding.EncodeToString(audio)})
}

func (s *Session) generate(ctx context.Context, prompt, model string) (string, error) {
	res, err := s.LLM.GenerateText(ctx, prompt, model, 0.7)
	if err != nil {
		return "", err
	}
	if res.SubstitutedModel != "" {
		s.Log.WithFields(logrus.Fields{"requested": model, "used": res.SubstitutedModel}).Warn("model substituted")
	}
	return res.Text, nil
}

func (s *Session) genFunc(model string) dialogue.GenerateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		return s.generate(ctx, prompt, model)
	}
}

func (s *Session) next(ctx context.Context, inbound <-chan Message) (Message, bool) {
	select {
	case msg, ok := <-inbound:
		return msg, ok
	case <-ctx.Done():
		return Message{}, false
	}
}

// emit writes one event, checking transport health first so a result arriving
// after disconnect is discarded instead of blocking.
func (s *Session) emit(ev Event) {
	if !s.Transport.Open() {
		return
	}
	if err := s.Transport.Send(ev); err != nil {
		s.Log.WithError(err).Debug("dropping event, transport write failed")
	}
}

func (s *Session) emitError(err error) {
	s.Log.WithError(err).Error("interview session failed")
	s.emit(Event{Type: EventError, Code: string(utils.ErrCode(err)), Message: err.Error()})
}

func (s *Session) terminate(ctx context.Context, status string) {
	if status == "completed" {
		s.emit(Event{Type: EventStatus, Status: StatusFinished})
	}
	s.state = StateTerminated

	if s.Archive != nil && len(s.history) > 0 {
		if err := s.Archive(ctx, s.ID, s.history, status); err != nil {
			s.Log.WithError(err).Error("transcript archival failed")
		}
	}
	s.Transport.Close()
	s.Log.WithFields(logrus.Fields{"status": status, "turns": s.turnIndex}).Info("interview session terminated")
}

func (s *Session) simulated() bool {
	return s.Mode == ModeSimulation || s.Mode == ModeStress
}

func containsClosing(text string) bool {
	return strings.Contains(strings.ToLower(text), prompts.ClosingPhrase)
}
