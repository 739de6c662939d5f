package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/dialogue"
	"github.com/hirevox/hirevox/internal/interview"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/llm"
	"github.com/hirevox/hirevox/internal/providers/stt"
	"github.com/hirevox/hirevox/internal/providers/tts"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/settings"
)

// SimulationResult is what a background simulation run hands back: the full
// dialogue plus the terminal status.
type SimulationResult struct {
	SessionID string            `json:"session_id"`
	Status    string            `json:"status"`
	Turns     int               `json:"turns"`
	Dialogue  []dialogue.Turn   `json:"dialogue"`
	Events    []interview.Event `json:"-"`
}

type InterviewService interface {
	// Run drives one session over the given transport until termination.
	// VacancyID and candidateID are optional; when set, an interview row is
	// kept alongside the transcript.
	Run(ctx context.Context, mode interview.Mode, transport interview.Transport, vacancyID, candidateID string)

	// Simulate runs a fully automated interviewer/candidate dialogue and
	// returns the transcript, for webhook-triggered requests.
	Simulate(ctx context.Context, mode interview.Mode, vacancyText, resumeText, questions string) SimulationResult
}

type interviewService struct {
	interviews  pgrepo.InterviewRepository
	transcripts mongorepo.TranscriptRepository
	vacancies   VacancyService
	store       *settings.Store
	log         *logrus.Logger
}

func NewInterviewService(
	interviews pgrepo.InterviewRepository,
	transcripts mongorepo.TranscriptRepository,
	vacancies VacancyService,
	store *settings.Store,
	log *logrus.Logger,
) InterviewService {
	return &interviewService{
		interviews:  interviews,
		transcripts: transcripts,
		vacancies:   vacancies,
		store:       store,
		log:         log,
	}
}

func (s *interviewService) Run(ctx context.Context, mode interview.Mode, transport interview.Transport, vacancyID, candidateID string) {
	sess := s.newSession(mode, transport)

	if s.interviews != nil && vacancyID != "" {
		row := &models.Interview{
			ID:          sess.ID,
			VacancyID:   vacancyID,
			CandidateID: candidateID,
			Mode:        string(mode),
			Status:      models.InterviewStatusActive,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.interviews.Insert(ctx, row); err != nil {
			s.log.WithError(err).Error("failed to persist interview row")
		}
	}

	sess.Run(ctx)
}

func (s *interviewService) Simulate(ctx context.Context, mode interview.Mode, vacancyText, resumeText, questions string) SimulationResult {
	if mode != interview.ModeStress {
		mode = interview.ModeSimulation
	}
	transport := interview.NewBackgroundTransport(interview.StartMessage(vacancyText, resumeText, questions, ""))
	sess := s.newSession(mode, transport)
	sess.Run(ctx)

	return SimulationResult{
		SessionID: sess.ID,
		Status:    string(sess.State()),
		Turns:     sess.TurnIndex(),
		Dialogue:  sess.History(),
		Events:    transport.Events(),
	}
}

func (s *interviewService) newSession(mode interview.Mode, transport interview.Transport) *interview.Session {
	snap := s.store.Snapshot()

	var synth tts.Synthesizer
	if snap.TTSServerURL != "" {
		synth = tts.NewSileroHTTP(snap, s.log)
	}

	sess := interview.NewSession(
		mode,
		transport,
		llm.Resolve(snap, s.log),
		stt.Resolve(snap, s.log),
		synth,
		logrus.NewEntry(s.log),
	)
	sess.InterviewerModel = snap.InterviewerModel
	sess.CandidateModel = snap.CandidateModel
	sess.Archive = s.archive
	if s.vacancies != nil {
		// Cached variant: repeated sessions for the same vacancy skip the
		// condensation call.
		sess.Summarize = s.vacancies.SummarizeTechRequirements
	}
	return sess
}

// archive persists the finished dialogue to Mongo and closes the interview
// row if one exists.
func (s *interviewService) archive(ctx context.Context, sessionID string, turns []dialogue.Turn, status string) error {
	if s.transcripts == nil {
		return nil
	}

	doc := &models.Transcript{
		SessionID: sessionID,
		Status:    status,
		Turns:     make([]models.TranscriptTurn, 0, len(turns)),
	}
	interviewerTurns := 0
	for _, t := range turns {
		doc.Turns = append(doc.Turns, models.TranscriptTurn{Speaker: string(t.Speaker), Text: t.Text})
		if t.Speaker == dialogue.SpeakerInterviewer {
			interviewerTurns++
		}
	}
	if err := s.transcripts.Insert(ctx, doc); err != nil {
		return err
	}

	if s.interviews != nil {
		rowStatus := models.InterviewStatusCompleted
		switch status {
		case "disconnected":
			rowStatus = models.InterviewStatusDisconnected
		case "error", "protocol_error":
			rowStatus = models.InterviewStatusError
		}
		if err := s.interviews.End(ctx, sessionID, rowStatus, interviewerTurns, time.Now().UTC()); err != nil {
			s.log.WithError(err).Debug("no interview row to close")
		}
	}
	return nil
}
