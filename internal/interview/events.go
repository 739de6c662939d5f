package interview

import "encoding/json"

// Outbound event types.
const (
	EventStatus      = "status"
	EventText        = "text"
	EventPartialText = "partial_text"
	EventAudio       = "audio"
	EventError       = "error"
)

// Status values carried by status events.
const (
	StatusContextLoading = "context_loading"
	StatusReady          = "ready"
	StatusFinished       = "finished"
)

// Event is the tagged union sent to the client. Text events carry sender and
// data; audio events carry base64-encoded speech in Data, or "" when synthesis
// failed. Partial text supersedes the previous partial for the same utterance.
type Event struct {
	Type    string `json:"type"`
	Sender  string `json:"sender,omitempty"`
	Data    string `json:"data,omitempty"`
	Status  string `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Inbound message types.
const (
	msgStartInterview = "start_interview"
	msgText           = "text"
	msgEndInterview   = "end_interview"
)

type inboundMsg struct {
	Type               string `json:"type"`
	VacancyText        string `json:"vacancy_text"`
	ResumeText         string `json:"resume_text"`
	GeneratedQuestions string `json:"generated_questions"`
	Language           string `json:"language"`
	Text               string `json:"text"`
}

// StartMessage serializes a start_interview frame, used by background
// simulations that have no live peer sending one.
func StartMessage(vacancyText, resumeText, questions, language string) []byte {
	b, _ := json.Marshal(inboundMsg{
		Type:               msgStartInterview,
		VacancyText:        vacancyText,
		ResumeText:         resumeText,
		GeneratedQuestions: questions,
		Language:           language,
	})
	return b
}
