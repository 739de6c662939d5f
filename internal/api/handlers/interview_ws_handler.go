package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/interview"
	"github.com/hirevox/hirevox/internal/services"
)

// InterviewWSHandler upgrades the connection and hands it to one interview
// session. The session owns the socket until termination.
type InterviewWSHandler struct {
	interviews services.InterviewService
	upgrader   websocket.Upgrader
	log        *logrus.Logger
}

func NewInterviewWSHandler(interviews services.InterviewService, log *logrus.Logger) *InterviewWSHandler {
	return &InterviewWSHandler{
		interviews: interviews,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
		log: log,
	}
}

func (h *InterviewWSHandler) Interview(c *gin.Context) {
	mode := interview.ModeLive
	switch c.Query("mode") {
	case string(interview.ModeSimulation):
		mode = interview.ModeSimulation
	case string(interview.ModeStress):
		mode = interview.ModeStress
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}

	transport := interview.NewWSTransport(conn)
	h.interviews.Run(c.Request.Context(), mode, transport, c.Query("vacancy_id"), c.Query("candidate_id"))
}
