// Package webhook delivers signed JSON notifications to caller-supplied URLs.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hirevox/hirevox/internal/utils"
)

const (
	// SignatureHeader carries the HMAC-SHA256 signature of the request body,
	// prefixed with "sha256=".
	SignatureHeader = "X-Webhook-Signature-256"

	defaultTimeout = 30 * time.Second
)

type Sender struct {
	Client *http.Client
	Log    *logrus.Logger
}

func NewSender(log *logrus.Logger) *Sender {
	return &Sender{
		Client: &http.Client{Timeout: defaultTimeout},
		Log:    log,
	}
}

// Sign computes the hex HMAC-SHA256 of body under secret, in header form.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver serializes payload, signs it and posts it to url. A non-2xx response
// counts as failure. Delivery is at-most-once; nothing is queued for retry.
func (s *Sender) Deliver(ctx context.Context, url string, payload any, secret string) bool {
	const op = "webhook.Sender.Deliver"

	body, err := json.Marshal(payload)
	if err != nil {
		s.Log.WithError(err).Error("webhook payload serialization failed")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		s.Log.WithError(utils.E(utils.CodeInvalidArgument, op, "bad destination url", err)).Error("webhook delivery failed")
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(secret, body))

	resp, err := s.Client.Do(req)
	if err != nil {
		s.Log.WithError(err).WithField("url", url).Error("webhook delivery failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.Log.WithFields(logrus.Fields{"url": url, "status": resp.StatusCode}).Error("webhook destination rejected delivery")
		return false
	}
	s.Log.WithField("url", url).Info("webhook delivered")
	return true
}
