package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestDeliverSignsPayload(t *testing.T) {
	const secret = "test-secret"

	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewSender(quietLogger())
	ok := sender.Deliver(context.Background(), srv.URL, map[string]any{"event": "ranking_completed"}, secret)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "ranking_completed", decoded["event"])

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, gotSig)
	assert.True(t, strings.HasPrefix(gotSig, "sha256="))
}

func TestDeliverReportsNon2xxAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewSender(quietLogger())
	assert.False(t, sender.Deliver(context.Background(), srv.URL, map[string]string{"a": "b"}, "s"))
}

func TestDeliverUnreachableDestination(t *testing.T) {
	sender := NewSender(quietLogger())
	assert.False(t, sender.Deliver(context.Background(), "http://127.0.0.1:1/hook", map[string]string{"a": "b"}, "s"))
}
