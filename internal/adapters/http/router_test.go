package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/CamRelay/internal/accounts"
	"github.com/dkeye/CamRelay/internal/app"
	"github.com/dkeye/CamRelay/internal/app/orch"
	"github.com/dkeye/CamRelay/internal/config"
	"github.com/dkeye/CamRelay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSharedSecret = "relay-secret"

type relay struct {
	srv  *httptest.Server
	orch *orch.Orchestrator
}

func newRelay(t *testing.T) *relay {
	t.Helper()
	return newRelayMode(t, "test")
}

func newRelayMode(t *testing.T, mode string) *relay {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	store := accounts.NewStore()
	require.NoError(t, store.AddAccount("alice", "cam1"))
	require.NoError(t, store.SetToken("alice", "alice-token"))
	require.NoError(t, store.AddAccount("bob", "cam2"))
	require.NoError(t, store.SetToken("bob", "bob-token"))

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Gate:     app.NewGate(testSharedSecret, store, time.Second),
		Policy:   app.SimplePolicy{Action: app.DropMessage},
	}
	cfg := &config.Config{
		Mode:       mode,
		Secret:     "cookie-secret",
		ReadLimit:  65536,
		WriteWait:  time.Second,
		SendBuffer: 8,
		ICEServers: []config.ICEServerConfig{{URLs: []string{"stun:stun.example.org:3478"}}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(SetupRouter(ctx, cfg, o))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &relay{srv: srv, orch: o}
}

func (r *relay) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(r.srv.URL, "http") + "/ws/signal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeJSON(t *testing.T, conn *websocket.Conn, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))
	return b
}

func readRaw(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, b, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, mt)
	return b
}

func readEnvelope(t *testing.T, conn *websocket.Conn) domain.Envelope {
	t.Helper()
	var env domain.Envelope
	require.NoError(t, json.Unmarshal(readRaw(t, conn), &env))
	return env
}

func registerCamera(t *testing.T, conn *websocket.Conn, id string) {
	t.Helper()
	writeJSON(t, conn, map[string]any{
		"type": "register", "sender": id, "target": "server", "clientType": "camera",
		"data": map[string]any{"token": app.CameraToken(testSharedSecret, domain.ClientID(id))},
	})
	ack := readEnvelope(t, conn)
	require.Equal(t, domain.TypeCameraRegisterAck, ack.Type)
	require.Equal(t, domain.ClientID(id), ack.Target)
}

func registerViewer(t *testing.T, conn *websocket.Conn, id, token string, cameras ...string) {
	t.Helper()
	writeJSON(t, conn, map[string]any{
		"type": "register", "sender": id, "target": "server", "clientType": "user",
		"data": map[string]any{"token": token, "inRegistrationProcess": false, "registeredCameras": cameras},
	})
}

func TestSignal_NegotiationRoundTrip(t *testing.T) {
	r := newRelay(t)
	cam := r.dial(t)
	registerCamera(t, cam, "cam1")

	alice := r.dial(t)
	registerViewer(t, alice, "alice", "alice-token", "cam1")

	writeJSON(t, alice, map[string]any{
		"type": "camera-setup", "sender": "alice", "target": "server",
		"data": map[string]any{"cameraId": "cam1", "token": "alice-token"},
	})
	assert.Equal(t, domain.TypeProbeSuccess, readEnvelope(t, alice).Type)

	offer := writeJSON(t, alice, map[string]any{
		"type": "offer", "sender": "alice", "target": "cam1", "clientType": "user",
		"data": map[string]any{"offer": map[string]any{"type": "offer", "sdp": "v=0\r\n"}},
	})
	assert.Equal(t, offer, readRaw(t, cam))

	answer := writeJSON(t, cam, map[string]any{
		"type": "answer", "sender": "cam1", "target": "alice", "clientType": "camera",
		"data": map[string]any{"answer": map[string]any{"type": "answer", "sdp": "v=0\r\n"}},
	})
	assert.Equal(t, answer, readRaw(t, alice))

	candidate := writeJSON(t, cam, map[string]any{
		"type": "ice-candidate", "sender": "cam1", "target": "alice",
		"data": map[string]any{"candidate": "candidate:1 1 udp 2122260223 10.0.0.2 50000 typ host"},
	})
	assert.Equal(t, candidate, readRaw(t, alice))

	// Viewer leaves: the camera is told to tear down its peer connection.
	require.NoError(t, alice.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	notice := readEnvelope(t, cam)
	assert.Equal(t, domain.TypeCloseWebRTC, notice.Type)
	assert.Equal(t, domain.ServerID, notice.Sender)
	assert.Equal(t, domain.ClientID("cam1"), notice.Target)

	require.Eventually(t, func() bool {
		return r.orch.Registry.Counts() == app.Counts{Viewers: 0, Cameras: 1}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignal_OfferToUnownedCameraDropped(t *testing.T) {
	r := newRelay(t)
	cam := r.dial(t)
	registerCamera(t, cam, "cam1")

	bob := r.dial(t)
	registerViewer(t, bob, "bob", "bob-token")
	writeJSON(t, bob, map[string]any{"type": "offer", "sender": "bob", "target": "cam1", "data": "sdp"})

	// Dropped silently; the next offer to a missing camera still gets an error,
	// which shows the connection is open and the earlier one was not answered.
	writeJSON(t, bob, map[string]any{"type": "offer", "sender": "bob", "target": "cam2", "data": "sdp"})
	reply := readEnvelope(t, bob)
	assert.Equal(t, domain.TypeError, reply.Type)
	assert.Equal(t, domain.ClientID("bob"), reply.Target)
}

func TestSignal_BadCameraTokenCloses(t *testing.T) {
	r := newRelay(t)
	conn := r.dial(t)
	writeJSON(t, conn, map[string]any{
		"type": "register", "sender": "cam1", "clientType": "camera",
		"data": map[string]any{"token": "forged"},
	})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.False(t, r.orch.Registry.IsCameraConnected("cam1"))
}

func TestSignal_MessageBeforeRegisterCloses(t *testing.T) {
	r := newRelay(t)
	conn := r.dial(t)
	writeJSON(t, conn, map[string]any{"type": "offer", "sender": "alice", "target": "cam1", "data": "sdp"})
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCameraStatus(t *testing.T) {
	r := newRelay(t)
	cam := r.dial(t)
	registerCamera(t, cam, "cam1")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	url := r.srv.URL + "/api/camera-status"
	cameras := []map[string]string{{"id": "cam1"}, {"id": "cam9"}}

	resp := postJSON(t, client, url, map[string]any{"cameras": cameras})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, client, url, map[string]any{"viewer": "alice", "token": "wrong", "cameras": cameras})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, client, url, map[string]any{"viewer": "alice", "token": "alice-token", "cameras": cameras})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got []CameraStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, []CameraStatus{{ID: "cam1", IsConnected: true}, {ID: "cam9", IsConnected: false}}, got)

	// The session cookie now stands in for the token.
	resp = postJSON(t, client, url, map[string]any{"cameras": cameras})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	logout, err := client.Post(r.srv.URL+"/api/logout", "application/json", nil)
	require.NoError(t, err)
	_ = logout.Body.Close()
	assert.Equal(t, http.StatusNoContent, logout.StatusCode)

	resp = postJSON(t, client, url, map[string]any{"cameras": cameras})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionCookieSecureInRelease(t *testing.T) {
	body := map[string]any{"viewer": "alice", "token": "alice-token", "cameras": []map[string]string{}}

	for mode, secure := range map[string]bool{"release": true, "test": false} {
		t.Run(mode, func(t *testing.T) {
			r := newRelayMode(t, mode)
			resp := postJSON(t, http.DefaultClient, r.srv.URL+"/api/camera-status", body)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var session *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == "CamRelaySession" {
					session = c
				}
			}
			require.NotNil(t, session)
			assert.Equal(t, secure, session.Secure)
			assert.True(t, session.HttpOnly)
		})
	}
}

func TestCameraStatus_BadBody(t *testing.T) {
	r := newRelay(t)
	resp, err := http.Post(r.srv.URL+"/api/camera-status", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInfoEndpoints(t *testing.T) {
	r := newRelay(t)

	resp, err := http.Get(r.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(r.srv.URL + "/api/ice-servers")
	require.NoError(t, err)
	defer resp.Body.Close()
	var ice struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ice))
	require.Len(t, ice.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.example.org:3478"}, ice.ICEServers[0].URLs)

	cam := r.dial(t)
	registerCamera(t, cam, "cam1")
	resp, err = http.Get(r.srv.URL + "/api/connections")
	require.NoError(t, err)
	defer resp.Body.Close()
	var counts app.Counts
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counts))
	assert.Equal(t, app.Counts{Viewers: 0, Cameras: 1}, counts)
}
