// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package e2e tests the complete agent path: control protocol over a
// real unix socket, the shared rule table, the REST API, and the
// enforcement decision point, with only the BPF layer mocked out.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/config"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/control"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/enforce"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/testutil"
)

// recordingObserver captures decisions the way the audit sink would.
type recordingObserver struct {
	mu        sync.Mutex
	decisions []recordedDecision
}

type recordedDecision struct {
	Event          enforce.Event
	Classification enforce.Classification
}

func (r *recordingObserver) ObserveDecision(ev enforce.Event, c enforce.Classification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, recordedDecision{Event: ev, Classification: c})
}

func (r *recordingObserver) Decisions() []recordedDecision {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedDecision, len(r.decisions))
	copy(out, r.decisions)
	return out
}

// E2ETestEnv wires the agent's collaborators the way the daemon does,
// sharing one rule table across the control socket, the REST API and
// the decision point.
type E2ETestEnv struct {
	T          *testing.T
	Agent      *testutil.Agent
	Client     *control.Client
	Decider    *enforce.Decider
	Observer   *recordingObserver
	HTTPClient *http.Client
	APIBaseURL string
}

// NewE2ETestEnv starts the control server, the REST API and the
// decision point over one shared store. All resources are released on
// test cleanup.
func NewE2ETestEnv(t *testing.T) *E2ETestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	agent := testutil.StartAgent(t, 64)
	observer := &recordingObserver{}
	decider := enforce.NewDecider(agent.Store, agent.Metrics, observer)

	apiServer, err := api.NewAPIServer(nil, config.Default(), agent.Store, nil, nil, agent.Registry)
	require.NoError(t, err)

	httpServer := httptest.NewServer(apiServer.GetRouter())
	t.Cleanup(httpServer.Close)

	return &E2ETestEnv{
		T:          t,
		Agent:      agent,
		Client:     agent.Client(),
		Decider:    decider,
		Observer:   observer,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		APIBaseURL: httpServer.URL,
	}
}

// Open simulates one intercepted file open and returns the
// classification.
func (env *E2ETestEnv) Open(uid uint32, path string) enforce.Classification {
	return env.Decider.Decide(enforce.Event{
		UID:  uid,
		PID:  4242,
		Comm: "e2e-test",
		Path: path,
	})
}

// AssertFlagged asserts that an open by uid is flagged.
func (env *E2ETestEnv) AssertFlagged(uid uint32) {
	require.Equal(env.T, enforce.Flagged, env.Open(uid, "/etc/shadow"),
		"uid %d should be flagged", uid)
}

// AssertAllowed asserts that an open by uid passes unflagged.
func (env *E2ETestEnv) AssertAllowed(uid uint32) {
	require.Equal(env.T, enforce.Allowed, env.Open(uid, "/etc/hosts"),
		"uid %d should be allowed", uid)
}

// DoHTTPRequest performs a request against the in-process REST API.
func (env *E2ETestEnv) DoHTTPRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, env.APIBaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return env.HTTPClient.Do(req)
}
