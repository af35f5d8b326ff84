package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type healthEnvironment struct {
	HasGeminiKey         bool   `json:"hasGeminiKey"`
	HasFirebaseProjectID bool   `json:"hasFirebaseProjectId"`
	FirebaseProjectID    string `json:"firebaseProjectId"`
	IdentityReady        bool   `json:"identityReady"`
	IdentityInitError    string `json:"identityInitError,omitempty"`
	StoreDriver          string `json:"storeDriver"`
	StoreReady           bool   `json:"storeReady"`
	HasSumitCredentials  bool   `json:"hasSumitCredentials"`
}

type healthResponse struct {
	Server      string            `json:"server"`
	Timestamp   string            `json:"timestamp"`
	Environment healthEnvironment `json:"environment"`
}

// Health reports readiness of the integrations. It always answers 200.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	projectID := a.Env.FirebaseProjectID
	if projectID == "" {
		projectID = "not set"
	}
	env := healthEnvironment{
		HasGeminiKey:         a.Env.HasGeminiKey,
		HasFirebaseProjectID: a.Env.FirebaseProjectID != "",
		FirebaseProjectID:    projectID,
		IdentityReady:        a.Verifier != nil,
		IdentityInitError:    a.Env.IdentityInitError,
		StoreDriver:          a.Env.StoreDriver,
		HasSumitCredentials:  a.Env.HasSumitCredentials,
	}
	if a.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := a.Store.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("store ping failed")
		} else {
			env.StoreReady = true
		}
	}
	a.json(w, http.StatusOK, healthResponse{
		Server:      "ok",
		Timestamp:   a.now().UTC().Format(time.RFC3339),
		Environment: env,
	})
}
