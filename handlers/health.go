package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"eventhub-backend/utils"
)

var startTime = time.Now()

// DependencyCheck vérifie qu'une dépendance externe répond
type DependencyCheck func(ctx context.Context) error

// HealthHandler gère les endpoints de santé
type HealthHandler struct {
	environment string
	checks      map[string]DependencyCheck
}

// NewHealthHandler crée un nouveau HealthHandler. checks associe un nom (ex: "database") à sa sonde.
func NewHealthHandler(environment string, checks map[string]DependencyCheck) *HealthHandler {
	return &HealthHandler{environment: environment, checks: checks}
}

// Health retourne l'état de santé du serveur avec métriques.
// Une dépendance en erreur donne 503 pour que l'orchestrateur retire l'instance.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dependencies := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		dependencies[name] = "ok"
		if err := check(ctx); err != nil {
			dependencies[name] = "error"
			status = http.StatusServiceUnavailable
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}

	utils.RespondJSON(w, status, map[string]interface{}{
		"status":       state,
		"message":      "Le serveur fonctionne correctement",
		"env":          h.environment,
		"dependencies": dependencies,
		"uptime":       time.Since(startTime).String(),
		"go_version":   runtime.Version(),
	})
}
