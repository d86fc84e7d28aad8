package handler

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Body shapes follow the Haal Centraal BRP error conventions: problem+json
// with a Dutch title and a machine-readable code.
const (
	notFoundType = "https://docs.microsoft.com/en-us/dotnet/api/system.net.httpstatuscode?" +
		"#System_Net_HttpStatusCode_NotFound"
	notFoundTitle      = "Opgevraagde resource bestaat niet."
	unauthorizedTitle  = "U bent niet geautoriseerd voor deze operatie."
	invalidParamsTitle = "Een of meerdere parameters zijn niet correct."
)

// InvalidParam reports one failing query or path parameter check.
type InvalidParam struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, resource, contentType string, status int, body any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
	h.metrics.IncrementRequests(resource, status)
}

func (h *Handler) writeHAL(w http.ResponseWriter, resource string, status int, body any) {
	h.writeJSON(w, resource, "application/hal+json", status, body)
}

func (h *Handler) writeProblem(w http.ResponseWriter, resource string, status int, body map[string]any) {
	h.writeJSON(w, resource, "application/problem+json", status, body)
}

func (h *Handler) writeInvalidParams(w http.ResponseWriter, r *http.Request, resource string, params []InvalidParam) {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	h.writeProblem(w, resource, http.StatusBadRequest, map[string]any{
		"status":         http.StatusBadRequest,
		"title":          invalidParamsTitle,
		"detail":         "De foutieve parameter(s) zijn: " + strings.Join(names, ", ") + ".",
		"instance":       h.externalURL(r),
		"code":           "paramsValidation",
		"invalid-params": params,
	})
}

func (h *Handler) writeCombinationError(w http.ResponseWriter, r *http.Request, resource string) {
	h.writeProblem(w, resource, http.StatusBadRequest, map[string]any{
		"status":   http.StatusBadRequest,
		"title":    invalidParamsTitle,
		"detail":   "De opgegeven combinatie van parameters is niet toegestaan.",
		"instance": h.externalURL(r),
		"code":     "paramsCombination",
	})
}

func (h *Handler) writeNotFound(w http.ResponseWriter, r *http.Request, resource, detail string) {
	h.metrics.IncrementEmptyAnswers(resource)
	h.writeProblem(w, resource, http.StatusNotFound, map[string]any{
		"type":     notFoundType,
		"title":    notFoundTitle,
		"status":   http.StatusNotFound,
		"detail":   detail,
		"instance": h.externalURL(r),
		"code":     "notFound",
	})
}

func (h *Handler) writeServerError(w http.ResponseWriter, resource string) {
	h.writeProblem(w, resource, http.StatusInternalServerError, map[string]any{
		"status": http.StatusInternalServerError,
		"title":  "Interne serverfout.",
		"code":   "serverError",
	})
}
