// Package handler exposes the BRP REST resources. Each route validates its
// parameters, builds the matching MKS request with the operator identity
// from the request context, and assembles the HAL response from the parsed
// answer message.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"brpgateway/internal/brp/mapping"
	"brpgateway/internal/brp/request"
	"brpgateway/internal/brp/response"
	"brpgateway/internal/mks"
	"brpgateway/internal/platform/metrics"
	"brpgateway/internal/stuf"
	"brpgateway/pkg/requestcontext"
)

type Handler struct {
	client  mks.Client
	builder *response.Builder
	logger  *slog.Logger
	metrics *metrics.Metrics
	apiRoot string
	baseURL string
	bag     mapping.BAGEndpoints
}

func New(client mks.Client, builder *response.Builder, logger *slog.Logger, m *metrics.Metrics, apiRoot string, bag mapping.BAGEndpoints) *Handler {
	return &Handler{
		client:  client,
		builder: builder,
		logger:  logger,
		metrics: m,
		apiRoot: strings.TrimSuffix(apiRoot, "/"),
		baseURL: strings.TrimSuffix(strings.TrimSuffix(apiRoot, "/"), "/brp"),
		bag:     bag,
	}
}

// Register mounts the BRP routes. The router is expected to be mounted at
// the /brp base path.
func (h *Handler) Register(r chi.Router) {
	r.Get("/ingeschrevenpersonen", h.search)
	r.Route("/ingeschrevenpersonen/{bsn}", func(r chi.Router) {
		r.Get("/", h.person)
		r.Get("/verblijfplaatshistorie", h.historie)
		for _, rel := range []string{"partners", "ouders", "kinderen"} {
			rel := rel
			r.Get("/"+rel, func(w http.ResponseWriter, r *http.Request) {
				h.relatedList(w, r, rel)
			})
			r.Get("/"+rel+"/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
				h.relatedDetail(w, r, rel)
			})
		}
	})
	r.Get("/status/health", h.Health)
}

// Health is the liveness endpoint. The router also mounts it outside the
// identity middleware so probes need no role headers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// externalURL rebuilds the client-facing URL of the current request from the
// configured API root, since the gateway runs behind a proxy.
func (h *Handler) externalURL(r *http.Request) string {
	return h.baseURL + r.URL.RequestURI()
}

func (h *Handler) options(includeDeceased bool, expand []string, requestURL string) response.Options {
	return response.Options{
		Params: mapping.FilterParams{
			IncludeDeceased: includeDeceased,
			Today:           time.Now(),
		},
		Expand:     expand,
		Links:      mapping.LinkContext{APIRoot: h.apiRoot, BAG: h.bag},
		RequestURL: requestURL,
	}
}

// exchange serializes an outgoing message and posts it to MKS.
func (h *Handler) exchange(w http.ResponseWriter, r *http.Request, resource string, req *stuf.Request, err error) ([]byte, bool) {
	ctx := r.Context()
	if err != nil {
		h.logger.ErrorContext(ctx, "request construction failed",
			"request_id", requestcontext.RequestID(ctx), "resource", resource, "error", err)
		h.writeServerError(w, resource)
		return nil, false
	}
	body, err := req.Serialize()
	if err != nil {
		h.logger.ErrorContext(ctx, "request serialization failed",
			"request_id", requestcontext.RequestID(ctx), "resource", resource, "error", err)
		h.writeServerError(w, resource)
		return nil, false
	}
	_, respBody, err := h.client.Call(ctx, req.Template.SOAPAction(), body)
	if err != nil {
		h.logger.ErrorContext(ctx, "backend unreachable",
			"request_id", requestcontext.RequestID(ctx), "resource", resource, "error", err)
		h.writeServerError(w, resource)
		return nil, false
	}
	return respBody, true
}

// backendError translates a failed answer parse. The backend authorization
// code becomes a 403; every other backend error is a generic 400 with the
// detail confined to the log.
func (h *Handler) backendError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	ctx := r.Context()
	var fault *response.Fault
	if errors.As(err, &fault) && fault.Unauthorized() {
		h.writeProblem(w, resource, http.StatusForbidden, map[string]any{
			"status": http.StatusForbidden,
			"title":  unauthorizedTitle,
		})
		return
	}
	h.logger.ErrorContext(ctx, "backend error",
		"request_id", requestcontext.RequestID(ctx), "resource", resource, "error", err)
	h.writeJSON(w, resource, "application/json", http.StatusBadRequest, map[string]any{
		"error": "Error occurred when requesting external system. See logs for more information.",
	})
}

// fetchPerson runs the person-by-bsn exchange and returns the mapped answer
// object, or false with the response already written.
func (h *Handler) fetchPerson(w http.ResponseWriter, r *http.Request, resource, bsn, notFoundDetail string, opts response.Options) (map[string]any, bool) {
	ctx := r.Context()
	req, err := request.IngeschrevenpersonenBsn(
		requestcontext.MKSGebruiker(ctx), requestcontext.MKSApplicatie(ctx), bsn)
	respBody, ok := h.exchange(w, r, resource, req, err)
	if !ok {
		return nil, false
	}

	ans, err := h.builder.Parse(respBody, "npsLa01")
	if err != nil {
		h.backendError(w, r, resource, err)
		return nil, false
	}
	obj, err := ans.AnswerObject(opts)
	if errors.Is(err, stuf.ErrNoAnswer) {
		h.writeNotFound(w, r, resource, notFoundDetail)
		return nil, false
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "answer mapping failed",
			"request_id", requestcontext.RequestID(ctx), "resource", resource, "error", err)
		h.writeServerError(w, resource)
		return nil, false
	}
	return obj, true
}

func personNotFound(bsn string) string {
	return "Ingeschreven persoon niet gevonden met burgerservicenummer " + bsn + "."
}

func relatedNotFound(relation, bsn string) string {
	singular := map[string]string{"partners": "partner", "ouders": "ouder", "kinderen": "kind"}[relation]
	return "Ingeschreven " + singular + " voor persoon niet gevonden met burgerservicenummer " + bsn + "."
}

func (h *Handler) person(w http.ResponseWriter, r *http.Request) {
	const resource = "ingeschrevenpersonen"
	bsn := chi.URLParam(r, "bsn")
	q := r.URL.Query()

	invalid := checkBSN(bsn)
	includeDeceased := false
	if v := q.Get("inclusiefoverledenpersonen"); v != "" {
		if p := checkBoolean("inclusiefoverledenpersonen", v); p != nil {
			invalid = append(invalid, *p)
		} else {
			includeDeceased = v == "true"
		}
	}
	expand, p := parseExpand(q.Get("expand"))
	if p != nil {
		invalid = append(invalid, *p)
	}
	if len(invalid) > 0 {
		h.writeInvalidParams(w, r, resource, invalid)
		return
	}

	opts := h.options(includeDeceased, expand, "")
	obj, ok := h.fetchPerson(w, r, resource, bsn, personNotFound(bsn), opts)
	if !ok {
		return
	}
	setSelfLink(obj, h.externalURL(r))
	h.writeHAL(w, resource, http.StatusOK, obj)
}

func (h *Handler) relatedList(w http.ResponseWriter, r *http.Request, relation string) {
	resource := "ingeschrevenpersonen." + relation
	bsn := chi.URLParam(r, "bsn")
	if invalid := checkBSN(bsn); len(invalid) > 0 {
		h.writeInvalidParams(w, r, resource, invalid)
		return
	}

	opts := h.options(false, []string{relation}, "")
	obj, ok := h.fetchPerson(w, r, resource, bsn, personNotFound(bsn), opts)
	if !ok {
		return
	}
	h.writeHAL(w, resource, http.StatusOK, response.RelatedList(obj, relation, h.externalURL(r)))
}

func (h *Handler) relatedDetail(w http.ResponseWriter, r *http.Request, relation string) {
	resource := "ingeschrevenpersonen." + relation
	bsn := chi.URLParam(r, "bsn")
	if invalid := checkBSN(bsn); len(invalid) > 0 {
		h.writeInvalidParams(w, r, resource, invalid)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeNotFound(w, r, resource, relatedNotFound(relation, bsn))
		return
	}

	opts := h.options(false, []string{relation}, "")
	obj, ok := h.fetchPerson(w, r, resource, bsn, relatedNotFound(relation, bsn), opts)
	if !ok {
		return
	}
	item, err := response.RelatedDetail(obj, relation, id, h.externalURL(r))
	if errors.Is(err, stuf.ErrNoAnswer) {
		h.writeNotFound(w, r, resource, relatedNotFound(relation, bsn))
		return
	}
	h.writeHAL(w, resource, http.StatusOK, item)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	const resource = "ingeschrevenpersonen.zoeken"
	ctx := r.Context()

	query, invalid, combinationOK := parseSearchQuery(r.URL.Query())
	if len(invalid) > 0 {
		h.writeInvalidParams(w, r, resource, invalid)
		return
	}
	if !combinationOK {
		h.writeCombinationError(w, r, resource)
		return
	}

	req, err := request.IngeschrevenpersonenFilter(
		requestcontext.MKSGebruiker(ctx), requestcontext.MKSApplicatie(ctx), query.criteria)
	respBody, ok := h.exchange(w, r, resource, req, err)
	if !ok {
		return
	}

	ans, err := h.builder.Parse(respBody, "npsLa01")
	if err != nil {
		h.backendError(w, r, resource, err)
		return
	}
	objs, err := ans.AllAnswerObjects(h.options(query.includeDeceased, query.expand, ""))
	if err != nil {
		h.logger.ErrorContext(ctx, "answer mapping failed",
			"request_id", requestcontext.RequestID(ctx), "resource", resource, "error", err)
		h.writeServerError(w, resource)
		return
	}

	list := make([]any, len(objs))
	for i, obj := range objs {
		list[i] = obj
	}
	h.writeHAL(w, resource, http.StatusOK, map[string]any{
		"_links":    map[string]any{"self": map[string]any{"href": h.externalURL(r)}},
		"_embedded": map[string]any{"ingeschrevenpersonen": list},
	})
}

func (h *Handler) historie(w http.ResponseWriter, r *http.Request) {
	const resource = "verblijfplaatshistorie"
	ctx := r.Context()
	bsn := chi.URLParam(r, "bsn")
	q := r.URL.Query()

	invalid := checkBSN(bsn)
	var params request.HistorieParams
	dates := []struct {
		name string
		dst  *string
	}{
		{"peildatum", &params.Peildatum},
		{"datumVan", &params.DatumVan},
		{"datumTotEnMet", &params.DatumTotEnMet},
	}
	for _, d := range dates {
		v := q.Get(d.name)
		if v == "" {
			continue
		}
		if p := checkDate(d.name, v); p != nil {
			invalid = append(invalid, *p)
			continue
		}
		*d.dst = toWireDate(v)
	}
	if len(invalid) > 0 {
		h.writeInvalidParams(w, r, resource, invalid)
		return
	}

	req, err := request.VerblijfplaatsHistorie(
		requestcontext.MKSGebruiker(ctx), requestcontext.MKSApplicatie(ctx), bsn, params)
	respBody, ok := h.exchange(w, r, resource, req, err)
	if !ok {
		return
	}

	ans, err := h.builder.Parse(respBody, "npsLa07")
	if err != nil {
		h.backendError(w, r, resource, err)
		return
	}
	obj, err := ans.HistorieObject(h.options(true, nil, h.externalURL(r)))
	if errors.Is(err, stuf.ErrNoAnswer) {
		h.writeNotFound(w, r, resource,
			"Verblijfplaatshistorie niet gevonden voor ingeschreven persoon met burgerservicenummer "+bsn+".")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "answer mapping failed",
			"request_id", requestcontext.RequestID(ctx), "resource", resource, "error", err)
		h.writeServerError(w, resource)
		return
	}
	h.writeHAL(w, resource, http.StatusOK, obj)
}

func setSelfLink(obj map[string]any, href string) {
	links, ok := obj["_links"].(map[string]any)
	if !ok {
		links = map[string]any{}
		obj["_links"] = links
	}
	links["self"] = map[string]any{"href": href}
}
