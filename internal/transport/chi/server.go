package chi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/pkgsearch/internal/logger"
	healthuc "github.com/kailas-cloud/pkgsearch/internal/usecase/health"
	pkginfouc "github.com/kailas-cloud/pkgsearch/internal/usecase/pkginfo"
	searchuc "github.com/kailas-cloud/pkgsearch/internal/usecase/search"
	"github.com/kailas-cloud/pkgsearch/internal/version"
)

// maxBodyBytes bounds the mget request body.
const maxBodyBytes = 64 << 10

// Server serves the search and package endpoints.
type Server struct {
	search        *searchuc.Service
	packages      *pkginfouc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	packages *pkginfouc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:        search,
		packages:      packages,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Route("/v2", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/search/suggestions", s.Suggestions)
		r.Post("/package/mget", s.MGetPackages)
		r.Get("/package/*", s.GetPackage)
	})
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(s.NotFound)
	r.MethodNotAllowed(s.NotFound)
}

type resultItem struct {
	Package     result.Package `json:"package"`
	Flags       *result.Flags  `json:"flags,omitempty"`
	Score       result.Score   `json:"score"`
	SearchScore float64        `json:"searchScore"`
	Highlight   string         `json:"highlight,omitempty"`
}

type searchResponse struct {
	Total   int          `json:"total"`
	Results []resultItem `json:"results"`
}

type healthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Version string                          `json:"version"`
}

// Search handles GET /v2/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var (
		q    string
		page params.Pagination
	)
	if err := bindQuery(r.URL.Query(),
		queryParam{"q", &q}, queryParam{"from", &page.From}, queryParam{"size", &page.Size}); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Search(r.Context(), q, page)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]resultItem, 0, res.Len())
	for it := range res.Results() {
		items = append(items, resultToItem(&it))
	}
	writeJSON(w, http.StatusOK, searchResponse{Total: res.Total(), Results: items})
}

// Suggestions handles GET /v2/search/suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	var (
		q    string
		size *int
	)
	if err := bindQuery(r.URL.Query(), queryParam{"q", &q}, queryParam{"size", &size}); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Suggestions(r.Context(), q, size)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]resultItem, len(res))
	for i := range res {
		items[i] = resultToItem(&res[i])
	}
	writeJSON(w, http.StatusOK, items)
}

// GetPackage handles GET /v2/package/{name}. Scoped names may be sent with
// the slash as is or percent-encoded.
func (s *Server) GetPackage(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		s.handleDomainError(w, r, domain.NewParameterError("name", "malformed escape sequence"))
		return
	}

	info, err := s.packages.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// MGetPackages handles POST /v2/package/mget.
func (s *Server) MGetPackages(w http.ResponseWriter, r *http.Request) {
	var names []string
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&names); err != nil {
		s.handleDomainError(w, r, domain.NewParameterError("body", "must be a JSON array of package names"))
		return
	}

	infos, err := s.packages.MGet(r.Context(), names)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  report.Status,
		Checks:  report.Checks,
		Version: version.String(),
	})
}

// NotFound answers requests that match no route.
func (s *Server) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, "The specified endpoint does not exist")
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("request failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// queryParam is an optional form-style query parameter and its destination.
type queryParam struct {
	name string
	dest any
}

// bindQuery binds params in order and reports the first that fails.
func bindQuery(values url.Values, ps ...queryParam) error {
	for _, p := range ps {
		if err := runtime.BindQueryParameter("form", true, false, p.name, values, p.dest); err != nil {
			if _, isInt := p.dest.(**int); isInt {
				return domain.NewParameterError(p.name, "must be an integer")
			}
			return domain.NewParameterError(p.name, "%v", err)
		}
	}
	return nil
}

func resultToItem(r *result.Result) resultItem {
	return resultItem{
		Package:     r.Package(),
		Flags:       r.Flags(),
		Score:       r.Score(),
		SearchScore: r.SearchScore(),
		Highlight:   r.Highlight(),
	}
}
