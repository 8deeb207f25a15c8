package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"textgend/internal/pipeline"
	"textgend/pkg/types"
)

// Generator is the generation capability the HTTP API serves.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts pipeline.Options) ([]pipeline.Sequence, error)
	Info() types.InfoResponse
}

type handler struct {
	gen Generator
}

// NewMux builds the HTTP API. gen is the capability set once at startup; pass
// a nil interface when the model failed to load and every /generate request
// will fail with 500.
func NewMux(gen Generator) http.Handler {
	h := &handler{gen: gen}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Post("/generate", h.generate)
	r.Get("/info", h.info)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if h.gen != nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("model not loaded"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

// generate godoc
// @Summary      Generate text
// @Description  Runs the loaded model on the prompt and returns the first generated sequence, prompt included.
// @Tags         generation
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Prompt and optional generation parameters"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Router       /generate [post]
func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lvl := requestLogLevel(r)
	reqLog := zlog.With().Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).Logger()

	reject := func(status int, reason, msg string, err error) {
		generateRejectedTotal.WithLabelValues(reason).Inc()
		writeJSONError(w, status, msg)
		if status >= http.StatusInternalServerError && lvl >= LevelError {
			reqLog.Error().Err(err).Int("status", status).Str("reason", reason).Dur("dur", time.Since(start)).Msg("generate failed")
		} else if lvl >= LevelInfo {
			reqLog.Info().Int("status", status).Str("reason", reason).Dur("dur", time.Since(start)).Msg("generate rejected")
		}
	}

	if h.gen == nil {
		reject(http.StatusInternalServerError, reasonModelUnavailable, msgModelNotLoaded, errors.New("model not loaded"))
		return
	}
	// A body that is not declared as JSON is malformed input.
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		reject(http.StatusBadRequest, reasonInvalidInput, msgInvalidInput, nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.GenerateRequest
	// Oversized bodies also fail here and get the same 400.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Input == nil {
		reject(http.StatusBadRequest, reasonInvalidInput, msgInvalidInput, err)
		return
	}
	prompt := strings.TrimSpace(*req.Input)
	if prompt == "" {
		reject(http.StatusBadRequest, reasonEmptyPrompt, msgEmptyPrompt, nil)
		return
	}
	opts := pipeline.DefaultOptions()
	if req.MaxLength != nil {
		opts.MaxLength = *req.MaxLength
	}
	if req.NumReturnSequences != nil {
		opts.NumReturnSequences = *req.NumReturnSequences
	}

	// Shutdown cancels in-flight generations as well as client disconnects.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if generateTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, generateTimeout)
		defer tcancel()
	}
	if lvl >= LevelInfo {
		reqLog.Info().Int("max_length", opts.MaxLength).Int("num_return_sequences", opts.NumReturnSequences).Msg("generate start")
	}
	seqs, err := h.gen.Generate(ctx, prompt, opts)
	if err == nil && len(seqs) == 0 {
		err = errors.New("no sequences generated")
	}
	if err != nil {
		if r.Context().Err() != nil {
			if lvl >= LevelInfo {
				reqLog.Info().Dur("dur", time.Since(start)).Msg("client went away")
			}
			return
		}
		reject(http.StatusInternalServerError, reasonGeneration, err.Error(), err)
		return
	}
	resp := seqs[0].GeneratedText
	if lvl >= LevelDebug {
		reqLog.Debug().Str("prompt", prompt).Str("response", resp).Msg("generate output")
	}
	writeJSON(w, http.StatusOK, types.GenerateResponse{Response: resp})
	if lvl >= LevelInfo {
		reqLog.Info().Int("status", http.StatusOK).Int("sequences", len(seqs)).Dur("dur", time.Since(start)).Msg("generate end")
	}
}

// info godoc
// @Summary      Loaded model
// @Description  Describes the model, tokenizer and backend bound at startup.
// @Tags         generation
// @Produce      json
// @Success      200  {object}  types.InfoResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /info [get]
func (h *handler) info(w http.ResponseWriter, r *http.Request) {
	if h.gen == nil {
		writeJSONError(w, http.StatusServiceUnavailable, msgModelNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, h.gen.Info())
}
