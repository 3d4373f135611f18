// Package handlers wires the inference pipeline behind the HTTP surface:
// decode, preprocess, classify, interpret, respond.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/agrisight/leafscan-api/internal/classify"
	"github.com/agrisight/leafscan-api/internal/imaging"
	"github.com/agrisight/leafscan-api/internal/metrics"
	"github.com/agrisight/leafscan-api/internal/model"
)

const (
	serviceName    = "Leaf Disease Detection API"
	serviceVersion = "1.0.0"
	tracerName     = "leafscan-api/handlers"
)

// Handler is the request facade. Every prediction entry point converges on
// the same pipeline; the auxiliary endpoints are read-only.
type Handler struct {
	engine     model.Engine
	codec      *imaging.Codec
	advisories classify.AdvisoryBundle
	logger     *zap.Logger
	imageField string
}

// NewHandler builds a Handler. engine may be nil before the model finishes
// loading; prediction requests then fail with a 503 while the read-only
// endpoints keep answering.
func NewHandler(engine model.Engine, codec *imaging.Codec, advisories classify.AdvisoryBundle, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		engine:     engine,
		codec:      codec,
		advisories: advisories,
		logger:     logger,
		imageField: "image",
	}
}

// SetImageField overrides the form/JSON field name carrying the image.
func (h *Handler) SetImageField(name string) {
	if name != "" {
		h.imageField = name
	}
}

// Register installs all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/info", h.Info)
	mux.HandleFunc("/classes", h.Classes)
	mux.HandleFunc("/predict", h.Predict)
	mux.HandleFunc("/predict/base64", h.PredictBase64)
}

type imageInfo struct {
	Height   int `json:"height"`
	Width    int `json:"width"`
	Channels int `json:"channels"`
}

type predictResponse struct {
	Success    bool                `json:"success"`
	Prediction classify.Prediction `json:"prediction"`
	Guidance   classify.Advisory   `json:"guidance"`
	ImageInfo  imageInfo           `json:"image_info"`
}

// Predict classifies an uploaded image. Expects multipart/form-data with the
// image field carrying file bytes.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, r, errMethodNotAllowed)
		return
	}

	// Hard cap well above the codec ceiling so the codec reports the precise
	// size error for marginally oversized uploads while grossly oversized
	// bodies are cut off at the transport.
	r.Body = http.MaxBytesReader(w, r.Body, h.codec.MaxBytes*2+(64<<10))

	if err := r.ParseMultipartForm(h.codec.MaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, r, fmt.Errorf("%w: request body too large", imaging.ErrPayloadTooLarge))
			return
		}
		h.writeError(w, r, fmt.Errorf("%w: could not parse multipart form", ErrMissingInput))
		return
	}

	file, header, err := r.FormFile(h.imageField)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: use %q as the form field name", ErrMissingInput, h.imageField))
		return
	}
	defer file.Close()

	if header.Size > h.codec.MaxBytes {
		h.writeError(w, r, fmt.Errorf("%w: got %d bytes, limit is %d", imaging.ErrPayloadTooLarge, header.Size, h.codec.MaxBytes))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	h.servePrediction(w, r, func() (*imaging.PixelGrid, error) {
		return h.codec.Decode(data)
	})
}

// PredictBase64 classifies a base64-encoded image carried in a JSON body.
func (h *Handler) PredictBase64(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, r, errMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.codec.MaxBytes*2+(64<<10))

	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, r, fmt.Errorf("%w: request body too large", imaging.ErrPayloadTooLarge))
			return
		}
		h.writeError(w, r, fmt.Errorf("%w: invalid JSON body", ErrMissingInput))
		return
	}
	if req.Image == "" {
		h.writeError(w, r, fmt.Errorf("%w: missing %q field", ErrMissingInput, h.imageField))
		return
	}

	h.servePrediction(w, r, func() (*imaging.PixelGrid, error) {
		return h.codec.DecodeBase64(req.Image)
	})
}

// servePrediction runs the shared pipeline. Readiness is checked before the
// decode so a cold service answers 503 without doing image work, and every
// stage failure short-circuits the rest.
func (h *Handler) servePrediction(w http.ResponseWriter, r *http.Request, decode func() (*imaging.PixelGrid, error)) {
	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "predict")
	defer span.End()

	if h.engine == nil || !h.engine.Ready() {
		h.writeError(w, r, model.ErrUnavailable)
		return
	}

	grid, err := decode()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	meta := h.engine.Metadata()
	input := imaging.Prepare(grid, meta.ImageSize)

	_, inferSpan := otel.Tracer(tracerName).Start(ctx, "inference")
	start := time.Now()
	probs, err := h.engine.Classify(input)
	metrics.RecordInferenceLatency(time.Since(start).Seconds())
	inferSpan.End()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pred, err := classify.Interpret(probs, meta.Classes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	metrics.RecordPrediction(pred.Disease)

	writeJSON(w, http.StatusOK, predictResponse{
		Success:    true,
		Prediction: pred,
		Guidance:   h.advisories.Lookup(pred.Disease),
		ImageInfo: imageInfo{
			Height:   grid.Height,
			Width:    grid.Width,
			Channels: grid.Channels,
		},
	})
}

// Health reports whether the model finished loading plus runtime versions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	loaded := h.engine != nil && h.engine.Ready()

	status := "healthy"
	if !loaded {
		status = "starting"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"model_loaded": loaded,
		"go_version":   runtime.Version(),
		"backend":      "onnxruntime",
	})
}

// Classes lists the ordered class catalog.
func (h *Handler) Classes(w http.ResponseWriter, r *http.Request) {
	classes := []string{}
	if h.engine != nil {
		classes = h.engine.Metadata().Classes
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"classes": classes,
		"count":   len(classes),
	})
}

// Info returns static service metadata and the endpoint listing.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	classes := []string{}
	loaded := false
	if h.engine != nil {
		classes = h.engine.Metadata().Classes
		loaded = h.engine.Ready()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":         serviceName,
		"version":      serviceVersion,
		"description":  "API for detecting potato plant diseases from leaf photographs",
		"model_loaded": loaded,
		"classes":      classes,
		"endpoints": map[string]string{
			"health":            "GET /health",
			"info":              "GET /info",
			"classes":           "GET /classes",
			"predict_multipart": "POST /predict (multipart/form-data)",
			"predict_base64":    "POST /predict/base64 (application/json)",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
