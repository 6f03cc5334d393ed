package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"GoldCast/internal/domain/models"
	"GoldCast/internal/service/metrics"
	"GoldCast/internal/service/ratelimit"
	"GoldCast/internal/usecase"
	xhttp "GoldCast/pkg/http"
	applogger "GoldCast/pkg/logger"
)

const uploadField = "file"

// PredictEchoHandler serves the prediction and feature export endpoints.
type PredictEchoHandler struct {
	logger    *applogger.Logger
	predict   *usecase.PredictUseCase
	features  *usecase.FeaturesUseCase
	rl        *ratelimit.Limiter
	maxUpload int64
}

func NewPredictEchoHandler(
	logger *applogger.Logger,
	predict *usecase.PredictUseCase,
	features *usecase.FeaturesUseCase,
	rl *ratelimit.Limiter,
	maxUpload int64,
) *PredictEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = applogger.Nop()
	}
	return &PredictEchoHandler{
		logger:    logger,
		predict:   predict,
		features:  features,
		rl:        rl,
		maxUpload: maxUpload,
	}
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/predict_csv", h.Predict, h.observe("predict_csv"))
	e.POST("/predict_csv", h.Predict, h.observe("predict_csv"))

	g := e.Group("/api")
	g.POST("/features", h.Features, h.observe("features"))
	g.GET("/models", h.Models, h.observe("models"))
	g.GET("/predictions", h.History, h.observe("predictions"))
}

// observe records latency and error status per endpoint and applies the
// per-client rate limit.
func (h *PredictEchoHandler) observe(endpoint string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			defer func() {
				metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
				if status := c.Response().Status; status >= http.StatusBadRequest {
					metrics.EndpointErrors.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
				}
			}()

			if !h.rl.Allow(c.RealIP() + ":" + endpoint) {
				metrics.RateLimited.WithLabelValues(endpoint).Inc()
				h.logger.Warn("request rate limited",
					applogger.String("endpoint", endpoint),
					applogger.String("remote", c.RealIP()),
				)
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded, retry later"))
			}
			return next(c)
		}
	}
}

func (h *PredictEchoHandler) Predict(c echo.Context) error {
	data, err := h.readUpload(c)
	if err != nil {
		return h.fail(c, "predict_csv", err)
	}
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.predict.Predict(c.Request().Context(), req.Source, data)
	if err != nil {
		return h.fail(c, "predict_csv", err)
	}
	h.logger.Info("prediction served",
		applogger.String("candle_pattern", res.CandlePattern),
		applogger.Int("prediction", res.Label),
		applogger.String("model", res.Model),
		applogger.Int("rows_out", res.RowsOut),
	)
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictEchoHandler) Features(c echo.Context) error {
	req := &models.FeaturesRequest{}
	if verr := xhttp.ReadAndValidateQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	data, err := h.readUpload(c)
	if err != nil {
		return h.fail(c, "features", err)
	}

	res, err := h.features.Features(c.Request().Context(), data, req.Limit)
	if err != nil {
		return h.fail(c, "features", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictEchoHandler) Models(c echo.Context) error {
	refs, err := h.predict.Models(c.Request().Context())
	if err != nil {
		return h.fail(c, "models", err)
	}
	return xhttp.ListResponse(c, refs, int64(len(refs)))
}

func (h *PredictEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.predict.History(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "predictions", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictEchoHandler) Health(c echo.Context) error {
	if err := h.predict.Health(c.Request().Context()); err != nil {
		h.logger.Warn("health check failed", applogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"store": "unavailable"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// readUpload returns the bytes of the multipart "file" field.
func (h *PredictEchoHandler) readUpload(c echo.Context) ([]byte, error) {
	r := c.Request()
	if h.maxUpload > 0 {
		if r.ContentLength > h.maxUpload {
			return nil, tooLarge(h.maxUpload)
		}
		r.Body = http.MaxBytesReader(c.Response(), r.Body, h.maxUpload)
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			return nil, tooLarge(h.maxUpload)
		case r.MultipartForm != nil && len(r.MultipartForm.Value[uploadField]) > 0:
			// a part without a filename is parsed as a plain form value
			return nil, xhttp.BadRequestError("empty filename").WithField(uploadField)
		default:
			return nil, xhttp.BadRequestError("csv file is required").WithField(uploadField).WithError(err)
		}
	}
	if strings.TrimSpace(fh.Filename) == "" {
		return nil, xhttp.BadRequestError("empty filename").WithField(uploadField)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, xhttp.InternalError("cannot open upload").WithError(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, xhttp.InternalError("cannot read upload").WithError(err)
	}
	return data, nil
}

func tooLarge(max int64) *xhttp.AppError {
	return xhttp.TooLargeError("upload exceeds the size limit").
		WithField(uploadField).
		WithParam("max_bytes", max)
}

func (h *PredictEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		h.logger.Warn("request rejected",
			applogger.String("endpoint", endpoint),
			applogger.Int("status", appErr.Status),
			applogger.String("reason", appErr.Message),
		)
	} else {
		h.logger.Error("request failed", applogger.String("endpoint", endpoint), applogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, err)
}
