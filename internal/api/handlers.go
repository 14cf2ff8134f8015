package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cpperf/internal/exclusion"
	"cpperf/internal/ingest"
	"cpperf/internal/report"
	"cpperf/internal/service"
	"cpperf/internal/voyage"
	"cpperf/internal/warranty"
)

// health handles GET /health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// params handles GET /api/v1/params
func (s *Server) params(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Params())
}

// analyze handles POST /api/v1/analyze
func (s *Server) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), map[string]any{"limit_bytes": tooLarge.Limit})
			return
		}
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, fmt.Sprintf("multipart field \"file\" is required: %v", err), nil)
		return
	}

	params, err := s.requestParams(c.PostForm("params"))
	if err != nil {
		s.respondAnalysisError(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternalError, "failed to open upload", nil)
		return
	}
	defer f.Close()

	table, err := ingest.Read(f, header.Filename)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	out, err := s.svc.RunWith(c.Request.Context(), table, params)
	if err != nil {
		s.respondAnalysisError(c, err)
		return
	}

	warnings := out.Warnings
	if warnings == nil {
		warnings = []voyage.RowCoercionWarning{}
	}
	notices := out.Notices
	if notices == nil {
		notices = []string{}
	}
	c.JSON(http.StatusOK, AnalyzeResponse{
		RunID:    out.RunID,
		Source:   out.Source,
		Voyage:   out.Voyage,
		Report:   out.Report,
		Weather:  out.Weather,
		Speed:    out.Speed,
		Verdict:  out.Verdict,
		Warnings: warnings,
		Notices:  notices,
		Dropped:  out.Dropped,
		Events:   out.Events,
	})
}

// requestParams applies the optional JSON override to the configured parameters.
func (s *Server) requestParams(raw string) (service.Params, error) {
	params := s.svc.Params()
	if strings.TrimSpace(raw) == "" {
		return params, nil
	}

	var o ParamsOverride
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		return service.Params{}, &invalidRequestError{msg: fmt.Sprintf("invalid params: %v", err)}
	}

	if o.WarrantedSpeedKnots != nil {
		params.Terms.WarrantedSpeedKnots = *o.WarrantedSpeedKnots
	}
	if o.WarrantedConsumptionMTPerDay != nil {
		params.Terms.WarrantedConsumptionMTPerDay = *o.WarrantedConsumptionMTPerDay
	}
	if o.FuelTolerancePct != nil {
		params.Terms.FuelTolerancePct = *o.FuelTolerancePct
	}
	if o.SpeedToleranceKnots != nil {
		params.Terms.SpeedToleranceKnots = *o.SpeedToleranceKnots
	}
	if o.MaxBeaufort != nil {
		params.Thresholds.MaxBeaufort = *o.MaxBeaufort
	}
	if o.MaxWaveHeightM != nil {
		params.Thresholds.MaxWaveHeightM = *o.MaxWaveHeightM
	}
	if o.BunkerPriceUSDPerMT != nil {
		params.BunkerPrice = decimal.NewFromFloat(*o.BunkerPriceUSDPerMT)
	}
	if o.Exclusions != nil {
		params.Exclusions = append([]exclusion.Period{}, (*o.Exclusions)...)
	}
	if o.Voyage != nil {
		params.Voyage = *o.Voyage
	}

	if err := params.Validate(); err != nil {
		var degenerate *warranty.DegenerateWarrantyError
		if errors.As(err, &degenerate) {
			return service.Params{}, err
		}
		return service.Params{}, &invalidRequestError{msg: err.Error()}
	}
	return params, nil
}

type invalidRequestError struct {
	msg string
}

func (e *invalidRequestError) Error() string { return e.msg }

func (s *Server) respondAnalysisError(c *gin.Context, err error) {
	var (
		schemaErr  *voyage.SchemaError
		degenerate *warranty.DegenerateWarrantyError
		nonFinite  *report.NonFiniteError
		invalid    *invalidRequestError
	)
	switch {
	case errors.As(err, &schemaErr):
		respondError(c, http.StatusBadRequest, CodeSchemaError, err.Error(), map[string]any{"missing": schemaErr.Missing})
	case errors.As(err, &degenerate):
		respondError(c, http.StatusUnprocessableEntity, CodeDegenerateWarranty, err.Error(), map[string]any{
			"param": degenerate.Param,
			"value": degenerate.Value,
		})
	case errors.As(err, &nonFinite):
		respondError(c, http.StatusUnprocessableEntity, CodeNonFiniteResult, err.Error(), map[string]any{"metric": nonFinite.Key})
	case errors.As(err, &invalid):
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
	default:
		s.logger.Error().Err(err).Msg("analysis failed")
		respondError(c, http.StatusInternalServerError, CodeInternalError, "analysis failed", nil)
	}
}

func respondError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
