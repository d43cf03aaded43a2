package api

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glucoscholar-server/internal/domain"
	"github.com/glucoscholar-server/internal/report"
)

const dateLayout = "2006-01-02"

// errorResponse writes a standardized error body.
func errorResponse(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewAppError(code, message, details, c.GetString("correlation_id")))
}

// handlePredict runs one prediction request through the full pipeline.
func (s *Server) handlePredict(c *gin.Context) {
	var input domain.PredictionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"invalid request body", err.Error())
		return
	}

	resp, err := s.deps.Predictions.Predict(c.Request.Context(), &input)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, domain.ErrClassification,
			"prediction failed", err.Error())
		return
	}

	if resp.Rejected() {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleListPredictions returns stored predictions for an inclusive date
// range.
func (s *Server) handleListPredictions(c *gin.Context) {
	start, end, ok := s.dateRange(c)
	if !ok {
		return
	}

	rows, err := s.deps.Store.QueryRange(c.Request.Context(), start, end)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"failed to query predictions", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start":       start.Format(dateLayout),
		"end":         end.Format(dateLayout),
		"count":       len(rows),
		"predictions": rows,
	})
}

// handleEncoders exposes the categorical class lists in code order, so
// clients can populate selection inputs from the live model.
func (s *Server) handleEncoders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		domain.FieldGender:         s.deps.Encoders.GenderClasses(),
		domain.FieldSmokingHistory: s.deps.Encoders.SmokingHistoryClasses(),
	})
}

// handleDatasetAnalyze classifies every row of an uploaded CSV dataset.
func (s *Server) handleDatasetAnalyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"dataset file is required", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"failed to open dataset file", err.Error())
		return
	}
	defer file.Close()

	summary, err := s.deps.Datasets.Analyze(file, fileHeader.Filename)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"dataset analysis failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, summary)
}

// handleCSVReport exports a date range of predictions as CSV.
func (s *Server) handleCSVReport(c *gin.Context) {
	rows, start, end, ok := s.reportRows(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rows); err != nil {
		errorResponse(c, http.StatusInternalServerError, domain.ErrInternalServer,
			"failed to generate CSV report", err.Error())
		return
	}

	filename := report.CSVFilename(start, end)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// handleXLSXReport exports a date range of predictions as a spreadsheet.
func (s *Server) handleXLSXReport(c *gin.Context) {
	rows, start, end, ok := s.reportRows(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rows); err != nil {
		errorResponse(c, http.StatusInternalServerError, domain.ErrInternalServer,
			"failed to generate spreadsheet report", err.Error())
		return
	}

	filename := report.XLSXFilename(start, end)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// pdfReportRequest carries the patient snapshot rendered into a PDF
// report. Values are raw strings as entered; malformed numerics degrade
// individual recommendation rules instead of failing the report.
type pdfReportRequest struct {
	domain.PredictionInput
	Result string `json:"result"`
}

// handlePDFReport renders a single-patient assessment report.
func (s *Server) handlePDFReport(c *gin.Context) {
	var req pdfReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"invalid request body", err.Error())
		return
	}
	if req.Result != domain.ResultDiabetic && req.Result != domain.ResultNotDiabetic {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			fmt.Sprintf("result must be %q or %q", domain.ResultDiabetic, domain.ResultNotDiabetic), "")
		return
	}

	fields := map[string]string{
		domain.FieldGender:            req.Gender,
		domain.FieldAge:               req.Age,
		domain.FieldHypertension:      req.Hypertension,
		domain.FieldHeartDisease:      req.HeartDisease,
		domain.FieldSmokingHistory:    req.SmokingHistory,
		domain.FieldBMI:               req.BMI,
		domain.FieldHbA1cLevel:        req.HbA1cLevel,
		domain.FieldBloodGlucoseLevel: req.BloodGlucoseLevel,
	}
	recommendations := s.deps.Predictions.Engine().RecommendationsFromRaw(req.Result, fields)

	var buf bytes.Buffer
	err := report.WritePDF(&buf, report.PatientReport{
		Age:             req.Age,
		Gender:          req.Gender,
		BMI:             req.BMI,
		HbA1cLevel:      req.HbA1cLevel,
		BloodGlucose:    req.BloodGlucoseLevel,
		Result:          req.Result,
		Recommendations: recommendations,
	})
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, domain.ErrInternalServer,
			"failed to generate PDF report", err.Error())
		return
	}

	filename := report.PDFFilename(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// handleOCRExtract runs OCR over an uploaded document image.
func (s *Server) handleOCRExtract(c *gin.Context) {
	if s.deps.Extractor == nil {
		errorResponse(c, http.StatusServiceUnavailable, domain.ErrExternalService,
			"OCR is not configured", "")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"image file is required", err.Error())
		return
	}

	// gosseract reads from disk, so spill the upload to a temp file
	tmpPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("glucoscholar-ocr-%s%s", uuid.New().String(), filepath.Ext(fileHeader.Filename)))
	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		errorResponse(c, http.StatusInternalServerError, domain.ErrInternalServer,
			"failed to store uploaded image", err.Error())
		return
	}
	defer os.Remove(tmpPath)

	text, err := s.deps.Extractor.ExtractText(c.Request.Context(), tmpPath)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, domain.ErrExternalService,
			"text extraction failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": fileHeader.Filename,
		"text":     text,
	})
}

// searchRequest is the body of a resource search.
type searchRequest struct {
	Query string `json:"query"`
}

// handleSearch returns medical resource links for a free-text query.
func (s *Server) handleSearch(c *gin.Context) {
	if s.deps.Searcher == nil {
		errorResponse(c, http.StatusServiceUnavailable, domain.ErrExternalService,
			"search is not configured", "")
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"query is required", "")
		return
	}

	results, err := s.deps.Searcher.Search(c.Request.Context(), req.Query)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, domain.ErrExternalService,
			"search failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
	})
}

// dateRange parses and validates the start/end query parameters.
func (s *Server) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" || endStr == "" {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"start and end query parameters are required (YYYY-MM-DD)", "")
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"invalid start date, expected YYYY-MM-DD", err.Error())
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"invalid end date, expected YYYY-MM-DD", err.Error())
		return time.Time{}, time.Time{}, false
	}

	if start.After(end) {
		errorResponse(c, http.StatusBadRequest, domain.ErrValidation,
			"Start date cannot be after End date", "")
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// reportRows loads the rows for an export request. Empty ranges are a 404
// so clients can distinguish "no data" from an empty file.
func (s *Server) reportRows(c *gin.Context) ([]domain.PredictionRow, time.Time, time.Time, bool) {
	start, end, ok := s.dateRange(c)
	if !ok {
		return nil, time.Time{}, time.Time{}, false
	}

	rows, err := s.deps.Store.QueryRange(c.Request.Context(), start, end)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, domain.ErrDatabaseError,
			"failed to query predictions", err.Error())
		return nil, time.Time{}, time.Time{}, false
	}
	if len(rows) == 0 {
		errorResponse(c, http.StatusNotFound, domain.ErrValidation,
			"No records found in selected period", "")
		return nil, time.Time{}, time.Time{}, false
	}

	return rows, start, end, true
}
