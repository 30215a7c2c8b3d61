package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/pipeline"
)

type predictResponse struct {
	Status     bool   `json:"status"`
	Label      int    `json:"label"`
	Prediction string `json:"prediction"`
	RunID      string `json:"run_id"`
}

type errorResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error"`
}

type trainResponse struct {
	Status        bool    `json:"status"`
	RunID         string  `json:"run_id,omitempty"`
	Accepted      bool    `json:"accepted"`
	TrainAccuracy float64 `json:"train_accuracy"`
	TestAccuracy  float64 `json:"test_accuracy"`
	ModelKey      string  `json:"model_key,omitempty"`
	Duration      string  `json:"duration"`
	Error         string  `json:"error,omitempty"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	fields, err := readFields(r)
	if err == nil && len(fields) == 0 {
		err = errors.New("request has no fields")
	}
	if err != nil {
		s.logger.Debug("Rejected prediction request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	fields, err = s.textProcessor.ProcessFields(fields, maxFieldBytes)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	prediction, err := s.predictor.Predict(r.Context(), core.NewRecord(fields))
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Status:     true,
		Label:      prediction.Label,
		Prediction: prediction.Status,
		RunID:      prediction.RunID,
	})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	result, err := s.trainer.Run(r.Context())
	if errors.Is(err, pipeline.ErrTrainingInProgress) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}

	resp := trainResponse{Status: err == nil}
	if result != nil {
		resp.RunID = result.RunID
		resp.Duration = result.Duration.Round(time.Millisecond).String()
		if m := result.Model; m != nil {
			resp.Accepted = m.Accepted
			resp.TrainAccuracy = m.TrainAccuracy
			resp.TestAccuracy = m.TestAccuracy
			if m.Accepted {
				resp.ModelKey = m.ModelKey
			}
		}
	}
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readFields accepts a JSON object or a url-encoded/multipart form.
func readFields(r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		fields := make(map[string]string, len(body))
		for k, v := range body {
			s, err := stringValue(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = s
		}
		return fields, nil
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	fields := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields, nil
}

func stringValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", errors.New("value must be a string, number or boolean")
	}
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.ErrInvalidInput:
		return http.StatusBadRequest
	case core.ErrUpstreamValidation, core.ErrLabelMapping:
		return http.StatusUnprocessableEntity
	case core.ErrArtifactNotFound:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
