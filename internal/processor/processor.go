package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/predictor"
)

// BatchResponse is the output for a list of requests, entries line up with the input
type BatchResponse struct {
	Results []*predictor.Result `json:"results"`
	Errors  []string            `json:"errors,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// createErrorResponse creates an error response
func createErrorResponse(code, message string) ([]byte, error) {
	var response ErrorResponse
	response.Error.Code = code
	response.Error.Message = message

	return json.MarshalIndent(response, "", "  ")
}

// errorCode classifies an evaluation error for the response
func errorCode(err error) string {
	switch {
	case errors.Is(err, podds.ErrInvalidInput), errors.Is(err, predictor.ErrNoSeasonData):
		return "invalid_request"
	case errors.Is(err, podds.ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "evaluation_error"
	}
}

// ProcessRequest evaluates a JSON request, or a JSON array of requests, and returns the JSON result
func ProcessRequest(ctx context.Context, svc *predictor.Service, input []byte) ([]byte, error) {
	input = bytes.TrimSpace(input)
	if len(input) == 0 {
		return createErrorResponse("invalid_request", "empty input")
	}

	if input[0] == '[' {
		var requests []predictor.Request
		if err := json.Unmarshal(input, &requests); err != nil {
			logger.Error("Failed to parse input JSON", err)
			return createErrorResponse("invalid_request", fmt.Sprintf("Invalid JSON: %v", err))
		}
		logger.Info("Processing batch of", len(requests), "requests")

		results, errs := svc.EvaluateBatch(ctx, requests)
		response := BatchResponse{Results: results}
		var failed bool
		for _, err := range errs {
			if err != nil {
				failed = true
			}
		}
		if failed {
			response.Errors = make([]string, len(errs))
			for i, err := range errs {
				if err != nil {
					response.Errors[i] = err.Error()
				}
			}
		}
		return json.MarshalIndent(response, "", "  ")
	}

	var request predictor.Request
	if err := json.Unmarshal(input, &request); err != nil {
		logger.Error("Failed to parse input JSON", err)
		return createErrorResponse("invalid_request", fmt.Sprintf("Invalid JSON: %v", err))
	}
	logger.Info("Processing request", request.HomeTeam, "vs", request.AwayTeam)

	result, err := svc.Evaluate(ctx, request)
	if err != nil {
		logger.Error("Evaluation error", err)
		return createErrorResponse(errorCode(err), err.Error())
	}

	jsonResult, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal response to JSON", err)
		return createErrorResponse("internal_error", "Failed to create response")
	}
	return jsonResult, nil
}
