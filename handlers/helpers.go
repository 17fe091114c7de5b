package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/curious-broccoli/ufo-hackathon/scoring"
	"github.com/curious-broccoli/ufo-hackathon/services"
)

type jsonResponse map[string]interface{}

// cceFailureMessage is deliberately generic: the shape or value problem the
// engine found is not echoed back to the submitter.
const cceFailureMessage = "Failed to calculate the CCE. Make sure each file's prediction " +
	"is a 1-dimensional list of floats"

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 10 << 20 // prediction payloads carry one vector per evaluation file
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", slog.String("path", r.URL.Path), slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// mapServiceErrorToHTTP translates service-layer errors into HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var quotaErr *services.QuotaExceededError
	var computationErr *scoring.ComputationError

	switch {
	case errors.Is(err, services.ErrGroupNameRequired),
		errors.Is(err, services.ErrGroupNameTooLong):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrGroupNotFound):
		errorResponse(w, r, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrGroupHasSubmissions):
		errorResponse(w, r, http.StatusConflict, err.Error())

	case errors.As(err, &quotaErr):
		badRequestResponse(w, r, quotaErr)

	case errors.As(err, &computationErr):
		// Information-hiding: the numeric detail stays in the server log.
		slog.Info("submission failed to score", slog.String("kind", string(computationErr.Kind)))
		errorResponse(w, r, http.StatusBadRequest, cceFailureMessage)

	default:
		serverErrorResponse(w, r, err)
	}
}
