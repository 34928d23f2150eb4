package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/miguelgarza/comanda-backend/pkg/errors"
	"github.com/miguelgarza/comanda-backend/pkg/types"
)

func decodeError(t *testing.T, body []byte) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode success envelope: %v", err)
	}
	if envelope.Data == nil {
		t.Fatal("expected data payload")
	}
}

func TestWriteErrorMapsCodesToStatus(t *testing.T) {
	cases := []struct {
		code   pkgerrors.Code
		status int
	}{
		{pkgerrors.CodeValidation, 400},
		{pkgerrors.CodeNotFound, 404},
		{pkgerrors.CodeConflict, 409},
		{pkgerrors.CodeStateConflict, 422},
		{pkgerrors.CodeDependency, 503},
		{pkgerrors.CodeInternal, 500},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, pkgerrors.New(tc.code, "boom"))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			envelope := decodeError(t, rec.Body.Bytes())
			if envelope.Error.Code != string(tc.code) {
				t.Fatalf("expected code %s, got %s", tc.code, envelope.Error.Code)
			}
		})
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "password was hunter2"))

	envelope := decodeError(t, rec.Body.Bytes())
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal details must not leak, got %q", envelope.Error.Message)
	}
}

func TestWriteErrorSurfacesConflictMessageAndDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeConflict, "table is already reserved for Elena Reyes").
		WithDetails(map[string]any{"conflicting_reservation_id": "abc"})
	WriteError(context.Background(), nil, rec, err)

	envelope := decodeError(t, rec.Body.Bytes())
	if envelope.Error.Message != "table is already reserved for Elena Reyes" {
		t.Fatalf("conflict message must surface verbatim, got %q", envelope.Error.Message)
	}
	if envelope.Error.Details == nil {
		t.Fatal("conflict details must surface")
	}
}

func TestWriteErrorWrapsUntypedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("raw failure"))

	if rec.Code != 500 {
		t.Fatalf("untyped errors are internal, got %d", rec.Code)
	}
}
