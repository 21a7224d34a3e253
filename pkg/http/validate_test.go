package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Limit int    `json:"limit" default:"10" validate:"gte=1,lte=20"`
}

func bindCtx(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	var s sample
	if err := ReadAndValidateRequest(bindCtx(`{"name":"abc"}`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Limit != 10 {
		t.Fatalf("limit = %d", s.Limit)
	}
}

func TestReadAndValidateRequestFailures(t *testing.T) {
	cases := map[string]string{
		"missing name": `{"limit":3}`,
		"long name":    `{"name":"abcdef"}`,
		"limit range":  `{"name":"a","limit":21}`,
		"bad json":     `{"name":`,
	}
	for name, body := range cases {
		var s sample
		err := ReadAndValidateRequest(bindCtx(body), &s)
		var appErr *AppError
		if !errors.As(err, &appErr) {
			t.Fatalf("%s: expected AppError, got %v", name, err)
		}
		if appErr.Status != http.StatusBadRequest || len(appErr.Details) == 0 {
			t.Fatalf("%s: %+v", name, appErr)
		}
	}
}

func TestApplyAndValidateMessages(t *testing.T) {
	s := sample{Name: "toolong"}
	err := ApplyAndValidate(context.Background(), &s)
	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	d := appErr.Details[0]
	if d.Code != "ERR_MAX" || d.Field != "Name" || d.Message != "Name must be at most 5 characters" {
		t.Fatalf("detail = %+v", d)
	}
	if d.Params["max"] != "5" {
		t.Fatalf("params = %v", d.Params)
	}
}
