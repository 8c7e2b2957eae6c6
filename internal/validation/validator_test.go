// CourseForge - Course Pattern Analytics and Quality Tracking
// Copyright 2026 CourseForge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/courseforge/courseforge

package validation

import (
	"strings"
	"testing"
)

type matchRequest struct {
	CourseID  string  `validate:"required"`
	Threshold float64 `validate:"min=0,max=1"`
	Kind      string  `validate:"omitempty,oneof=structural content progression engagement assessment"`
}

func TestValidateStructPasses(t *testing.T) {
	req := matchRequest{CourseID: "course-1", Threshold: 0.8, Kind: "structural"}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(&matchRequest{Threshold: 0.5})
	if err == nil {
		t.Fatal("missing required field accepted")
	}
	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Field() != "CourseID" || errs[0].Tag() != "required" {
		t.Errorf("unexpected failure %s/%s", errs[0].Field(), errs[0].Tag())
	}
	if !strings.Contains(err.Error(), "CourseID is required") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidateStructRange(t *testing.T) {
	err := ValidateStruct(&matchRequest{CourseID: "c", Threshold: 1.5})
	if err == nil {
		t.Fatal("out-of-range threshold accepted")
	}
	if !strings.Contains(err.Error(), "must be at most 1") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidateStructOneOf(t *testing.T) {
	err := ValidateStruct(&matchRequest{CourseID: "c", Threshold: 0.5, Kind: "bogus"})
	if err == nil {
		t.Fatal("unknown kind accepted")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	err := ValidateStruct(&matchRequest{Threshold: 0.5})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "CourseID" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	err := ValidateStruct(&matchRequest{Threshold: -1, Kind: "bogus"})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3", len(err.Errors()))
	}
	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("Details.fields = %v", apiErr.Details["fields"])
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned different instances")
	}
}
