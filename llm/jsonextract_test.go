package llm

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONPlainObject(t *testing.T) {
	raw, err := ExtractJSON(`{"metric":"revenue","value":100}`, ShapeObject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out["metric"] != "revenue" {
		t.Fatalf("unexpected decoded value: %v", out)
	}
}

func TestExtractJSONStripsCodeFence(t *testing.T) {
	reply := "```json\n{\"ok\": true}\n```"
	raw, err := ExtractJSON(reply, ShapeObject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]bool
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !out["ok"] {
		t.Fatal("expected ok:true")
	}
}

func TestExtractJSONFindsFirstBalancedSubstringAmongPrefixText(t *testing.T) {
	reply := `Sure, here is the analysis: {"key_message": "growth", "data_points": ["a", "b"]} Hope that helps!`
	raw, err := ExtractJSON(reply, ShapeObject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out["key_message"] != "growth" {
		t.Fatalf("unexpected decoded value: %v", out)
	}
}

func TestExtractJSONArrayShape(t *testing.T) {
	reply := `[{"metric":"a"},{"metric":"b"}]`
	raw, err := ExtractJSON(reply, ShapeArray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(out))
	}
}

func TestExtractJSONWrapsDanglingObjectForArrayShape(t *testing.T) {
	reply := `{"metric":"revenue","value":1}`
	raw, err := ExtractJSON(reply, ShapeArray)
	if err != nil {
		// No array-shaped brackets exist, so the lone object is located
		// and wrapped in '[...]' by the remediation pass.
		t.Fatalf("expected the dangling object to be wrapped, got %v", err)
	}
	var out []map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(out) != 1 || out[0]["metric"] != "revenue" {
		t.Fatalf("expected one wrapped element with metric revenue, got %s", raw)
	}
}

func TestExtractJSONEmptyReplyFails(t *testing.T) {
	_, err := ExtractJSON("", ShapeObject)
	if err == nil {
		t.Fatal("expected error for empty reply")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Reason != "empty" {
		t.Fatalf("expected ParseError(empty), got %v", err)
	}
}

func TestExtractJSONIdempotentOnWellFormedReply(t *testing.T) {
	reply := `{"a":1,"b":[1,2,3]}`
	first, err := ExtractJSON(reply, ShapeObject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ExtractJSON(string(first), ShapeObject)
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected idempotent extraction, got %s vs %s", first, second)
	}
}

func TestExtractJSONRemediatesStrayQuotes(t *testing.T) {
	reply := `{"title": "the "best" quarter", "value": 1}`
	raw, err := ExtractJSON(reply, ShapeObject)
	if err != nil {
		t.Fatalf("expected remediation to succeed, got %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("remediated json still invalid: %v (%s)", err, raw)
	}
}

func TestExtractJSONFailsAfterRemediationWhenStillInvalid(t *testing.T) {
	reply := `{not json at all`
	_, err := ExtractJSON(reply, ShapeObject)
	if err == nil {
		t.Fatal("expected failure for unrecoverable input")
	}
}
