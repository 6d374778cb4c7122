package syntax

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestStringReparses(t *testing.T) {
	srcs := []string{
		"f(x, t) = sin(x*sin(t))",
		"-x^2 + 3*x - 1",
		"-(x)^2",
		"2^3^2",
		"a/b/c",
		"sqrt(abs(-x)) * -pi",
		"0.000001*x",
		"-sin(x)*-cos(t)",
	}

	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			first := String(parse(t, src))
			second := String(parse(t, first))
			if first != second {
				t.Errorf("String not stable:\n first  %s\n second %s", first, second)
			}
		})
	}
}

func TestStringNoExponent(t *testing.T) {
	n := NewConstant(NewPos(1), 1e-7)
	if got := String(n); strings.ContainsAny(got, "eE") {
		t.Errorf("String(1e-7) = %s, contains exponent", got)
	}
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf, parse(t, "f(x) = -x + 1"))

	want := `FuncHeader f col:1
  Params: [x]
  Body:
    BinaryOp + col:8
      Variable -x col:7
      Constant 1 col:9
`
	if got := buf.String(); got != want {
		t.Errorf("Fprint output:\n%s\nwant:\n%s", got, want)
	}
}

func TestFprintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FprintJSON(&buf, parse(t, "f(a) = a*pi")); err != nil {
		t.Fatal(err)
	}

	var root map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if root["type"] != "FuncHeader" || root["name"] != "f" {
		t.Fatalf("root = %v", root)
	}
	body, ok := root["body"].(map[string]interface{})
	if !ok || body["type"] != "BinaryOp" || body["op"] != "*" {
		t.Fatalf("body = %v", root["body"])
	}
	y, _ := body["y"].(map[string]interface{})
	if y["name"] != "pi" {
		t.Errorf("y = %v, want named constant pi", y)
	}
}
