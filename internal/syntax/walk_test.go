package syntax

import (
	"strings"
	"testing"
)

func TestFreeVars(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"1 + 2", nil},
		{"x", []string{"x"}},
		{"a*x + b", []string{"a", "x", "b"}},
		{"x*x + x", []string{"x"}},
		{"sin(t) * -a", []string{"t", "a"}},
		{"f(x, a) = a", []string{"a"}},
		{"pi * e", nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := FreeVars(parse(t, tt.src))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("FreeVars = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReferences(t *testing.T) {
	n := parse(t, "f(x, t) = sin(x*t)")
	if !References(n, "t") {
		t.Error("References(t) = false, want true")
	}
	if References(n, "a") {
		t.Error("References(a) = true, want false")
	}
}

func TestWalkOrder(t *testing.T) {
	var kinds []string
	Walk(parse(t, "f(x) = -(x + 1) * sin(2)"), func(n Node) bool {
		kinds = append(kinds, strings.SplitN(Summary(n), "(", 2)[0])
		return true
	})

	want := "FuncHeader BinaryOp Negation BinaryOp Variable Constant FuncCall Constant"
	if got := strings.Join(kinds, " "); got != want {
		t.Errorf("walk order = %s, want %s", got, want)
	}
}

func TestWalkPrune(t *testing.T) {
	count := 0
	Walk(parse(t, "sin(x + y) + z"), func(n Node) bool {
		count++
		_, isCall := n.(*FuncCall)
		return !isCall
	})
	// BinaryOp, FuncCall, Variable z
	if count != 3 {
		t.Errorf("visited %d nodes, want 3", count)
	}
}

func TestWalkNil(t *testing.T) {
	Walk(nil, func(Node) bool {
		t.Fatal("visitor called for nil node")
		return true
	})
}
