package syntax

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the AST to w.
func FprintJSON(w io.Writer, n Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(n))
}

func toJSON(node Node) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *FuncHeader:
		return map[string]interface{}{
			"type":   "FuncHeader",
			"pos":    n.pos.String(),
			"name":   n.Name,
			"params": n.Params,
			"body":   toJSON(n.Body),
		}

	case *BinaryOp:
		return map[string]interface{}{
			"type": "BinaryOp",
			"pos":  n.pos.String(),
			"op":   string(n.Op),
			"x":    toJSON(n.X),
			"y":    toJSON(n.Y),
		}

	case *Variable:
		return map[string]interface{}{
			"type":    "Variable",
			"pos":     n.pos.String(),
			"name":    n.Name,
			"negated": n.Negated,
		}

	case *Constant:
		m := map[string]interface{}{
			"type":  "Constant",
			"pos":   n.pos.String(),
			"value": n.Value,
		}
		if n.Name != "" {
			m["name"] = n.Name
		}
		return m

	case *FuncCall:
		return map[string]interface{}{
			"type": "FuncCall",
			"pos":  n.pos.String(),
			"name": n.Name,
			"arg":  toJSON(n.Arg),
		}

	case *Negation:
		return map[string]interface{}{
			"type": "Negation",
			"pos":  n.pos.String(),
			"x":    toJSON(n.X),
		}

	default:
		return map[string]interface{}{
			"type": "Unknown",
		}
	}
}
