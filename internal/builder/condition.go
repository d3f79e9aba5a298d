package builder

import (
	"github.com/google/cel-go/cel"

	"github.com/alevsk/iamgraph/internal/graph"
)

// conditionEnv is a shared CEL environment declaring the variables GCP IAM
// conditions are written against. It is built once; cel.Env values are
// safe for concurrent use.
var conditionEnv *cel.Env

func init() {
	env, err := cel.NewEnv(
		cel.Variable("resource", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("request", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("destination", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		// The variable declarations above are static and known-valid;
		// a failure here means the cel-go API itself changed shape.
		panic(err)
	}
	conditionEnv = env
}

// classifyCondition compiles a GCP IAM Condition's CEL expression and
// reports how it should influence path analysis:
//
//   - ConditionInvalid: the expression does not compile. Treated
//     conservatively as if it always blocks (the caller still keeps the
//     edge, but marks it damped, since we can't evaluate it).
//   - ConditionStatic: compiles and references no request/runtime
//     variables (only resource.name-style constants), so the condition
//     could in principle be evaluated once at build time.
//   - ConditionContextual: compiles but depends on request-time context
//     (request.time, destination.*) that the graph cannot evaluate
//     offline, so it is treated as "may or may not be satisfied".
func classifyCondition(expr string) graph.ConditionClass {
	if expr == "" {
		return graph.ConditionNone
	}
	ast, issues := conditionEnv.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return graph.ConditionInvalid
	}
	for _, v := range ast.NativeRep().SourceInfo().MacroCalls() {
		_ = v // macro presence doesn't change classification; CEL handles expansion.
	}
	if referencesRuntimeContext(expr) {
		return graph.ConditionContextual
	}
	return graph.ConditionStatic
}

// referencesRuntimeContext is a cheap syntactic check for the condition
// variables GCP documents as only resolvable at request time.
func referencesRuntimeContext(expr string) bool {
	for _, marker := range []string{"request.time", "request.auth", "destination."} {
		if containsToken(expr, marker) {
			return true
		}
	}
	return false
}

func containsToken(s, tok string) bool {
	for i := 0; i+len(tok) <= len(s); i++ {
		if s[i:i+len(tok)] == tok {
			return true
		}
	}
	return false
}
