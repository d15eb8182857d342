package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Library answers the function calls of a model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Function is a tool that a model can call.
type Function interface {
	// Declaration declares this function to the model.
	Declaration() *genai.FunctionDeclaration
	// Call calls this function.
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// NewLibrary returns the Library dispatching a call to the function of the same name.
func NewLibrary[T Function](functions []T) Library {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		for _, f := range functions {
			if f.Declaration().Name == call.Name {
				return f.Call(ctx, call.ID, call.Args)
			}
		}
		return failure(call.ID, call.Name, fmt.Errorf("unknown function %s", call.Name))
	}
}

// NewDeclaration returns the declarations of functions.
func NewDeclaration[T Function](functions []T) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		result = append(result, f.Declaration())
	}
	return result
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

// Call calls Func, its output or its error becomes the response.
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	out, err := f.Func(ctx, args)
	if err != nil {
		return failure(id, f.Decl.Name, err)
	}
	return output(id, f.Decl.Name, out)
}

func output(id, name, out string) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"output": out}}
}

// failure returns the error to the model, errors are sent as text.
func failure(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": err.Error()}}
}
