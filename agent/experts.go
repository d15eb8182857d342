package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/indices"
	"github.com/etnz/indices/docs"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They keep context of your previous questions.

			The user maintains the monthly series of Brazilian economic indices used to adjust
			real estate contracts: IGPM, IPCA, CDI, INCC, savings, fixed interest rates and the
			Sinduscon construction costs. Answer in the user's language, Portuguese by default.
			Never guess a figure: ask the Analyst.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst returns the expert that reads the indices, with the tools of Tools.
func NewAnalyst(catalog indices.Catalog, engines map[string]*indices.Engine, logger *zap.Logger) *Expert {
	lib := Tools(catalog, engines)
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It knows every index of the catalog, how it is computed,
		and can read the value of any index for any month.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are the analyst of the index ledgers. Use the Tools:
				  - catalog to list the indices, their fields and the sources of their raw values,
				  - resultado to read the public fields of an index for a month.
				Variations are percents. Factors ("Fator Composto") are compounded from the start
				of the series.

			`+must(docs.GetTopic("indices"))}}},
		},
		Library: NewLibrary(lib),
		Logger:  logger,
	}
}

// Tools returns the read-only functions over the indices.
func Tools(catalog indices.Catalog, engines map[string]*indices.Engine) []Function {
	return []Function{catalogTool(catalog), resultadoTool(engines)}
}

func catalogTool(catalog indices.Catalog) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "catalog",
			Description: "catalog lists the known indices with their month field, public fields and raw value sources.",
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the indices.",
			},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			var b strings.Builder
			b.WriteString("| Índice | Mês | Campos | Fontes |\n|:---|:---|:---|:---|\n")
			for _, id := range catalog.IDs() {
				r := catalog[id]
				var sources []string
				for _, in := range r.Inputs {
					sources = append(sources, in.Source)
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", id, r.MonthKey, strings.Join(r.Projection, ", "), strings.Join(sources, ", "))
			}
			return b.String(), nil
		},
	}
}

func resultadoTool(engines map[string]*indices.Engine) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "resultado",
			Description: "resultado returns the public fields of an index for a month, as a JSON object.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"index": {
						Type:        genai.TypeString,
						Description: "The index id, as listed by catalog, for instance IGPM or IPCA 1%.",
					},
					"month": {
						Type:        genai.TypeString,
						Description: "The month, last month by default.\n\n" + must(docs.GetTopic("months")),
					},
				},
				Required: []string{"index"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The record of the month, as JSON.",
			},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			id, ok := args["index"].(string)
			if !ok {
				return "", fmt.Errorf("argument 'index' is not a string as expected but %T", args["index"])
			}
			e, ok := engines[id]
			if !ok {
				return "", fmt.Errorf("unknown index %q", id)
			}
			m, err := monthArg(args)
			if err != nil {
				return "", err
			}
			rec, err := e.Resultado(ctx, m)
			if err != nil {
				return "", err
			}
			return rec.String(), nil
		},
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func monthArg(args map[string]any) (indices.Month, error) {
	arg, ok := args["month"]
	if !ok {
		return indices.ThisMonth().Previous(), nil
	}
	s, ok := arg.(string)
	if !ok {
		return indices.Month{}, fmt.Errorf("argument 'month' is not a string as expected but %T", arg)
	}
	return indices.ParseMonth(s)
}
