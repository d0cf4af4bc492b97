package agent

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/castorhq/castor"
	"github.com/castorhq/castor/docs"
	"github.com/castorhq/castor/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newFacilitator creates the conversation lead. It is never declared as a
// tool itself, so it carries no description.
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
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is a member (or a prospective member) of a shared property purchase. He is here
			primarily to understand what a lot costs, what a sale redistributes, and where the
			project's money stands.

			Devise a plan of questions to ask to each experts and come up with the best reponse
			to the user's request.

			The user will assume that you already know his co-purchase registry, check it first
			through the Bookkeeper to understand who the participants are.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAdvisor creates the search-grounded expert on everything around a
// shared purchase: co-ownership law, notary fees, indexes, market prices.
func NewAdvisor() *Expert {
	return &Expert{
		Name: "Advisor",
		Description: `This is an expert advisor on shared real estate purchases,
		very well aware of co-ownership rules, financing, notary practice,
		and the public price and rent indexes.
		Ask the Advisor whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in shared real estate purchases: co-ownership law, financing,
			taxes, notary fees, and the public indexes used to index prices over time.
			You leverage Google Search to ground your assertions in a solid truth.
			You can get the latest news too, and you know how to relate them to the user's request.
				`}}},
		},
	}
}

// NewBookkeeper creates the expert in charge of the co-purchase registry.
// Its tools decode the registry file, run it through a fresh engine, and
// answer with the same markdown reports the CLI prints.
func NewBookkeeper(registryFile string) *Expert {

	lib := []Function{
		participantsFunc(registryFile),
		timelineFunc(registryFile),
		breakdownFunc(registryFile),
	}

	return &Expert{
		Name: "Bookkeeper",
		Description: `This is the Bookkeeper. He keeps the co-purchase registry: the portage formula,
		the reserve ratio, the lots, and the participants.
		He can compute any indexed price, the breakdown of any sale, and the full timeline
		of the project's money.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are the bookkeeper of the user's shared property purchase.
				You know how to use the Tools to extract relevant information about the
				participants, the lot prices, the sale redistributions, and the timeline.
				You are part of a team of experts, yours is everything recorded in the
				registry. They might ask you questions about it, pardon their approximative
				language and figure out what they meant.

				Use the available tools to get information about the co-purchase
				  - list of participants and lots
				  - timeline of contributions and purchases
				  - breakdown of one participant's purchase
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func errResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

func participantsFunc(registryFile string) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "participants",
			Description: `participants lists every member of the co-purchase with their entry date,
			capital, founder status, and the lot they buy, plus the declared lots and prices.

			` + must(docs.GetTopic("registry")),
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "Markdown tables of the participants and the declared lots.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			eng, err := loadEngine(registryFile)
			if err != nil {
				return errResponse(id, "participants", err)
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "participants",
				Response: map[string]any{
					"output": renderer.ParticipantsMarkdown(eng.Registry()),
				},
			}
		},
	}
}

func timelineFunc(registryFile string) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "timeline",
			Description: `timeline replays the whole registry and reports every contribution and
			purchase in date order, with the reserve balance and the final position
			(invested, received, net) of every participant.

			` + must(docs.GetTopic("timeline")),
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of the timeline and the final positions.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			eng, err := loadEngine(registryFile)
			if err != nil {
				return errResponse(id, "timeline", err)
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "timeline",
				Response: map[string]any{
					"output": renderer.TimelineMarkdown(eng.ExportLedger()),
				},
			}
		},
	}
}

func breakdownFunc(registryFile string) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "breakdown",
			Description: `breakdown details one participant's purchase: the indexed price and, for
			co-ownership sales, how the proceeds split between the reserve and the members.

			` + must(docs.GetTopic("redistribution")),
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name": {
						Type:        genai.TypeString,
						Description: "The name of the participant whose purchase to break down.",
					},
				},
				Required: []string{"name"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report of the purchase and its redistribution.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			name, ok := args["name"].(string)
			if !ok {
				return errResponse(id, "breakdown", fmt.Errorf("argument 'name' is not a string as expected but %T", args["name"]))
			}
			eng, err := loadEngine(registryFile)
			if err != nil {
				return errResponse(id, "breakdown", err)
			}
			p := eng.Registry().Participant(name)
			if p == nil {
				return errResponse(id, "breakdown", fmt.Errorf("no participant named %q in the registry", name))
			}
			if p.Lot == "" {
				return errResponse(id, "breakdown", fmt.Errorf("%s buys no lot, there is nothing to break down", name))
			}

			txID := castor.PurchaseID(name, p.Lot)
			tx, err := eng.Priced(txID)
			if err != nil {
				return errResponse(id, "breakdown", err)
			}
			b, err := eng.Breakdown(txID)
			if err != nil {
				var na *castor.NotApplicableError
				if !errors.As(err, &na) {
					return errResponse(id, "breakdown", err)
				}
				b = nil // private sale, report the price only
			}
			return &genai.FunctionResponse{
				ID:   id,
				Name: "breakdown",
				Response: map[string]any{
					"output": renderer.RenderBreakdown(renderer.NewBreakdownReport(tx, b)),
				},
			}
		},
	}
}

// loadEngine decodes the registry file and commits it to a fresh engine. A
// missing file is an empty registry.
func loadEngine(registryFile string) (*castor.Engine, error) {
	reg := castor.NewRegistry()
	f, err := os.Open(registryFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not open registry file %q: %w", registryFile, err)
		}
	} else {
		defer f.Close()
		reg, err = castor.DecodeRegistry(f)
		if err != nil {
			return nil, fmt.Errorf("could not decode registry file %q: %w", registryFile, err)
		}
	}

	eng := castor.NewEngine()
	if _, err := eng.CommitInputs(reg); err != nil {
		return nil, fmt.Errorf("could not compute the co-purchase: %w", err)
	}
	return eng, nil
}
