package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/agentchat/agentchat/llmwire"
)

const pipelineDelay = 1500 * time.Millisecond

// PipelineTool simulates an AI workflow pipeline. There is no real backend:
// it sleeps to emulate asynchronous processing, then selects a canned
// response template keyed by workflow name. Confidence and sentiment values
// are randomly generated and non-authoritative; a real pipeline integration
// would plug in here.
type PipelineTool struct {
	delay time.Duration
	rng   *rand.Rand
}

// NewPipelineTool creates a PipelineTool with the standard simulated delay.
func NewPipelineTool() *PipelineTool {
	return &PipelineTool{
		delay: pipelineDelay,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (t *PipelineTool) Name() string { return "ai_pipe" }

func (t *PipelineTool) Spec() llmwire.ToolSpec {
	return llmwire.ToolSpec{
		Name:        "ai_pipe",
		Description: "Execute an AI workflow pipeline for complex data processing",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"workflow": map[string]any{
					"type":        "string",
					"description": "The AI workflow to execute",
				},
				"input": map[string]any{
					"type":        "string",
					"description": "Input data for the workflow",
				},
			},
			"required": []string{"workflow", "input"},
		},
	}
}

type pipelineArgs struct {
	Workflow string `json:"workflow"`
	Input    string `json:"input"`
}

func (t *PipelineTool) Execute(ctx context.Context, args json.RawMessage) string {
	var in pipelineArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return errorPayload("AI Pipe execution failed: "+err.Error(), nil)
	}

	select {
	case <-time.After(t.delay):
	case <-ctx.Done():
		return errorPayload("AI Pipe execution failed: "+ctx.Err().Error(), map[string]any{
			"workflow": in.Workflow,
			"input":    in.Input,
		})
	}

	output, metadata := t.renderWorkflow(in.Workflow, in.Input)

	return mustJSON(map[string]any{
		"workflow":        in.Workflow,
		"input":           in.Input,
		"output":          output,
		"status":          "completed",
		"processing_time": "1.5s",
		"confidence":      t.rng.Float64()*0.2 + 0.8,
		"metadata":        metadata,
	})
}

// renderWorkflow selects the canned template for a workflow name, falling
// back to a generic custom-workflow response.
func (t *PipelineTool) renderWorkflow(workflow, input string) (string, map[string]any) {
	switch workflow {
	case "sentiment_analysis":
		sentiment := "negative"
		if t.rng.Float64() > 0.5 {
			sentiment = "positive"
		}
		confidence := fmt.Sprintf("%.2f", t.rng.Float64()*0.3+0.7)
		output := fmt.Sprintf("Sentiment analysis complete. Input %q shows %s sentiment with %s confidence.",
			input, sentiment, confidence)
		return output, map[string]any{"sentiment": sentiment, "confidence": confidence}

	case "text_summarization":
		output := fmt.Sprintf("Summary generated: Key points extracted from %q. Main themes identified and condensed into concise overview.", input)
		return output, map[string]any{"original_length": len(input), "summary_ratio": 0.3}

	case "entity_extraction":
		count := t.rng.Intn(5) + 1
		output := fmt.Sprintf("Entities extracted from %q: Found %d entities including organizations, people, and locations.", input, count)
		return output, map[string]any{"entities_count": count}

	default:
		output := fmt.Sprintf("Custom workflow %q processed input: %q. Generated structured analysis and insights.", workflow, input)
		return output, map[string]any{"custom_workflow": true}
	}
}
