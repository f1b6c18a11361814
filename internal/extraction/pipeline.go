package extraction

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/vantagesource/qualis/internal/prompts"
)

// Execute runs the extraction pipeline for a single audit document. It
// creates a temp directory for page images (cleaned up via defer), builds
// the state graph (init → extract → consolidate), executes it, and extracts
// the Result from the final state. Pages are analyzed sequentially so each
// page prompt carries the findings accumulated from preceding pages.
func Execute(ctx context.Context, rt *Runtime, documentRef string) (*Result, error) {
	if err := rt.ValidateCredentials(); err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "qualis-extract-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyDocumentRef, documentRef)
	initialState = initialState.Set(KeyTempDir, tempDir)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("qualis-extract")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("init", InitNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("extract", ExtractNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("consolidate", ConsolidateNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("init", "extract", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("extract", "consolidate", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("init"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("consolidate"); err != nil {
		return nil, err
	}

	return graph, nil
}

// ExtractNode returns a state node that analyzes document pages one at a
// time. Pages run sequentially by design: each vision prompt replays the
// findings from preceding pages so later pages can refine earlier answers.
func ExtractNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ps, err := extractPipelineState(s)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		for _, page := range ps.Pages {
			finding, err := analyzePage(ctx, rt, page, ps.Findings)
			if err != nil {
				return s, fmt.Errorf("extract: page %d: %w", page.PageNumber, err)
			}
			ps.Findings = append(ps.Findings, finding)
		}

		rt.Logger.InfoContext(
			ctx, "extract node complete",
			"page_count", len(ps.Pages),
		)

		s = s.Set(KeyExtractState, *ps)
		return s, nil
	})
}

func analyzePage(
	ctx context.Context,
	rt *Runtime,
	page PageImage,
	prior []PageFinding,
) (PageFinding, error) {
	prompt, err := ComposePrompt(ctx, rt.Prompts, prompts.StageExtract, prior)
	if err != nil {
		return PageFinding{}, err
	}

	dataURI, err := encodePageImage(page.ImagePath)
	if err != nil {
		return PageFinding{}, err
	}

	content, err := rt.vision(ctx, prompt, dataURI)
	if err != nil {
		return PageFinding{}, err
	}

	findings, err := extractFindings(content)
	if err != nil {
		return PageFinding{}, err
	}

	return PageFinding{
		PageNumber: page.PageNumber,
		Findings:   findings,
	}, nil
}

// ConsolidateNode returns a state node that merges the per-page findings
// into a single validated Record via a text-only model call.
func ConsolidateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ps, err := extractPipelineState(s)
		if err != nil {
			return s, fmt.Errorf("consolidate: %w", err)
		}

		prompt, err := ComposePrompt(ctx, rt.Prompts, prompts.StageConsolidate, ps.Findings)
		if err != nil {
			return s, fmt.Errorf("consolidate: %w", err)
		}

		content, err := rt.chat(ctx, prompt)
		if err != nil {
			return s, fmt.Errorf("consolidate: %w", err)
		}

		ps.Raw = content

		rt.Logger.InfoContext(ctx, "consolidate node complete")

		s = s.Set(KeyExtractState, *ps)
		return s, nil
	})
}

func extractPipelineState(s state.State) (*PipelineState, error) {
	val, ok := s.Get(KeyExtractState)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in state", ErrRender, KeyExtractState)
	}

	ps, ok := val.(PipelineState)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not PipelineState", ErrRender, KeyExtractState)
	}

	return &ps, nil
}

func extractResult(s state.State) (*Result, error) {
	ps, err := extractPipelineState(s)
	if err != nil {
		return nil, err
	}

	pageCountVal, ok := s.Get(KeyPageCount)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyPageCount)
	}

	pageCount, ok := pageCountVal.(int)
	if !ok {
		return nil, fmt.Errorf("%s is not int", KeyPageCount)
	}

	record, err := ParseRecord(ps.Raw)
	if err != nil {
		return nil, err
	}

	return &Result{
		Record:      record,
		RawResponse: ps.Raw,
		PageCount:   pageCount,
		CompletedAt: time.Now(),
	}, nil
}

func encodePageImage(imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	dataURI, err := encoding.EncodeImageDataURI(data, document.PNG)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	return dataURI, nil
}
