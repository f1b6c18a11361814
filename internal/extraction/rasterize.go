package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"golang.org/x/sync/errgroup"
)

const sourcePDF = "source.pdf"

// InitNode returns a state node that resolves the audit document reference,
// renders its pages to PNG images concurrently via ImageMagick, and stores
// the initial PipelineState in the state bag. Rendering is capped at
// Runtime.MaxPages; pages beyond the cap are skipped.
func InitNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ref, tempDir, err := extractInitState(s)
		if err != nil {
			return s, fmt.Errorf("init: %w", err)
		}

		if err := materializePDF(ctx, rt, ref, tempDir); err != nil {
			return s, fmt.Errorf("init: %w", err)
		}

		pages, err := renderPages(ctx, tempDir, rt.MaxPages)
		if err != nil {
			return s, fmt.Errorf("init: %w", err)
		}

		rt.Logger.InfoContext(
			ctx, "init node complete",
			"document_ref", ref,
			"page_count", len(pages),
		)

		s = s.Set(KeyExtractState, PipelineState{Pages: pages})
		s = s.Set(KeyPageCount, len(pages))

		return s, nil
	})
}

func extractInitState(s state.State) (string, string, error) {
	refVal, ok := s.Get(KeyDocumentRef)
	if !ok {
		return "", "", fmt.Errorf("%w: missing %s in state", ErrRender, KeyDocumentRef)
	}

	ref, ok := refVal.(string)
	if !ok {
		return "", "", fmt.Errorf("%w: %s is not string", ErrRender, KeyDocumentRef)
	}

	tempDirVal, ok := s.Get(KeyTempDir)
	if !ok {
		return "", "", fmt.Errorf("%w: missing %s in state", ErrRender, KeyTempDir)
	}

	tempDir, ok := tempDirVal.(string)
	if !ok {
		return "", "", fmt.Errorf("%w: %s is not string", ErrRender, KeyTempDir)
	}

	return ref, tempDir, nil
}

func materializePDF(ctx context.Context, rt *Runtime, ref, tempDir string) error {
	data, err := rt.resolveDocument(ctx, ref)
	if err != nil {
		return err
	}

	pdfPath := filepath.Join(tempDir, sourcePDF)
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return fmt.Errorf("%w: write temp pdf: %w", ErrRender, err)
	}

	return nil
}

func renderPages(ctx context.Context, tempDir string, maxPages int) ([]PageImage, error) {
	pdfPath := filepath.Join(tempDir, sourcePDF)
	pdfDoc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrParse, err)
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(config.DefaultImageConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: create renderer: %w", ErrDependencyMissing, err)
	}

	allPages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pages: %w", ErrRender, err)
	}

	if maxPages > 0 && len(allPages) > maxPages {
		allPages = allPages[:maxPages]
	}

	pageCount := len(allPages)
	pages := make([]PageImage, pageCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderWorkerCount(pageCount))

	for i, page := range allPages {
		pageNum := i + 1
		imgPath := filepath.Join(tempDir, fmt.Sprintf("page-%d.png", pageNum))
		pages[i] = PageImage{
			PageNumber: pageNum,
			ImagePath:  imgPath,
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			data, err := page.ToImage(renderer, nil)
			if err != nil {
				return fmt.Errorf("render page %d: %w", pageNum, err)
			}

			if err := os.WriteFile(imgPath, data, 0600); err != nil {
				return fmt.Errorf("write page %d image: %w", pageNum, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	return pages, nil
}

func renderWorkerCount(pageCount int) int {
	return max(min(runtime.NumCPU(), pageCount), 1)
}
