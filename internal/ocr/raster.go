package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// PopplerRasterizer renders PDF pages to images by shelling out to
// poppler's pdftoppm. Poppler is the conventional rasterizer for scanned
// service books and the only external binary this collaborator needs.
type PopplerRasterizer struct {
	Binary string
}

// NewPopplerRasterizer returns a rasterizer using pdftoppm from PATH.
func NewPopplerRasterizer() *PopplerRasterizer {
	return &PopplerRasterizer{Binary: "pdftoppm"}
}

// Rasterize renders every page of the PDF at the given DPI and returns
// the page images in page order.
func (r *PopplerRasterizer) Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error) {
	dir, err := os.MkdirTemp("", "carcheckmate-pages-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, r.Binary, "-png", "-r", strconv.Itoa(dpi), path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", path)
	}
	sortPageFiles(files)

	images := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := imaging.Open(f)
		if err != nil {
			return nil, fmt.Errorf("open rendered page %s: %w", f, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// sortPageFiles orders pdftoppm output numerically by page suffix.
// Lexical order would put page-10 before page-2 on unpadded names.
func sortPageFiles(files []string) {
	sort.SliceStable(files, func(a, b int) bool {
		return pageNumber(files[a]) < pageNumber(files[b])
	})
}

func pageNumber(file string) int {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
