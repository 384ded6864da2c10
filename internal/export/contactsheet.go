/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders storyboard scenes into shareable documents.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/webp"

	"storyboardstudio/internal/domain"
	"storyboardstudio/internal/imagedata"
)

// SheetOptions controls contact sheet layout.
// Units are millimeters; pages are A4 landscape.
type SheetOptions struct {
	Title   string
	Columns int // thumbnails per row; default 3
	Rows    int // rows per page; default 2
}

// Page geometry in millimeters.
const (
	pageW   = 297.0
	pageH   = 210.0
	margin  = 12.0
	gutter  = 6.0
	caption = 7.0 // room under each thumbnail for the scene label
	header  = 10.0
)

// Thumbnail size in pixels before PDF placement.
const (
	thumbW = 640
	thumbH = 360
)

// ContactSheet renders the result scenes in order as a paginated grid
// and writes a PDF to outPath. Scenes are numbered from 1 in storyboard
// order. An empty scene list is an error.
func ContactSheet(results []domain.ResultScene, outPath string, opt SheetOptions) error {
	if len(results) == 0 {
		return fmt.Errorf("no scenes to export")
	}
	cols := opt.Columns
	if cols <= 0 {
		cols = 3
	}
	rows := opt.Rows
	if rows <= 0 {
		rows = 2
	}
	title := opt.Title
	if title == "" {
		title = "Storyboard"
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Storyboard Studio", false)
	pdf.SetFont("Helvetica", "", 9)

	cellW := (pageW - 2*margin - float64(cols-1)*gutter) / float64(cols)
	cellH := (pageH - 2*margin - header - float64(rows-1)*gutter) / float64(rows)
	imgH := cellH - caption

	perPage := cols * rows
	for i, res := range results {
		slot := i % perPage
		if slot == 0 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Text(margin, margin+4, title)
			pdf.SetFont("Helvetica", "", 9)
		}
		col := slot % cols
		row := slot / cols
		x := margin + float64(col)*(cellW+gutter)
		y := margin + header + float64(row)*(cellH+gutter)

		name := fmt.Sprintf("scene-%d", i+1)
		w, h, err := registerThumb(pdf, name, res.Src)
		if err != nil {
			return fmt.Errorf("scene %d: %w", i+1, err)
		}
		// Fit the thumbnail into the cell keeping aspect ratio.
		drawW := cellW
		drawH := drawW * float64(h) / float64(w)
		if drawH > imgH {
			drawH = imgH
			drawW = drawH * float64(w) / float64(h)
		}
		ix := x + (cellW-drawW)/2
		pdf.ImageOptions(name, ix, y, drawW, drawH, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")
		pdf.Text(x, y+imgH+5, fmt.Sprintf("Scene %d", i+1))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// registerThumb decodes a scene data URL, downscales it, and registers
// the thumbnail with the document under name. Returns the thumbnail
// pixel size.
func registerThumb(pdf *gofpdf.Fpdf, name, src string) (int, int, error) {
	img, err := imagedata.Parse(src)
	if err != nil {
		return 0, 0, err
	}
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fit(decoded, thumbW, thumbH, imaging.Lanczos)
	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return 0, 0, fmt.Errorf("encode thumbnail: %w", err)
	}
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "png"}, &buf)
	b := thumb.Bounds()
	return b.Dx(), b.Dy(), nil
}
