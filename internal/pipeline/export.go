package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/klauspost/compress/zip"

	"go-codegen-pipeline/internal/model"
)

// exportManager drives one run through one sink and counts processed items.
type exportManager struct {
	ctx      context.Context
	renderer Renderer
	cfg      model.GenerationConfig
	items    []string
	cancel   *CancelFlag
	emit     Emitter

	processed int
}

// next is called before item index (1-based) and reports cancellation.
func (em *exportManager) next() error {
	if em.cancel.Cancelled() || em.ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

// done records item index as processed and publishes progress.
func (em *exportManager) done(index int, value string) {
	em.processed = index
	em.emit.Emit(model.Event{
		Type:  model.EventProgress,
		Index: index,
		Total: len(em.items),
		Item:  value,
	})
}

// exportImages writes one file per item into dir.
func (em *exportManager) exportImages(dir string, format model.ImageFormat) (model.ExportResult, error) {
	if format == "" {
		format = model.FormatRaster
	}
	result := model.ExportResult{Kind: model.OutputLooseImages, Format: format, Destination: dir}

	switch format {
	case model.FormatRaster:
	case model.FormatVector:
		if em.cfg.Family != model.FamilyMatrix {
			return result, fmt.Errorf("%w: %s output is not available for %s codes", ErrUnsupportedExport, format, em.cfg.Family)
		}
	default:
		return result, fmt.Errorf("%w: image format %q", ErrUnsupportedExport, format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	namer := NewFileNamer()
	for i, value := range em.items {
		index := i + 1
		if err := em.next(); err != nil {
			return result, err
		}

		path := filepath.Join(dir, namer.Next(value, index)+"."+string(format))
		var err error
		if format == model.FormatVector {
			err = writeFile(path, func(w io.Writer) error {
				return em.renderer.RenderSVG(w, value, em.cfg)
			})
		} else {
			err = em.writePNG(path, value)
		}
		if err != nil {
			return result, err
		}

		result.Files++
		em.done(index, value)
	}
	return result, nil
}

func (em *exportManager) writePNG(path, value string) error {
	img, err := em.renderer.Render(value, em.cfg)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error { return png.Encode(w, img) })
}

// exportDocument lays every item out as a tile on A4 pages.
func (em *exportManager) exportDocument(path string) (model.ExportResult, error) {
	result := model.ExportResult{Kind: model.OutputPaginatedDocument, Destination: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("go-codegen-pipeline", false)
	pdf.SetAutoPageBreak(false, 0)
	layout := NewTileLayout()

	var buf bytes.Buffer
	for i, value := range em.items {
		index := i + 1
		if err := em.next(); err != nil {
			return result, err
		}

		img, err := em.renderer.Render(value, em.cfg)
		if err != nil {
			return result, err
		}
		buf.Reset()
		if err := png.Encode(&buf, img); err != nil {
			return result, fmt.Errorf("encode image: %w", err)
		}

		pos := layout.Next()
		if pos.NewPage {
			pdf.AddPage()
		}
		opt := fpdf.ImageOptions{ImageType: "PNG"}
		name := fmt.Sprintf("code_%d", index)
		pdf.RegisterImageOptionsReader(name, opt, &buf)
		x, y, w, h := fitTile(img.Bounds(), pos, layout.Tile)
		pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
		if err := pdf.Error(); err != nil {
			return result, fmt.Errorf("place image: %w", err)
		}

		result.Files++
		em.done(index, value)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return result, fmt.Errorf("write document: %w", err)
	}
	result.Pages = layout.Pages()
	return result, nil
}

// fitTile centers an image of bounds b inside a square tile, keeping its ratio.
func fitTile(b image.Rectangle, pos TilePosition, tile float64) (x, y, w, h float64) {
	w, h = tile, tile
	if b.Dx() > 0 && b.Dy() > 0 {
		ratio := float64(b.Dx()) / float64(b.Dy())
		if ratio >= 1 {
			h = tile / ratio
		} else {
			w = tile * ratio
		}
	}
	return pos.X + (tile-w)/2, pos.Y + (tile-h)/2, w, h
}

// exportArchive writes PNGs to a scratch directory and packs them into one zip.
func (em *exportManager) exportArchive(path, scratchBase string) (model.ExportResult, error) {
	result := model.ExportResult{Kind: model.OutputArchive, Format: model.FormatRaster, Destination: path}

	scratch, err := os.MkdirTemp(scratchBase, "codegen-archive-*")
	if err != nil {
		return result, fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	images, err := em.exportImages(scratch, model.FormatRaster)
	if err != nil {
		return result, err
	}
	result.Files = images.Files

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}
	if err := writeFile(path, func(w io.Writer) error { return packDir(w, scratch) }); err != nil {
		return result, err
	}
	return result, nil
}

// packDir writes every regular file of dir into a zip stream, sorted by name.
func packDir(w io.Writer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read scratch directory: %w", err)
	}

	zw := zip.NewWriter(w)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = entry.Name()
		hdr.Method = zip.Deflate

		dst, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("add %s: %w", entry.Name(), err)
		}
		if err := copyFile(dst, filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("add %s: %w", entry.Name(), err)
		}
	}
	return zw.Close()
}

func copyFile(dst io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(dst, f)
	return err
}

// writeFile creates path, runs write and removes the file if anything fails.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", filepath.Base(path), cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(f)
}
