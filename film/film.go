// Package film accumulates per-pixel radiance samples into a final image
// (spec §4.7) and schedules the tile-based concurrency the integrator runs
// under (spec §5). Accumulation is a filtered weighted sum, grounded on
// df07-go-progressive-raytracer's PixelStats.AddSample/GetColor but
// generalized from a flat box average to an arbitrary reconstruction
// Filter footprint.
package film

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rendercore/pathtracer/core"
)

// pixel accumulates a filtered sum of contributions and their filter
// weights, so AddSample is commutative across threads (spec §5 ordering
// guarantees: "no ordering of sample commit across threads is guaranteed").
type pixel struct {
	sum    core.Spectrum
	weight float64
	count  int64 // visits recorded via AddSample or AddVisit, for the MLT-variant save formula
}

// Film is the renderer's output accumulator: one pixel grid, read-only
// resolution/filter after construction, mutated only via AddSample and
// AddVisit under a per-pixel lock.
type Film struct {
	Width, Height int
	filter        Filter
	pixels        []pixel
	mu            []sync.Mutex
	anomalies     int64
	anomalyMu     sync.Mutex
}

func NewFilm(width, height int, filter Filter) *Film {
	if filter == nil {
		filter = NewBoxFilter()
	}
	return &Film{
		Width:  width,
		Height: height,
		filter: filter,
		pixels: make([]pixel, width*height),
		mu:     make([]sync.Mutex, width*height),
	}
}

// AddSample splats a filtered contribution for a continuous film-space
// sample position (pFilmX,pFilmY) into every pixel within the filter's
// radius. Non-finite spectra are clamped to black here, not upstream,
// honoring spec §7's "integrator's outer guard" contract at the boundary
// where samples actually reach the accumulator.
func (f *Film) AddSample(pFilmX, pFilmY float64, L core.Spectrum) {
	L = L.ClampNonFinite()

	r := f.filter.Radius()
	x0 := int(pFilmX - r + 0.5)
	x1 := int(pFilmX + r + 0.5)
	y0 := int(pFilmY - r + 0.5)
	y1 := int(pFilmY + r + 0.5)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > f.Width {
		x1 = f.Width
	}
	if y1 > f.Height {
		y1 = f.Height
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := (float64(x) + 0.5) - pFilmX
			dy := (float64(y) + 0.5) - pFilmY
			w := f.filter.Evaluate(dx, dy)
			if w == 0 {
				continue
			}
			idx := y*f.Width + x
			f.mu[idx].Lock()
			f.pixels[idx].sum = f.pixels[idx].sum.Add(L.Scale(w))
			f.pixels[idx].weight += w
			f.pixels[idx].count++
			f.mu[idx].Unlock()
		}
	}
}

// AddVisit records a Metropolis chain visit to the film-space position
// (pFilmX,pFilmY) without depositing radiance: the PSSMLT integrator
// reconstructs the image from visit density (cnt) scaled by the bootstrapped
// mean brightness rather than from a weighted radiance sum, so only the
// weight/count accumulators advance here.
func (f *Film) AddVisit(pFilmX, pFilmY float64) {
	r := f.filter.Radius()
	x0 := int(pFilmX - r + 0.5)
	x1 := int(pFilmX + r + 0.5)
	y0 := int(pFilmY - r + 0.5)
	y1 := int(pFilmY + r + 0.5)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > f.Width {
		x1 = f.Width
	}
	if y1 > f.Height {
		y1 = f.Height
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := (float64(x) + 0.5) - pFilmX
			dy := (float64(y) + 0.5) - pFilmY
			w := f.filter.Evaluate(dx, dy)
			if w == 0 {
				continue
			}
			idx := y*f.Width + x
			f.mu[idx].Lock()
			f.pixels[idx].weight += w
			f.pixels[idx].count++
			f.mu[idx].Unlock()
		}
	}
}

// NoteAnomaly records a NumericAnomaly diagnostic (spec §7) without
// aborting the render.
func (f *Film) NoteAnomaly() {
	f.anomalyMu.Lock()
	f.anomalies++
	f.anomalyMu.Unlock()
}

func (f *Film) AnomalyCount() int64 {
	f.anomalyMu.Lock()
	defer f.anomalyMu.Unlock()
	return f.anomalies
}

// At returns the reconstructed (filter-normalized) radiance at a pixel.
func (f *Film) At(x, y int) core.Spectrum {
	idx := y*f.Width + x
	f.mu[idx].Lock()
	defer f.mu[idx].Unlock()
	p := f.pixels[idx]
	if p.weight == 0 {
		return core.SpectrumZero
	}
	return p.sum.Scale(1 / p.weight)
}

// ToImage takes a consistent snapshot of the film (spec §5 "Save operations
// take a consistent snapshot by acquiring a short lock ... then releasing")
// and tonemaps it into an *image.RGBA with simple gamma 2.2 display
// encoding.
func (f *Film) ToImage() *image.RGBA {
	snap := make([]pixel, len(f.pixels))
	for i := range f.mu {
		f.mu[i].Lock()
	}
	copy(snap, f.pixels)
	for i := range f.mu {
		f.mu[i].Unlock()
	}

	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	const displayGamma = 2.2
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			p := snap[y*f.Width+x]
			var v core.Spectrum
			if p.weight != 0 {
				v = p.sum.Scale(1 / p.weight)
			}
			c := v.GammaCorrect(displayGamma).Clamp(0, 1)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255*c[0] + 0.5),
				G: uint8(255*c[1] + 0.5),
				B: uint8(255*c[2] + 0.5),
				A: 255,
			})
		}
	}
	return img
}

// ToImageMLT reconstructs the image the way the PSSMLT driver requires:
// scale*cnt(x,y)/(W(x,y)+eps) per pixel, where scale is the bootstrapped
// mean brightness of the scene and eps guards the empty-pixel case, then
// applies the same display gamma as ToImage.
func (f *Film) ToImageMLT(scale core.Spectrum) *image.RGBA {
	const eps = 1e-6
	const displayGamma = 2.2
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			idx := y*f.Width + x
			f.mu[idx].Lock()
			p := f.pixels[idx]
			f.mu[idx].Unlock()
			c := scale.Scale(float64(p.count) / (p.weight + eps)).GammaCorrect(displayGamma).Clamp(0, 1)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255*c[0] + 0.5),
				G: uint8(255*c[1] + 0.5),
				B: uint8(255*c[2] + 0.5),
				A: 255,
			})
		}
	}
	return img
}

// encodeImage writes img to path with the codec chosen by the file
// extension (spec §6 "format is selected by extension").
func encodeImage(img *image.RGBA, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(out, img, &jpeg.Options{Quality: 95})
	case ".png", "":
		return png.Encode(out, img)
	default:
		return png.Encode(out, img)
	}
}

// Save writes the film to path; the image codec is chosen by the file
// extension (spec §6 "format is selected by extension").
func (f *Film) Save(path string) error {
	return encodeImage(f.ToImage(), path)
}

// SaveIteration substitutes the iteration counter into a printf-style
// filename (spec §6 "`%d` for iteration") and saves.
func (f *Film) SaveIteration(pattern string, iteration int) error {
	path := pattern
	if strings.Contains(pattern, "%") {
		path = fmt.Sprintf(pattern, iteration)
	}
	return f.Save(path)
}

// SaveIterationMLT is SaveIteration's counterpart for the PSSMLT driver:
// it reconstructs via ToImageMLT instead of the plain weighted-mean save.
func (f *Film) SaveIterationMLT(pattern string, iteration int, scale core.Spectrum) error {
	path := pattern
	if strings.Contains(pattern, "%") {
		path = fmt.Sprintf(pattern, iteration)
	}
	return encodeImage(f.ToImageMLT(scale), path)
}
