/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package measure provides text measurement for tick labels.
package measure

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Font identifies a typeface and size.
type Font struct {
	Family string
	// Size in points.  Zero selects the face's natural size.
	Size float64
}

func (f Font) String() string {
	return fmt.Sprintf("%s %gpt", f.Family, f.Size)
}

// Size is a rendered text extent in pixels.
type Size struct {
	Width, Height float64
}

// Measurer measures rendered text.  Implementations must be safe for
// concurrent use.
type Measurer interface {
	Measure(f Font, text string) Size
}

// Func adapts a function to the Measurer interface.
type Func func(f Font, text string) Size

// Measure implements Measurer.
func (mf Func) Measure(f Font, text string) Size {
	return mf(f, text)
}

// The pixel size of basicfont.Face7x13's glyph cells.
const basicHeight = 13

type faceKey struct {
	family string
	size   float64
}

// FaceMeasurer measures text using golang.org/x/image font faces.  Families
// registered with RegisterTrueType are rendered with their TrueType faces;
// all others fall back to the fixed-width basicfont.Face7x13, scaled to the
// requested size and resolution.
type FaceMeasurer struct {
	dpi float64

	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[faceKey]font.Face
}

// NewFaceMeasurer returns a new FaceMeasurer rendering at the provided
// resolution.  A non-positive dpi selects 72, at which one point is one
// pixel.
func NewFaceMeasurer(dpi float64) *FaceMeasurer {
	if dpi <= 0 {
		dpi = 72
	}
	return &FaceMeasurer{
		dpi:   dpi,
		fonts: map[string]*truetype.Font{},
		faces: map[faceKey]font.Face{},
	}
}

// RegisterTrueType parses the provided TrueType font data and registers it
// under the provided family name.
func (fm *FaceMeasurer) RegisterTrueType(family string, data []byte) error {
	f, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font '%s': %w", family, err)
	}
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.fonts[family] = f
	for key := range fm.faces {
		if key.family == family {
			delete(fm.faces, key)
		}
	}
	return nil
}

// LoadTrueTypeFile reads a TrueType font file and registers it under the
// provided family name.
func (fm *FaceMeasurer) LoadTrueTypeFile(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return fm.RegisterTrueType(family, data)
}

func toPixels(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Measure implements Measurer.
func (fm *FaceMeasurer) Measure(f Font, text string) Size {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	ttf, ok := fm.fonts[f.Family]
	if !ok {
		// Sizes are in points; basicHeight is in pixels at 72 dpi.
		scale := fm.dpi / 72
		if f.Size > 0 {
			scale *= f.Size / basicHeight
		}
		return Size{
			Width:  toPixels(font.MeasureString(basicfont.Face7x13, text)) * scale,
			Height: basicHeight * scale,
		}
	}
	key := faceKey{f.Family, f.Size}
	face, ok := fm.faces[key]
	if !ok {
		size := f.Size
		if size <= 0 {
			size = 12
		}
		face = truetype.NewFace(ttf, &truetype.Options{
			Size: size,
			DPI:  fm.dpi,
		})
		fm.faces[key] = face
	}
	return Size{
		Width:  toPixels(font.MeasureString(face, text)),
		Height: toPixels(face.Metrics().Height),
	}
}
