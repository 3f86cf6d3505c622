package card

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/jules-12/card-creator-pro/internal/extract"
)

// DefaultScale is the raster resolution in pixels per millimetre (~300 dpi).
const DefaultScale = 12

var (
	colorBackground = color.RGBA{0xcd, 0xe9, 0xe1, 0xff}
	colorGreen      = color.RGBA{0x00, 0x8a, 0x51, 0xff}
	colorYellow     = color.RGBA{0xfc, 0xd1, 0x16, 0xff}
	colorRed        = color.RGBA{0xe8, 0x11, 0x23, 0xff}
	colorBlue       = color.RGBA{0x00, 0x4c, 0xb3, 0xff}
	colorInk        = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
)

var headerLines = []struct {
	text   string
	size   float64
	bold   bool
	italic bool
}{
	{"DÉPARTEMENT DU LITTORAL", 7, true, false},
	{"MAIRIE DE COTONOU", 6, true, false},
	{"Direction des Affaires Administratives et Financières DAAF", 4.5, false, true},
	{"RÉGIE PRINCIPALE DES RECETTES NON FISCALES", 4.5, false, false},
}

var footerLines = []string{
	"• Adresse postale : 03 BP : 1777 Cotonou - BÉNIN . Téléphone : +229 21 30 95 69",
	"• E-mail : mairiecotonou.infos@gouv.bj . Site web : www.cotonou.mairie.bj",
}

const cardTitle = "CARTE DE RECENSEMENT TAXI – MOTO"

type fonts struct {
	regular, bold, italic *opentype.Font
}

// Parsed fonts are shared; faces are not safe for concurrent use and are
// created per render.
var loadFonts = sync.OnceValues(func() (*fonts, error) {
	var f fonts
	var err error
	if f.regular, err = opentype.Parse(goregular.TTF); err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	if f.bold, err = opentype.Parse(gobold.TTF); err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	if f.italic, err = opentype.Parse(goitalic.TTF); err != nil {
		return nil, fmt.Errorf("parse italic font: %w", err)
	}
	return &f, nil
})

// Renderer rasterizes cards. It is safe for concurrent use.
type Renderer struct {
	scale float64
	fonts *fonts
}

// NewRenderer creates a Renderer drawing scale pixels per millimetre.
// A non-positive scale selects DefaultScale.
func NewRenderer(scale int) (*Renderer, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	f, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Renderer{scale: float64(scale), fonts: f}, nil
}

// Size returns the card size in pixels.
func (r *Renderer) Size() image.Point {
	return image.Pt(r.px(WidthMM), r.px(HeightMM))
}

// PNG renders rec and encodes it as PNG.
func (r *Renderer) PNG(rec extract.ContributorRecord) ([]byte, error) {
	img, err := r.Image(rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Image renders rec.
func (r *Renderer) Image(rec extract.ContributorRecord) (image.Image, error) {
	c := &canvas{r: r, img: image.NewRGBA(image.Rectangle{Max: r.Size()})}

	c.fill(0, 0, WidthMM, HeightMM, colorBackground)

	// Flag stripe.
	third := WidthMM / 3
	c.fill(0, 0, third, 2.5, colorGreen)
	c.fill(third, 0, 2*third, 2.5, colorYellow)
	c.fill(2*third, 0, WidthMM, 2.5, colorRed)

	// Header band.
	c.fill(0, 2.5, WidthMM, 13.5, colorBlue)
	y := 5.0
	for _, l := range headerLines {
		face, err := c.face(l.size, l.bold, l.italic)
		if err != nil {
			return nil, err
		}
		c.centered(face, l.text, y, color.White)
		y += l.size*0.3528 + 0.4
	}

	title, err := c.face(7, true, false)
	if err != nil {
		return nil, err
	}
	c.centered(title, cardTitle, 16.5, colorRed)

	// Body.
	label, err := c.face(5, true, false)
	if err != nil {
		return nil, err
	}
	value, err := c.face(5, false, false)
	if err != nil {
		return nil, err
	}
	const (
		left     = 3.0
		top      = 19.5
		lineStep = 3.1
		textEnd  = 61.0
	)
	for i, rw := range rows(rec) {
		baseline := top + float64(i)*lineStep + 1.8
		x := c.text(label, rw.label+" : ", left, baseline, colorBlue)
		c.text(value, c.fit(value, rw.value, textEnd-x), x, baseline, colorInk)
	}

	if err := c.qr(Payload(rec), 63, 20.5, 20); err != nil {
		return nil, err
	}

	small, err := c.face(4, false, false)
	if err != nil {
		return nil, err
	}
	for i, l := range footerLines {
		c.text(small, c.fit(small, l, WidthMM-6), left, 50.2+float64(i)*1.7, colorBlue)
	}

	return c.img, nil
}

func (r *Renderer) px(mm float64) int {
	return int(math.Round(mm * r.scale))
}

// canvas draws on a card image using millimetre coordinates.
type canvas struct {
	r   *Renderer
	img *image.RGBA
}

func (c *canvas) fill(x0, y0, x1, y1 float64, col color.Color) {
	rect := image.Rect(c.r.px(x0), c.r.px(y0), c.r.px(x1), c.r.px(y1))
	draw.Draw(c.img, rect, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) face(pt float64, bold, italic bool) (font.Face, error) {
	f := c.r.fonts.regular
	switch {
	case bold:
		f = c.r.fonts.bold
	case italic:
		f = c.r.fonts.italic
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    pt,
		DPI:     c.r.scale * 25.4,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// text draws s with its baseline at y and returns the x position, in
// millimetres, where the text ends.
func (c *canvas) text(face font.Face, s string, x, y float64, col color.Color) float64 {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(c.r.px(x), c.r.px(y)),
	}
	d.DrawString(s)
	return float64(d.Dot.X.Round()) / c.r.scale
}

func (c *canvas) centered(face font.Face, s string, y float64, col color.Color) {
	w := float64(font.MeasureString(face, s).Round()) / c.r.scale
	c.text(face, s, (WidthMM-w)/2, y, col)
}

// fit shortens s with an ellipsis until it is at most width millimetres wide.
func (c *canvas) fit(face font.Face, s string, width float64) string {
	limit := fixed.I(c.r.px(width))
	if font.MeasureString(face, s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		t := string(runes) + "…"
		if font.MeasureString(face, t) <= limit {
			return t
		}
	}
	return ""
}

// qr draws a QR code of the given side on a white tile with a 1.5 mm margin.
func (c *canvas) qr(payload string, x, y, side float64) error {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	code.DisableBorder = true

	const pad = 1.5
	c.fill(x-pad, y-pad, x+side+pad, y+side+pad, color.White)

	img := code.Image(c.r.px(side))
	origin := image.Pt(c.r.px(x), c.r.px(y))
	draw.Draw(c.img, img.Bounds().Add(origin), img, img.Bounds().Min, draw.Over)
	return nil
}
