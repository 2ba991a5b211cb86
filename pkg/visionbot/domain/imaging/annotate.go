package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"kgeyst.com/visionbot/pkg/visionbot/domain"
)

// kappa is the distance of Bézier control points which approximates a quarter of a circle.
const kappa = 0.5522847498

var (
	outlineColor = color.RGBA{A: 255}
	centerColor  = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	innerColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	// Consecutive objects get different colors so that overlapping boxes can be told apart.
	markerColors = []color.RGBA{
		{R: 0, G: 255, B: 0, A: 255},
		{R: 255, G: 64, B: 64, A: 255},
		{R: 0, G: 200, B: 255, A: 255},
		{R: 255, G: 215, B: 0, A: 255},
		{R: 255, G: 0, B: 255, A: 255},
	}
)

// BoxToRect maps a normalized bounding box onto the pixel grid of `bounds`.
func BoxToRect(box domain.BoundingBox, bounds image.Rectangle) image.Rectangle {
	return image.Rect(
		bounds.Min.X+scale(box.XMin, bounds.Dx()),
		bounds.Min.Y+scale(box.YMin, bounds.Dy()),
		bounds.Min.X+scale(box.XMax, bounds.Dx()),
		bounds.Min.Y+scale(box.YMax, bounds.Dy()),
	)
}

// PointToPixel maps a normalized point onto the pixel grid of `bounds`.
func PointToPixel(point domain.Point, bounds image.Rectangle) image.Point {
	return image.Pt(
		bounds.Min.X+scale(point.X, bounds.Dx()),
		bounds.Min.Y+scale(point.Y, bounds.Dy()),
	)
}

func scale(fraction float64, size int) int {
	fraction = math.Max(0, math.Min(1, fraction))
	return int(math.Round(fraction * float64(size)))
}

// AnnotateBoxes returns a copy of `original` with every box outlined twice: a dark outer outline for contrast and
// a bright inner one.
func AnnotateBoxes(original image.Image, boxes []domain.BoundingBox) *image.RGBA {
	dst := cloneRGBA(original)
	bounds := dst.Bounds()
	lineWidth := max(2, min(bounds.Dx(), bounds.Dy())/200)
	for index, box := range boxes {
		rect := BoxToRect(box, bounds)
		strokeRect(dst, rect.Inset(-lineWidth), 3*lineWidth, outlineColor)
		strokeRect(dst, rect, lineWidth, markerColors[index%len(markerColors)])
	}
	return dst
}

// AnnotatePoints returns a copy of `original` with a marker over every point: a dark ring, a colored ring, a white
// disk and a dark dot in the center. It stays visible on both light and dark backgrounds.
func AnnotatePoints(original image.Image, points []domain.Point) *image.RGBA {
	dst := cloneRGBA(original)
	bounds := dst.Bounds()
	radius := float32(max(6, min(bounds.Dx(), bounds.Dy())/60))
	for index, point := range points {
		center := PointToPixel(point, bounds)
		cx, cy := float32(center.X), float32(center.Y)
		fillCircle(dst, cx, cy, radius, outlineColor)
		fillCircle(dst, cx, cy, radius*0.8, markerColors[index%len(markerColors)])
		fillCircle(dst, cx, cy, radius*0.45, innerColor)
		fillCircle(dst, cx, cy, max(1.5, radius*0.18), centerColor)
	}
	return dst
}

func cloneRGBA(src image.Image) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// strokeRect draws the outline of `rect` inwards, `thickness` pixels wide. Parts outside the image are clipped.
func strokeRect(dst *image.RGBA, rect image.Rectangle, thickness int, c color.Color) {
	if rect.Empty() {
		return
	}
	thickness = min(thickness, (rect.Dx()+1)/2, (rect.Dy()+1)/2)
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thickness),
		image.Rect(rect.Min.X, rect.Max.Y-thickness, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thickness, rect.Max.Y),
		image.Rect(rect.Max.X-thickness, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, edge := range edges {
		draw.Draw(dst, edge.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// fillCircle rasterizes an anti-aliased disk into a mask the size of its bounding box, then composites the mask
// onto `dst` (DrawMask takes care of clipping when the disk sticks out of the image).
func fillCircle(dst *image.RGBA, cx, cy, r float32, c color.Color) {
	box := image.Rect(
		int(math.Floor(float64(cx-r))),
		int(math.Floor(float64(cy-r))),
		int(math.Ceil(float64(cx+r))),
		int(math.Ceil(float64(cy+r))),
	)
	if box.Empty() {
		return
	}
	x, y := cx-float32(box.Min.X), cy-float32(box.Min.Y)
	z := vector.NewRasterizer(box.Dx(), box.Dy())
	z.MoveTo(x+r, y)
	z.CubeTo(x+r, y+kappa*r, x+kappa*r, y+r, x, y+r)
	z.CubeTo(x-kappa*r, y+r, x-r, y+kappa*r, x-r, y)
	z.CubeTo(x-r, y-kappa*r, x-kappa*r, y-r, x, y-r)
	z.CubeTo(x+kappa*r, y-r, x+r, y-kappa*r, x+r, y)
	z.ClosePath()
	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(dst, box, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}
