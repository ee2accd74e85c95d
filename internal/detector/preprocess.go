package detector

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ImageNet normalization constants; the classifier checkpoints are trained
// on ImageNet-normalized inputs.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// preprocess resizes the image to size x size and lays it out as a CHW
// float32 tensor with ImageNet normalization.
func preprocess(img image.Image, size int) []float32 {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	plane := size * size
	out := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			// RGBA returns 16-bit channel values.
			px := [3]uint32{r, g, b}
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 65535.0
				out[c*plane+y*size+x] = (v - imagenetMean[c]) / imagenetStd[c]
			}
		}
	}
	return out
}

// softmax converts logits to probabilities, computed in float64 for
// stability.
func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > maxLogit {
			maxLogit = float64(l)
		}
	}
	exps := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		exps[i] = math.Exp(float64(l) - maxLogit)
		sum += exps[i]
	}
	out := make([]float32, len(logits))
	for i, e := range exps {
		out[i] = float32(e / sum)
	}
	return out
}
